package commands

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/mdxsite/internal/build"
	"git.home.luguber.info/inful/mdxsite/internal/config"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source      string `short:"s" help:"Override source.directory" type:"path"`
	Output      string `short:"o" help:"Override output.directory" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics to this file after the build" type:"path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if b.Source != "" {
		cfg.Source.Directory = b.Source
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.MetricsFile != "" {
		cfg.Metrics.File = b.MetricsFile
	}

	res, err := runBuild(g, cfg, build.Options{})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "%s\nOutput: %s\n", res.Summary(), res.OutputPath)
	return nil
}

// runBuild executes one build and writes the metrics textfile when configured,
// whether or not the build succeeded.
func runBuild(g *Global, cfg *config.Config, opts build.Options) (*build.Result, error) {
	svc := build.NewService()

	var reg *prometheus.Registry
	if cfg.Metrics.File != "" {
		reg = prometheus.NewRegistry()
		svc.WithRecorder(metrics.NewPrometheusRecorder(reg))
	}

	res, err := svc.Run(g.context(), build.Request{Config: cfg, Options: opts})

	if reg != nil {
		if werr := metrics.WriteTextfile(cfg.Metrics.File, reg); werr != nil {
			slog.Warn("Failed to write metrics", logfields.Path(cfg.Metrics.File), logfields.Error(werr))
		} else {
			slog.Debug("Metrics written", logfields.Path(cfg.Metrics.File))
		}
	}
	return res, err
}
