// Package commands implements the mdxsite command line.
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	dberrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
	"git.home.luguber.info/inful/mdxsite/internal/observability"
)

// Global carries process-wide state into every command.
type Global struct {
	Context context.Context
	Out     io.Writer
}

func (g *Global) context() context.Context {
	if g.Context == nil {
		return context.Background()
	}
	return g.Context
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: ./mdxsite.yaml when present)" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Build the site into the output directory"`
	Check   CheckCmd   `cmd:"" help:"Build the site without writing output (validates every document and link)"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
	Inspect InspectCmd `cmd:"" help:"Show how a single document is parsed"`
}

// AfterApply runs after flag parsing; it installs a stderr logger until the
// configuration is loaded.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(level, string(config.LogFormatText), os.Stderr))
	return nil
}

// loadConfig resolves the configuration and reconfigures logging from it.
// --verbose wins over logging.level.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Resolve(c.Config)
	if err != nil {
		b := dberrors.WrapError(err, dberrors.CategoryConfig, "load configuration")
		if c.Config != "" {
			b = b.WithContext(logfields.KeyPath, c.Config)
		}
		return nil, b.Build()
	}

	level := cfg.Logging.Level.SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(level, string(cfg.Logging.Format), os.Stderr))
	return cfg, nil
}
