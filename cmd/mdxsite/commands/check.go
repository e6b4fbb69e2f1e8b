package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdxsite/internal/build"
)

// CheckCmd implements the 'check' command: a full build that is discarded.
type CheckCmd struct {
	Source string `short:"s" help:"Override source.directory" type:"path"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if c.Source != "" {
		cfg.Source.Directory = c.Source
	}

	res, err := runBuild(g, cfg, build.Options{DryRun: true})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(g.Out, "%s\nNo problems found.\n", res.Summary())
	return nil
}
