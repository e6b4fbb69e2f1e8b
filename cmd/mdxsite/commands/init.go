package commands

import (
	"fmt"

	"git.home.luguber.info/inful/mdxsite/internal/config"
	dberrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/logfields"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	path := root.Config
	if path == "" {
		path = config.DefaultPath
	}
	if err := config.Init(path, i.Force); err != nil {
		return dberrors.WrapError(err, dberrors.CategoryConfig, "initialize configuration").
			WithContext(logfields.KeyPath, path).
			Build()
	}
	_, _ = fmt.Fprintf(g.Out, "Wrote configuration to %s\n", path)
	return nil
}
