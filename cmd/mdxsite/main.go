package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/mdxsite/cmd/mdxsite/commands"
	dberrors "git.home.luguber.info/inful/mdxsite/internal/foundation/errors"
	"git.home.luguber.info/inful/mdxsite/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("mdxsite"),
		kong.Description("Build a static article site from .mdx documents."),
		kong.Vars{"version": version.String()},
		kong.UsageOnError(),
	)

	global := &commands.Global{Context: ctx, Out: os.Stdout}
	if err := parser.Run(global, cli); err != nil {
		adapter := dberrors.NewCLIErrorAdapter(cli.Verbose, slog.Default())
		code := adapter.Report(os.Stderr, err)
		stop()
		os.Exit(code)
	}
}
