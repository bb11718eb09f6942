package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagepublisher/cmd/pagepublisher/commands"
	derrors "git.home.luguber.info/inful/pagepublisher/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepublisher/internal/version"
)

func main() {
	cli := &commands.CLI{}
	global := &commands.Global{Logger: slog.Default(), Out: os.Stdout}
	ctx := kong.Parse(cli,
		kong.Name("pagepublisher"),
		kong.Description("Publish pages from a content store to static buckets."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
		kong.Bind(global),
	)
	if err := ctx.Run(cli); err != nil {
		adapter := derrors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
		os.Exit(adapter.Report(err))
	}
}
