package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docgraph/cmd/docgraph/commands"
	derrors "git.home.luguber.info/inful/docgraph/internal/foundation/errors"
	"git.home.luguber.info/inful/docgraph/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docgraph"),
		kong.Description("Generate and serve the content graph of a documentation site."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	global := &commands.Global{Logger: slog.Default(), Stdout: os.Stdout}
	err := ctx.Run(global, &cli)
	derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
