package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/add"
	"github.com/nightconcept/denolock/internal/cli/check"
	"github.com/nightconcept/denolock/internal/cli/fetch"
	"github.com/nightconcept/denolock/internal/cli/initcmd"
	"github.com/nightconcept/denolock/internal/cli/list"
	"github.com/nightconcept/denolock/internal/cli/prune"
	"github.com/nightconcept/denolock/internal/cli/remove"
	"github.com/nightconcept/denolock/internal/cli/self"
	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/cli/upgrade"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "v0.1.0"

func main() {
	app := &cli.App{
		Name:    "dlock",
		Usage:   "Inspect and maintain deno.lock files",
		Version: version,
		Flags:   session.Flags(),
		Action: func(c *cli.Context) error {
			// Default action if no command is specified
			_ = cli.ShowAppHelp(c)
			return nil
		},
		Commands: []*cli.Command{
			initcmd.GetInitCommand(),
			list.ListCmd,
			check.CheckCommand(),
			prune.PruneCommand(),
			add.AddCommand,
			remove.RemoveCommand(),
			fetch.NewFetchCommand(),
			upgrade.UpgradeCommand(),
			self.NewSelfCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
