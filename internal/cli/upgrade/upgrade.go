// Package upgrade implements "dlock upgrade".
package upgrade

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
)

// UpgradeCommand returns the definition for the "upgrade" command.
func UpgradeCommand() *cli.Command {
	return &cli.Command{
		Name:  "upgrade",
		Usage: "Rewrites the lockfile in the current format",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "check",
				Usage: "Exit with an error instead of rewriting when the lockfile is not in the current format",
			},
		},
		Action: func(c *cli.Context) error {
			lf, err := session.OpenExisting(c)
			if err != nil {
				return err
			}
			path := lf.Filename()

			if !lf.Canonicalize() {
				_, _ = fmt.Fprintf(session.Out(c), "%s is already in the current format.\n", path)
				return nil
			}
			if c.Bool("check") {
				return cli.Exit(fmt.Sprintf("Error: %s is not in the current format.", path), 1)
			}

			if _, err := session.Save(c, lf); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(session.Out(c), "Upgraded %s to version %s.\n", path, lf.Content().Version)
			return nil
		},
	}
}
