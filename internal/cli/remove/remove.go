package remove

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
)

// RemoveCommand defines the structure for the 'remove' CLI command.
func RemoveCommand() *cli.Command {
	return &cli.Command{
		Name:  "remove",
		Usage: "Removes an entry from the lockfile",
		Subcommands: []*cli.Command{
			{
				Name:      "redirect",
				Usage:     "Removes a recorded redirect",
				ArgsUsage: "<from>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return cli.Exit("Error: Missing <from> argument.", 1)
					}
					from := c.Args().First()

					lf, err := session.Open(c, false)
					if err != nil {
						return err
					}
					to, ok := lf.RemoveRedirect(from)
					if !ok {
						return cli.Exit(fmt.Sprintf("Error: No redirect for '%s' in %s.", from, lf.Filename()), 1)
					}

					if _, err := session.Save(c, lf); err != nil {
						return err
					}
					_, _ = fmt.Fprintf(session.Out(c), "Removed redirect %s -> %s\n", from, to)
					return nil
				},
			},
		},
	}
}
