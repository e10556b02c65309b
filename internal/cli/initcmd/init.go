// Package initcmd implements "dlock init".
package initcmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/config"
	"github.com/nightconcept/denolock/internal/core/project"
	"github.com/nightconcept/denolock/internal/core/store"
)

// GetInitCommand returns the definition for the "init" command.
func GetInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Writes dlock.toml from the workspace recorded in the lockfile",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path of the manifest to write",
				Value:   config.ManifestName,
			},
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing manifest",
			},
		},
		Action: func(c *cli.Context) error {
			manifestPath := c.String("config")
			if _, err := os.Stat(manifestPath); err == nil && !c.Bool("force") {
				return cli.Exit(fmt.Sprintf("Error: %s already exists. Use --force to overwrite it.", manifestPath), 1)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return cli.Exit(fmt.Sprintf("Error: could not check %s: %v", manifestPath, err), 1)
			}

			lf, err := session.Open(c, false)
			if err != nil {
				return err
			}

			manifest := project.FromWorkspaceConfig(lf.Content().Workspace)
			if rel, err := filepath.Rel(filepath.Dir(manifestPath), lf.Filename()); err == nil && rel != store.DefaultLockfileName {
				manifest.Lockfile = filepath.ToSlash(rel)
			}

			if err := config.WriteManifestFile(manifestPath, manifest); err != nil {
				return cli.Exit(fmt.Sprintf("Error: failed to write %s: %v", manifestPath, err), 1)
			}

			_, _ = fmt.Fprintf(session.Out(c), "Wrote %s: %d members, %d requirements.\n",
				manifestPath, len(manifest.Members), len(manifest.Requirements()))
			for _, name := range manifest.MemberNames() {
				_, _ = fmt.Fprintf(session.Out(c), "  member %s\n", name)
			}
			return nil
		},
	}
}
