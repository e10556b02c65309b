// Package prune implements "dlock prune".
package prune

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/config"
	"github.com/nightconcept/denolock/internal/core/lockfile"
	"github.com/nightconcept/denolock/internal/core/project"
)

type counts struct {
	specifiers, jsr, npm int
}

func countOf(c *lockfile.Content) counts {
	return counts{specifiers: len(c.Specifiers), jsr: len(c.Jsr), npm: len(c.Npm)}
}

// PruneCommand returns the definition for the "prune" command.
func PruneCommand() *cli.Command {
	return &cli.Command{
		Name:  "prune",
		Usage: "Records the workspace requirements from dlock.toml and drops lockfile entries nothing requires",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path of the workspace manifest",
				Value:   config.ManifestName,
			},
			&cli.BoolFlag{
				Name:  "no-npm",
				Usage: "Keep the package.json requirements already recorded",
			},
			&cli.BoolFlag{
				Name:  "no-config",
				Usage: "Keep the deno.json requirements and members already recorded",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would change without writing the lockfile",
			},
		},
		Action: func(c *cli.Context) error {
			manifestPath := c.String("config")
			manifest, err := config.LoadManifestFile(manifestPath)
			switch {
			case errors.Is(err, fs.ErrNotExist) && c.Bool("no-config"):
				manifest = project.NewManifest()
			case errors.Is(err, fs.ErrNotExist):
				return cli.Exit(fmt.Sprintf("Error: %s not found. Run 'dlock init' or pass --no-config.", manifestPath), 1)
			case err != nil:
				return cli.Exit(fmt.Sprintf("Error: failed to load %s: %v", manifestPath, err), 1)
			}

			// without --lockfile the lockfile sits next to the manifest
			lockPath := c.String(session.LockfileFlag)
			if !c.IsSet(session.LockfileFlag) {
				lockPath = config.LockfilePath(filepath.Dir(manifestPath), manifest)
			}
			lf, err := session.OpenPath(c, lockPath, false)
			if err != nil {
				return err
			}

			session.LoggerFactory(c).NewLogger("prune").Debugf("applying %s: members %v", manifestPath, manifest.MemberNames())

			before := countOf(lf.Content())
			lf.SetWorkspaceConfig(lockfile.SetWorkspaceConfigOptions{
				Config:   manifest.WorkspaceConfig(),
				NoNpm:    c.Bool("no-npm"),
				NoConfig: c.Bool("no-config"),
			})
			after := countOf(lf.Content())

			out := session.Out(c)
			_, _ = fmt.Fprintf(out, "Removed %d specifiers, %d jsr packages, %d npm packages.\n",
				before.specifiers-after.specifiers, before.jsr-after.jsr, before.npm-after.npm)

			if c.Bool("dry-run") {
				if lf.HasContentChanged() {
					_, _ = color.New(color.FgYellow).Fprintf(out, "%s would be updated.\n", lf.Filename())
				} else {
					_, _ = fmt.Fprintf(out, "%s is up to date.\n", lf.Filename())
				}
				return nil
			}

			written, err := session.Save(c, lf)
			if err != nil {
				return err
			}
			if written {
				_, _ = color.New(color.FgGreen).Fprintf(out, "Updated %s.\n", lf.Filename())
			} else {
				_, _ = fmt.Fprintf(out, "%s is up to date.\n", lf.Filename())
			}
			return nil
		},
	}
}
