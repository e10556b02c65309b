// Package check implements "dlock check".
package check

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/lockfile"
	"github.com/nightconcept/denolock/internal/core/pkgid"
)

var checksumRegex = regexp.MustCompile(`^[0-9a-f]{64}$`)

// CheckCommand returns the definition for the "check" command.
func CheckCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verifies that every lockfile entry points at a locked package",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Treat warnings as errors",
			},
		},
		Action: func(c *cli.Context) error {
			lf, err := session.Open(c, false)
			if err != nil {
				return err
			}
			content := lf.Content()
			out := session.Out(c)
			log := session.LoggerFactory(c).NewLogger("check")

			problems := unwrapAll(content.Verify())
			for _, problem := range problems {
				_, _ = color.New(color.FgRed).Fprintf(out, "error: %v\n", problem)
			}

			warnings := Warnings(content)
			for _, warning := range warnings {
				_, _ = color.New(color.FgYellow).Fprintf(out, "warning: %s\n", warning)
			}
			log.Debugf("%d problems, %d warnings", len(problems), len(warnings))

			if len(problems) > 0 || (c.Bool("strict") && len(warnings) > 0) {
				return cli.Exit(fmt.Sprintf("Error: %s has %d problems and %d warnings.", lf.Filename(), len(problems), len(warnings)), 1)
			}

			_, _ = color.New(color.FgGreen).Fprintf(out, "%s is consistent: %d specifiers, %d jsr, %d npm, %d remote.\n",
				lf.Filename(), len(content.Specifiers), len(content.Jsr), len(content.Npm), len(content.Remote))
			return nil
		},
	}
}

func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

// Warnings reports entries that are well formed enough to load but look
// wrong: package versions that are not semver and remote checksums that are
// not hex SHA-256 digests.
func Warnings(content *lockfile.Content) []string {
	var warnings []string
	for _, id := range slices.Sorted(maps.Keys(content.Jsr)) {
		if msg, bad := badVersion("jsr", id); bad {
			warnings = append(warnings, msg)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(content.Npm)) {
		if msg, bad := badVersion("npm", id); bad {
			warnings = append(warnings, msg)
		}
	}
	for _, url := range slices.Sorted(maps.Keys(content.Remote)) {
		if !checksumRegex.MatchString(content.Remote[url]) {
			warnings = append(warnings, fmt.Sprintf("remote module '%s' has a malformed checksum", url))
		}
	}
	return warnings
}

func badVersion(section, id string) (string, bool) {
	_, version, ok := pkgid.SplitNv(id)
	if !ok {
		return fmt.Sprintf("%s package '%s' has no version", section, id), true
	}
	// npm ids carry resolved peer dependencies after an underscore
	version, _, _ = strings.Cut(version, "_")
	if _, err := semver.StrictNewVersion(version); err != nil {
		return fmt.Sprintf("%s package '%s' has a non-semver version '%s'", section, id, version), true
	}
	return "", false
}
