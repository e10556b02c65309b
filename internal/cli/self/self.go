package self

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/creativeprojects/go-selfupdate"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
)

// DefaultRepository is the GitHub repository releases are fetched from.
const DefaultRepository = "nightconcept/denolock"

// NewSelfCommand creates a new command for self-management.
func NewSelfCommand() *cli.Command {
	return &cli.Command{
		Name:  "self",
		Usage: "Manage the dlock CLI application itself",
		Subcommands: []*cli.Command{
			{
				Name:  "update",
				Usage: "Update dlock to the latest version",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Automatically confirm the update",
					},
					&cli.BoolFlag{
						Name:  "check",
						Usage: "Check for available updates without installing",
					},
					&cli.StringFlag{
						Name:  "source",
						Usage: "Specify a custom GitHub update source as 'owner/repo'",
					},
				},
				Action: updateAction,
			},
		},
	}
}

// ParseVersion parses an application version with or without a leading 'v'.
func ParseVersion(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimPrefix(version, "v"))
	if err != nil {
		return nil, fmt.Errorf("error parsing current version '%s': %w. Ensure version is like vX.Y.Z or X.Y.Z", version, err)
	}
	return v, nil
}

// RepositorySlug validates an 'owner/repo' update source, falling back to
// DefaultRepository when empty.
func RepositorySlug(source string) (string, error) {
	if source == "" {
		return DefaultRepository, nil
	}
	owner, repo, ok := strings.Cut(source, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", fmt.Errorf("invalid --source format. Expected 'owner/repo', got: %s", source)
	}
	return source, nil
}

func confirm(in io.Reader, out io.Writer) bool {
	_, _ = fmt.Fprint(out, "Do you want to update? (y/N): ")
	input, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(strings.ToLower(input)) == "y"
}

func updateAction(c *cli.Context) error {
	out := session.Out(c)
	log := session.LoggerFactory(c).NewLogger("self")

	currentVersion := c.App.Version
	current, err := ParseVersion(currentVersion)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	log.Debugf("current version %s", current)

	slug, err := RepositorySlug(c.String("source"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	log.Debugf("using GitHub source %s", slug)

	ghSource, err := selfupdate.NewGitHubSource(selfupdate.GitHubConfig{})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error creating GitHub source: %v", err), 1)
	}
	updater, err := selfupdate.NewUpdater(selfupdate.Config{Source: ghSource})
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to initialize updater: %v", err), 1)
	}

	latest, found, err := updater.DetectLatest(c.Context, selfupdate.ParseSlug(slug))
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error detecting latest version: %v", err), 1)
	}
	if !found || !latest.GreaterThan(current.String()) {
		_, _ = fmt.Fprintf(out, "Current version %s is already the latest.\n", currentVersion)
		return nil
	}
	log.Debugf("latest release %s at %s", latest.Version(), latest.URL)

	_, _ = fmt.Fprintf(out, "New version available: %s (current: %s)\n", latest.Version(), currentVersion)
	if c.Bool("check") {
		return nil
	}
	if !c.Bool("yes") && !confirm(os.Stdin, out) {
		_, _ = fmt.Fprintln(out, "Update cancelled.")
		return nil
	}

	execPath, err := os.Executable()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Could not get executable path: %v", err), 1)
	}
	if err := updater.UpdateTo(c.Context, latest, execPath); err != nil {
		return cli.Exit(fmt.Sprintf("Failed to update: %v", err), 1)
	}

	_, _ = fmt.Fprintf(out, "Successfully updated to version %s.\n", latest.Version())
	return nil
}
