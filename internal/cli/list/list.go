package list

import (
	"fmt"
	"maps"
	"slices"

	"github.com/fatih/color"
	packageurl "github.com/package-url/packageurl-go"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/lockfile"
	"github.com/nightconcept/denolock/internal/core/pkgid"
)

const jsrPurlType = "jsr"

// ListCmd defines the structure for the 'list' command.
var ListCmd = &cli.Command{
	Name:    "list",
	Aliases: []string{"ls"},
	Usage:   "Displays the packages, redirects and remote modules a lockfile pins",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "purl",
			Usage: "Show packages as package URLs",
		},
	},
	Action: func(c *cli.Context) error {
		lf, err := session.Open(c, false)
		if err != nil {
			return err
		}
		content := lf.Content()
		out := session.Out(c)
		usePurl := c.Bool("purl")

		headerColor := color.New(color.FgMagenta, color.Bold, color.Underline)
		sectionColor := color.New(color.FgCyan, color.Bold)
		nameColor := color.New(color.FgWhite)
		hashColor := color.New(color.FgYellow)
		dimColor := color.New(color.FgHiBlack)

		_, _ = headerColor.Fprintf(out, "%s", lf.Filename())
		_, _ = fmt.Fprintf(out, " (version %s)\n", content.Version)

		if content.IsEmpty() {
			_, _ = fmt.Fprintln(out, "Lockfile is empty.")
			return nil
		}

		if len(content.Specifiers) > 0 {
			_, _ = sectionColor.Fprintln(out, "\nspecifiers:")
			for _, req := range sortedKeys(content.Specifiers) {
				_, _ = fmt.Fprintf(out, "  %s %s %s\n", nameColor.Sprint(req), dimColor.Sprint("->"), content.Specifiers[req])
			}
		}

		if len(content.Jsr) > 0 {
			_, _ = sectionColor.Fprintln(out, "\njsr:")
			for _, id := range sortedKeys(content.Jsr) {
				_, _ = fmt.Fprintf(out, "  %s %s\n", nameColor.Sprint(display(jsrPurlType, id, usePurl)), hashColor.Sprint(content.Jsr[id].Integrity))
			}
		}

		if len(content.Npm) > 0 {
			_, _ = sectionColor.Fprintln(out, "\nnpm:")
			for _, id := range sortedKeys(content.Npm) {
				_, _ = fmt.Fprintf(out, "  %s %s\n", nameColor.Sprint(display(packageurl.TypeNPM, id, usePurl)), hashColor.Sprint(content.Npm[id].Integrity))
			}
		}

		if len(content.Redirects) > 0 {
			_, _ = sectionColor.Fprintln(out, "\nredirects:")
			for _, from := range sortedKeys(content.Redirects) {
				_, _ = fmt.Fprintf(out, "  %s %s %s\n", from, dimColor.Sprint("->"), content.Redirects[from])
			}
		}

		_, _ = sectionColor.Fprintln(out, "\nremote:")
		_, _ = fmt.Fprintf(out, "  %d modules\n", len(content.Remote))

		printWorkspace(c, content.Workspace, sectionColor)
		return nil
	},
}

func display(purlType, id string, usePurl bool) string {
	if !usePurl {
		return id
	}
	if purl, ok := pkgid.PackageURL(purlType, id); ok {
		return purl
	}
	return id
}

func printWorkspace(c *cli.Context, ws lockfile.WorkspaceConfig, sectionColor *color.Color) {
	if ws.IsEmpty() {
		return
	}
	out := session.Out(c)
	_, _ = sectionColor.Fprintln(out, "\nworkspace:")
	printMember(c, "(root)", ws.Root)
	for _, name := range sortedKeys(ws.Members) {
		printMember(c, name, ws.Members[name])
	}
}

func printMember(c *cli.Context, name string, m lockfile.WorkspaceMemberConfig) {
	_, _ = fmt.Fprintf(session.Out(c), "  %s: %d deno.json, %d package.json requirements\n",
		name, len(m.Dependencies), len(m.PackageJSONDeps))
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
