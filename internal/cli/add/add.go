package add

import (
	"fmt"
	"net/url"

	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/downloader"
	"github.com/nightconcept/denolock/internal/core/hasher"
)

// AddCommand defines the structure for the "add" command.
var AddCommand = &cli.Command{
	Name:  "add",
	Usage: "Records a remote module checksum or a redirect in the lockfile",
	Subcommands: []*cli.Command{
		{
			Name:      "remote",
			Usage:     "Downloads a remote module and locks its checksum",
			ArgsUsage: "<url>",
			Action:    addRemote,
		},
		{
			Name:      "redirect",
			Usage:     "Records that a specifier redirects to another",
			ArgsUsage: "<from> <to>",
			Action:    addRedirect,
		},
	},
}

func addRemote(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("Error: <url> argument is required.", 1)
	}
	requested := c.Args().Get(0)
	if u, err := url.Parse(requested); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return cli.Exit(fmt.Sprintf("Error: '%s' is not an http(s) URL.", requested), 1)
	}

	lf, err := session.Open(c, false)
	if err != nil {
		return err
	}
	log := session.LoggerFactory(c).NewLogger("add")

	log.Debugf("downloading %s", requested)
	result, err := downloader.New(nil).DownloadFile(c.Context, requested)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}

	checksum := hasher.Checksum(result.Content)
	if existing, ok := lf.Remote()[result.FinalURL]; ok && existing != checksum {
		log.Warnf("checksum of %s changed from %s", result.FinalURL, existing)
	}
	lf.InsertRemote(result.FinalURL, checksum)
	if result.Redirected(requested) {
		log.Debugf("%s redirected to %s", requested, result.FinalURL)
		lf.InsertRedirect(requested, result.FinalURL)
	}

	if _, err := session.Save(c, lf); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(session.Out(c), "Locked %s %s\n", result.FinalURL, checksum)
	return nil
}

func addRedirect(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("Error: <from> and <to> arguments are required.", 1)
	}
	from, to := c.Args().Get(0), c.Args().Get(1)

	lf, err := session.Open(c, false)
	if err != nil {
		return err
	}
	lf.InsertRedirect(from, to)

	written, err := session.Save(c, lf)
	if err != nil {
		return err
	}
	if written {
		_, _ = fmt.Fprintf(session.Out(c), "Redirect %s -> %s recorded.\n", from, to)
	} else {
		_, _ = fmt.Fprintf(session.Out(c), "Nothing to record for %s.\n", from)
	}
	return nil
}
