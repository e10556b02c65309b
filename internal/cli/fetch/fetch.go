package fetch

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/downloader"
	"github.com/nightconcept/denolock/internal/core/hasher"
)

type moduleState struct {
	URL      string
	Locked   string
	Actual   string
	Mismatch bool
	Err      error
}

// NewFetchCommand creates the "fetch" command, which downloads locked remote
// modules again and compares them with their recorded checksums.
func NewFetchCommand() *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "Re-downloads locked remote modules and verifies their checksums",
		ArgsUsage: "[urls...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "update",
				Aliases: []string{"u"},
				Usage:   "Record the new checksum of modules that changed",
			},
		},
		Action: fetchAction,
	}
}

func fetchAction(c *cli.Context) error {
	update := c.Bool("update")
	out := session.Out(c)
	log := session.LoggerFactory(c).NewLogger("fetch")

	lf, err := session.Open(c, false)
	if err != nil {
		return err
	}

	targets, err := selectTargets(lf.Remote(), c.Args().Slice())
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	if len(targets) == 0 {
		_, _ = fmt.Fprintf(out, "No remote modules locked in %s.\n", lf.Filename())
		return nil
	}
	log.Debugf("verifying %d remote modules", len(targets))

	dl := downloader.New(nil)
	states := make([]moduleState, 0, len(targets))
	for _, target := range targets {
		state := moduleState{URL: target, Locked: lf.Remote()[target]}
		result, err := dl.DownloadFile(c.Context, target)
		if err != nil {
			state.Err = err
			states = append(states, state)
			continue
		}
		state.Actual = hasher.Checksum(result.Content)
		var mismatch *hasher.ChecksumMismatchError
		if err := hasher.Verify(target, result.Content, state.Locked); errors.As(err, &mismatch) {
			state.Mismatch = true
			log.Debugf("%v", mismatch)
		}
		states = append(states, state)
	}

	var verified, changed, failed int
	for _, state := range states {
		switch {
		case state.Err != nil:
			failed++
			_, _ = fmt.Fprintf(out, "%s %s: %v\n", color.RedString("failed"), state.URL, state.Err)
		case state.Mismatch && update:
			changed++
			lf.InsertRemote(state.URL, state.Actual)
			_, _ = fmt.Fprintf(out, "%s %s %s\n", color.YellowString("updated"), state.URL, state.Actual)
		case state.Mismatch:
			changed++
			_, _ = fmt.Fprintf(out, "%s %s: lockfile has %s, got %s\n", color.RedString("mismatch"), state.URL, state.Locked, state.Actual)
		default:
			verified++
			_, _ = fmt.Fprintf(out, "%s %s\n", color.GreenString("ok"), state.URL)
		}
	}

	if update && changed > 0 {
		if _, err := session.Save(c, lf); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(out, "%d verified, %d changed, %d failed.\n", verified, changed, failed)
	unverified := failed
	if !update {
		unverified += changed
	}
	if unverified > 0 {
		return cli.Exit(fmt.Sprintf("Error: %d of %d remote modules could not be verified.", unverified, len(states)), 1)
	}
	return nil
}

// selectTargets returns the requested urls, or every locked url when none
// were requested, in sorted order.
func selectTargets(remote map[string]string, requested []string) ([]string, error) {
	if len(requested) == 0 {
		targets := make([]string, 0, len(remote))
		for url := range remote {
			targets = append(targets, url)
		}
		sort.Strings(targets)
		return targets, nil
	}
	targets := make([]string, 0, len(requested))
	for _, url := range requested {
		if _, ok := remote[url]; !ok {
			return nil, fmt.Errorf("%s is not locked", url)
		}
		targets = append(targets, url)
	}
	sort.Strings(targets)
	return targets, nil
}
