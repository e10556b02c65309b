// Package session holds what every dlock command shares: the global flags,
// the logger factory and loading and saving the lockfile they name.
package session

import (
	"fmt"
	"io"

	"github.com/pion/logging"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/core/lockfile"
	"github.com/nightconcept/denolock/internal/core/store"
)

// Global flag names.
const (
	LockfileFlag = "lockfile"
	VerboseFlag  = "verbose"
)

// Flags returns the flags accepted before any command.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    LockfileFlag,
			Aliases: []string{"l"},
			Usage:   "Path of the lockfile to operate on",
			Value:   store.DefaultLockfileName,
			EnvVars: []string{"DLOCK_LOCKFILE"},
		},
		&cli.BoolFlag{
			Name:  VerboseFlag,
			Usage: "Enable verbose output",
		},
	}
}

// LoggerFactory returns a factory writing to the app's error writer, at
// debug level when --verbose is set.
func LoggerFactory(c *cli.Context) logging.LoggerFactory {
	factory := logging.NewDefaultLoggerFactory()
	factory.Writer = errWriter(c)
	factory.DefaultLogLevel = logging.LogLevelInfo
	if c.Bool(VerboseFlag) {
		factory.DefaultLogLevel = logging.LogLevelDebug
	}
	return factory
}

func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return io.Discard
}

// Out returns the writer commands print their results to.
func Out(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return io.Discard
}

// Open loads the lockfile named by --lockfile. A load failure is returned as
// a cli exit error.
func Open(c *cli.Context, overwrite bool) (*lockfile.Lockfile, error) {
	return OpenPath(c, c.String(LockfileFlag), overwrite)
}

// OpenPath loads the lockfile at path.
func OpenPath(c *cli.Context, path string, overwrite bool) (*lockfile.Lockfile, error) {
	lf, err := store.Load(path, overwrite, LoggerFactory(c).NewLogger("lockfile"))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	return lf, nil
}

// OpenExisting loads the lockfile named by --lockfile and fails when it does
// not exist.
func OpenExisting(c *cli.Context) (*lockfile.Lockfile, error) {
	lf, err := store.LoadExisting(c.String(LockfileFlag), false, LoggerFactory(c).NewLogger("lockfile"))
	if err != nil {
		return nil, cli.Exit(fmt.Sprintf("Error: %v", err), 1)
	}
	return lf, nil
}

// Save writes pending lockfile changes and reports whether anything was written.
func Save(c *cli.Context, lf *lockfile.Lockfile) (bool, error) {
	written, err := store.Save(lf, LoggerFactory(c).NewLogger("store"))
	if err != nil {
		return false, cli.Exit(fmt.Sprintf("Error: failed to write %s: %v", lf.Filename(), err), 1)
	}
	return written, nil
}
