package list

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
)

const listLockfile = `{
  "version": "4",
  "specifiers": {
    "jsr:@std/path@^1": "jsr:@std/path@1.0.0",
    "npm:chalk@5": "npm:chalk@5.0.0"
  },
  "jsr": {
    "@std/path@1.0.0": {
      "integrity": "sha-path"
    }
  },
  "npm": {
    "chalk@5.0.0": {
      "integrity": "sha512-chalk"
    }
  },
  "redirects": {
    "https://deno.land/x/std/mod.ts": "https://deno.land/std@0.190.0/mod.ts"
  },
  "remote": {
    "https://deno.land/std@0.190.0/mod.ts": "abc"
  },
  "workspace": {
    "dependencies": [
      "jsr:@std/path@^1",
      "npm:chalk@5"
    ]
  }
}
`

// setupListTestEnvironment writes the lockfile into a temporary directory and
// returns its path.
func setupListTestEnvironment(t *testing.T, lockfileContent string) string {
	t.Helper()
	lockPath := filepath.Join(t.TempDir(), "deno.lock")
	if lockfileContent != "" {
		require.NoError(t, os.WriteFile(lockPath, []byte(lockfileContent), 0o644))
	}
	return lockPath
}

// runListCommand executes the list command and captures its output.
func runListCommand(t *testing.T, lockPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:           "dlock",
		Flags:          session.Flags(),
		Commands:       []*cli.Command{ListCmd},
		Writer:         &out,
		ErrWriter:      &bytes.Buffer{},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(append([]string{"dlock", "--lockfile", lockPath, "list"}, args...))
	return out.String(), err
}

func TestListCommand(t *testing.T) {
	t.Parallel()
	lockPath := setupListTestEnvironment(t, listLockfile)

	output, err := runListCommand(t, lockPath)
	require.NoError(t, err)

	assert.Contains(t, output, lockPath+" (version 4)")
	assert.Contains(t, output, "jsr:@std/path@^1 -> jsr:@std/path@1.0.0")
	assert.Contains(t, output, "@std/path@1.0.0 sha-path")
	assert.Contains(t, output, "chalk@5.0.0 sha512-chalk")
	assert.Contains(t, output, "https://deno.land/x/std/mod.ts -> https://deno.land/std@0.190.0/mod.ts")
	assert.Contains(t, output, "1 modules")
	assert.Contains(t, output, "(root): 2 deno.json, 0 package.json requirements")

	// sections appear in lockfile order
	assert.Less(t, strings.Index(output, "specifiers:"), strings.Index(output, "jsr:\n"))
	assert.Less(t, strings.Index(output, "jsr:\n"), strings.Index(output, "npm:\n"))
	assert.Less(t, strings.Index(output, "redirects:"), strings.Index(output, "remote:"))
}

func TestListCommand_Purl(t *testing.T) {
	t.Parallel()
	lockPath := setupListTestEnvironment(t, listLockfile)

	output, err := runListCommand(t, lockPath, "--purl")
	require.NoError(t, err)
	assert.Contains(t, output, "pkg:npm/chalk@5.0.0 sha512-chalk")
	assert.Contains(t, output, "pkg:jsr/")
}

func TestListCommand_MissingLockfile(t *testing.T) {
	t.Parallel()
	lockPath := setupListTestEnvironment(t, "")

	output, err := runListCommand(t, lockPath)
	require.NoError(t, err)
	assert.Contains(t, output, "Lockfile is empty.")
}

func TestListCommand_InvalidLockfile(t *testing.T) {
	t.Parallel()
	lockPath := setupListTestEnvironment(t, "{ not json")

	_, err := runListCommand(t, lockPath)
	require.Error(t, err)
	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "Unable to parse contents of lockfile")
}
