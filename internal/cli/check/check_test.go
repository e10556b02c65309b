package check_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/check"
	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/lockfile"
)

func runCheck(t *testing.T, lockfileContent string, args ...string) (string, error) {
	t.Helper()
	lockPath := filepath.Join(t.TempDir(), "deno.lock")
	require.NoError(t, os.WriteFile(lockPath, []byte(lockfileContent), 0o644))

	var out bytes.Buffer
	app := &cli.App{
		Name:           "dlock",
		Flags:          session.Flags(),
		Commands:       []*cli.Command{check.CheckCommand()},
		Writer:         &out,
		ErrWriter:      &bytes.Buffer{},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(append([]string{"dlock", "--lockfile", lockPath, "check"}, args...))
	return out.String(), err
}

func TestCheckCommand_Consistent(t *testing.T) {
	t.Parallel()
	output, err := runCheck(t, `{
  "version": "4",
  "specifiers": {"npm:chalk@5": "npm:chalk@5.0.0"},
  "npm": {"chalk@5.0.0": {"integrity": "sha512-chalk"}},
  "remote": {"https://deno.land/std@0.190.0/mod.ts": "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"}
}`)
	require.NoError(t, err)
	assert.Contains(t, output, "is consistent: 1 specifiers, 0 jsr, 1 npm, 1 remote.")
	assert.NotContains(t, output, "warning:")
}

func TestCheckCommand_Inconsistent(t *testing.T) {
	t.Parallel()
	output, err := runCheck(t, `{
  "version": "4",
  "specifiers": {"npm:chalk@5": "npm:chalk@5.0.0"}
}`)
	require.Error(t, err)
	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "has 1 problems and 0 warnings")
	assert.Contains(t, output, "error: inconsistent lockfile: specifier 'npm:chalk@5' resolves to missing package 'npm:chalk@5.0.0'")
}

func TestCheckCommand_StrictWarnings(t *testing.T) {
	t.Parallel()
	lock := `{
  "version": "4",
  "remote": {"https://example.com/mod.ts": "not-a-checksum"}
}`
	output, err := runCheck(t, lock)
	require.NoError(t, err)
	assert.Contains(t, output, "warning: remote module 'https://example.com/mod.ts' has a malformed checksum")

	_, err = runCheck(t, lock, "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has 0 problems and 1 warnings")
}

func TestWarnings(t *testing.T) {
	t.Parallel()
	content := lockfile.NewContent()
	content.Npm["chalk@5.0.0"] = lockfile.NpmPackageInfo{Integrity: "x"}
	content.Npm["react-dom@18.2.0_react@18.2.0"] = lockfile.NpmPackageInfo{Integrity: "x"}
	content.Npm["odd@latest"] = lockfile.NpmPackageInfo{Integrity: "x"}
	content.Jsr["@std/path@1.0"] = lockfile.JsrPackageInfo{Integrity: "x"}

	assert.Equal(t, []string{
		"jsr package '@std/path@1.0' has a non-semver version '1.0'",
		"npm package 'odd@latest' has a non-semver version 'latest'",
	}, check.Warnings(content))
}
