package add

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/nightconcept/denolock/internal/cli/session"
	"github.com/nightconcept/denolock/internal/core/hasher"
)

type lockDocument struct {
	Version   string            `json:"version"`
	Redirects map[string]string `json:"redirects"`
	Remote    map[string]string `json:"remote"`
}

func runAddCommand(t *testing.T, lockPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.App{
		Name:           "dlock",
		Flags:          session.Flags(),
		Commands:       []*cli.Command{AddCommand},
		Writer:         &out,
		ErrWriter:      &bytes.Buffer{},
		ExitErrHandler: func(*cli.Context, error) {},
	}
	err := app.Run(append([]string{"dlock", "--lockfile", lockPath, "add"}, args...))
	return out.String(), err
}

func readLockDocument(t *testing.T, lockPath string) lockDocument {
	t.Helper()
	data, err := os.ReadFile(lockPath)
	require.NoError(t, err)
	var doc lockDocument
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

func startMockServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/std@0.190.0/mod.ts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("export const version = '0.190.0';"))
	})
	mux.HandleFunc("/x/std/mod.ts", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/std@0.190.0/mod.ts", http.StatusFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestAddRemote_LocksChecksum(t *testing.T) {
	t.Parallel()
	server := startMockServer(t)
	lockPath := filepath.Join(t.TempDir(), "deno.lock")

	output, err := runAddCommand(t, lockPath, "remote", server.URL+"/std@0.190.0/mod.ts")
	require.NoError(t, err)

	checksum := hasher.Checksum([]byte("export const version = '0.190.0';"))
	assert.Contains(t, output, "Locked "+server.URL+"/std@0.190.0/mod.ts "+checksum)

	doc := readLockDocument(t, lockPath)
	assert.Equal(t, "4", doc.Version)
	assert.Equal(t, map[string]string{server.URL + "/std@0.190.0/mod.ts": checksum}, doc.Remote)
	assert.Empty(t, doc.Redirects)
}

func TestAddRemote_RecordsRedirect(t *testing.T) {
	t.Parallel()
	server := startMockServer(t)
	lockPath := filepath.Join(t.TempDir(), "deno.lock")

	_, err := runAddCommand(t, lockPath, "remote", server.URL+"/x/std/mod.ts")
	require.NoError(t, err)

	doc := readLockDocument(t, lockPath)
	assert.Equal(t, map[string]string{server.URL + "/x/std/mod.ts": server.URL + "/std@0.190.0/mod.ts"}, doc.Redirects)
	assert.Contains(t, doc.Remote, server.URL+"/std@0.190.0/mod.ts")
}

func TestAddRemote_UnchangedLockfileNotRewritten(t *testing.T) {
	t.Parallel()
	server := startMockServer(t)
	lockPath := filepath.Join(t.TempDir(), "deno.lock")
	target := server.URL + "/std@0.190.0/mod.ts"
	checksum := hasher.Checksum([]byte("export const version = '0.190.0';"))

	// hand formatted, so any rewrite would show
	original := `{"version": "4", "remote": {"` + target + `": "` + checksum + `"}}`
	require.NoError(t, os.WriteFile(lockPath, []byte(original), 0o644))

	_, err := runAddCommand(t, lockPath, "remote", target)
	require.NoError(t, err)

	data, err := os.ReadFile(lockPath)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestAddRemote_Errors(t *testing.T) {
	t.Parallel()
	server := startMockServer(t)
	lockPath := filepath.Join(t.TempDir(), "deno.lock")

	_, err := runAddCommand(t, lockPath, "remote")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "<url> argument is required")

	_, err = runAddCommand(t, lockPath, "remote", "jsr:@std/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not an http(s) URL")

	_, err = runAddCommand(t, lockPath, "remote", server.URL+"/missing.ts")
	require.Error(t, err)
	exitErr, ok := err.(cli.ExitCoder)
	require.True(t, ok)
	assert.Equal(t, 1, exitErr.ExitCode())
	assert.Contains(t, err.Error(), "received status code 404")
	assert.NoFileExists(t, lockPath)
}

func TestAddRedirect(t *testing.T) {
	t.Parallel()
	lockPath := filepath.Join(t.TempDir(), "deno.lock")

	output, err := runAddCommand(t, lockPath, "redirect", "https://deno.land/x/oak/mod.ts", "https://deno.land/x/oak@v12.6.3/mod.ts")
	require.NoError(t, err)
	assert.Contains(t, output, "recorded")
	doc := readLockDocument(t, lockPath)
	assert.Equal(t, "https://deno.land/x/oak@v12.6.3/mod.ts", doc.Redirects["https://deno.land/x/oak/mod.ts"])

	// jsr specifiers are never recorded
	output, err = runAddCommand(t, lockPath, "redirect", "jsr:@std/path", "jsr:@std/path@1.0.0")
	require.NoError(t, err)
	assert.Contains(t, output, "Nothing to record")

	_, err = runAddCommand(t, lockPath, "redirect", "only-one")
	require.Error(t, err)
}
