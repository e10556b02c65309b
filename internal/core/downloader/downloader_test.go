// Package downloader_test contains tests for the downloader package.
package downloader_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightconcept/denolock/internal/core/downloader"
)

func TestDownloadFile_Success(t *testing.T) {
	t.Parallel()
	expectedContent := "export const answer = 42;"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(expectedContent))
	}))
	defer server.Close()

	result, err := downloader.New(nil).DownloadFile(context.Background(), server.URL+"/mod.ts")
	require.NoError(t, err)
	assert.Equal(t, []byte(expectedContent), result.Content)
	assert.Equal(t, server.URL+"/mod.ts", result.FinalURL)
	assert.False(t, result.Redirected(server.URL+"/mod.ts"))
}

func TestDownloadFile_FollowsRedirect(t *testing.T) {
	t.Parallel()
	mux := http.NewServeMux()
	mux.HandleFunc("/x/std/mod.ts", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/std@0.190.0/mod.ts", http.StatusFound)
	})
	mux.HandleFunc("/std@0.190.0/mod.ts", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("export {};"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	requested := server.URL + "/x/std/mod.ts"
	result, err := downloader.New(server.Client()).DownloadFile(context.Background(), requested)
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/std@0.190.0/mod.ts", result.FinalURL)
	assert.True(t, result.Redirected(requested))
	assert.Equal(t, []byte("export {};"), result.Content)
}

func TestDownloadFile_HTTPErrors(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := downloader.New(nil).DownloadFile(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to download from")
		assert.Contains(t, err.Error(), fmt.Sprintf("received status code %d", status))
		server.Close()
	}
}

func TestDownloadFile_InvalidURL(t *testing.T) {
	t.Parallel()
	_, err := downloader.New(nil).DownloadFile(context.Background(), "://missing-scheme")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create request for ://missing-scheme")
}

func TestDownloadFile_Canceled(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := downloader.New(nil).DownloadFile(ctx, server.URL)
	require.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), fmt.Sprintf("failed to perform GET request to %s", server.URL))
}

func TestDownloadFile_ReadBodyError(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("webserver doesn't support hijacking")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("failed to hijack connection: %v", err)
			return
		}
		// promise more than is sent, then hang up
		_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 100\r\n\r\npartial data"))
		_ = conn.Close()
	}))
	defer server.Close()

	_, err := downloader.New(nil).DownloadFile(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("failed to read response body from %s", server.URL))
}
