// Package downloader fetches remote modules so their checksums can be locked.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Result is a downloaded module.
type Result struct {
	Content []byte
	// FinalURL is the URL the content was served from after following
	// redirects. It equals the requested URL when there were none.
	FinalURL string
}

// Redirected reports whether the server redirected the request.
func (r *Result) Redirected(requested string) bool {
	return r.FinalURL != requested
}

// Downloader fetches URLs with an HTTP client.
type Downloader struct {
	client *http.Client
}

// New returns a Downloader using client, or http.DefaultClient when nil.
func New(client *http.Client) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client}
}

// DownloadFile fetches the content from the given URL.
// It returns an error if the download fails or if the HTTP status code is
// not 200 OK.
func (d *Downloader) DownloadFile(ctx context.Context, url string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform GET request to %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download from %s: received status code %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", url, err)
	}

	return &Result{Content: body, FinalURL: resp.Request.URL.String()}, nil
}
