package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// downloadBlockSize is the fixed block used when streaming a remote source
// to disk.
const downloadBlockSize = 128 * 1024

// Acquirer resolves a source reference into a local file.
type Acquirer struct {
	client *http.Client
}

func NewAcquirer() *Acquirer {
	return &Acquirer{
		client: &http.Client{
			Timeout: 30 * time.Minute, // media files can be large
		},
	}
}

// Acquire returns a local path for the source. A path that already exists on
// disk is used directly; anything else must be a valid absolute URL and is
// streamed into dest. The returned error is the raw cause, the pipeline
// wraps it into the taxonomy.
func (a *Acquirer) Acquire(ctx context.Context, source, dest string) (string, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		return source, nil
	}

	if !isValidURL(source) {
		return "", fmt.Errorf("source is neither an existing file nor a valid URL: %s", source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download file: status code %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}

	buf := make([]byte, downloadBlockSize)
	written, err := io.CopyBuffer(out, resp.Body, buf)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", fmt.Errorf("failed to write destination file: %w", err)
	}

	if written == 0 {
		return "", fmt.Errorf("downloaded file is empty: %s", dest)
	}

	fmt.Printf("[DOWNLOAD] saved %.1fMB to %s\n", float64(written)/(1024*1024), dest)
	return dest, nil
}

// isValidURL requires both a scheme and a host.
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
