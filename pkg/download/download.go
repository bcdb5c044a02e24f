package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
)

// ErrTooLarge is returned when a download exceeds the configured byte ceiling.
var ErrTooLarge = errors.New("download exceeds size limit")

// DefaultHeaders mimic a desktop browser; some CDNs refuse bare Go clients.
var DefaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
}

// WriteCounter tracks the total number of bytes written and aborts the copy
// once the limit is crossed.
type WriteCounter struct {
	Total  uint64
	Limit  uint64
	Logger *logging.Logger
}

// Write implements the io.Writer interface and updates the total byte count.
func (wc *WriteCounter) Write(p []byte) (int, error) {
	n := len(p)
	wc.Total += uint64(n)
	if wc.Limit > 0 && wc.Total > wc.Limit {
		return n, ErrTooLarge
	}
	if wc.Logger != nil {
		wc.Logger.Debug("downloading", "received", humanize.Bytes(wc.Total))
	}
	return n, nil
}

// File downloads a URL to filePath, writing through a temporary file that is
// renamed into place only when the body fit under maxBytes. On any failure
// the temporary file is removed. Returns the number of bytes written.
func File(ctx context.Context, fs afero.Fs, client *http.Client, url, filePath string, maxBytes int64, headers map[string]string, logger *logging.Logger) (int64, error) {
	tmpFilePath := filePath + ".tmp"

	out, err := fs.Create(tmpFilePath)
	if err != nil {
		return 0, fmt.Errorf("failed to create temporary file: %w", err)
	}

	cleanup := func() {
		out.Close()
		_ = fs.Remove(tmpFilePath)
	}

	resp, err := get(ctx, client, url, headers)
	if err != nil {
		cleanup()
		return 0, err
	}
	defer resp.Body.Close()

	counter := &WriteCounter{Limit: uint64(maxBytes), Logger: logger}
	written, err := io.Copy(out, io.TeeReader(resp.Body, counter))
	if err != nil {
		cleanup()
		if errors.Is(err, ErrTooLarge) {
			return 0, ErrTooLarge
		}
		return 0, fmt.Errorf("failed to copy data: %w", err)
	}

	if err := out.Close(); err != nil {
		_ = fs.Remove(tmpFilePath)
		return 0, fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := fs.Rename(tmpFilePath, filePath); err != nil {
		_ = fs.Remove(tmpFilePath)
		return 0, fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return written, nil
}

// Bytes downloads a URL into memory, bounded by maxBytes. Meant for small
// payloads such as artwork images.
func Bytes(ctx context.Context, client *http.Client, url string, maxBytes int64, headers map[string]string) ([]byte, error) {
	resp, err := get(ctx, client, url, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

func get(ctx context.Context, client *http.Client, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if headers == nil {
		headers = DefaultHeaders
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to download file: status code %d", resp.StatusCode)
	}
	return resp, nil
}
