package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mediagrab/mediagrab/pkg/toolexec"
)

// ProbeInfo is the metadata-only description of a piece of media, obtained
// without downloading it.
type ProbeInfo struct {
	Title           string  `json:"title"`
	Uploader        string  `json:"uploader"`
	DurationSeconds float64 `json:"duration"`
	Thumbnail       string  `json:"thumbnail"`
}

// Probe asks the tool for a JSON description of the media behind url.
func (f *Fetcher) Probe(ctx context.Context, url string, timeout time.Duration) (*ProbeInfo, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"--dump-json",
		"--no-download",
		"--no-playlist",
		"--no-warnings",
		strings.TrimSpace(url),
	}

	stdout, stderr, exitCode, err := toolexec.Run(runCtx, f.bin, args, "", f.logger)
	if err != nil {
		return nil, fmt.Errorf("metadata probe failed: %w", err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("metadata probe failed: %s", strings.TrimSpace(stderr))
	}

	info := &ProbeInfo{}
	if err := json.Unmarshal([]byte(stdout), info); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %w", err)
	}
	return info, nil
}
