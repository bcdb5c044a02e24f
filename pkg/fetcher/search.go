package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mediagrab/mediagrab/pkg/toolexec"
)

// SearchResult is one entry of an audio-platform search.
type SearchResult struct {
	Title           string
	URL             string
	Uploader        string
	DurationSeconds int
}

// Search runs an audio-platform search through the tool's flat-playlist JSON
// dump. No media is downloaded.
func (f *Fetcher) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	args := []string{
		"--dump-json",
		"--flat-playlist",
		"--no-download",
		fmt.Sprintf("scsearch%d:%s", limit, query),
	}

	stdout, stderr, exitCode, err := toolexec.Run(runCtx, f.bin, args, "", f.logger)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if exitCode != 0 {
		return nil, fmt.Errorf("search failed: %s", strings.TrimSpace(stderr))
	}

	var results []SearchResult
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if line == "" {
			continue
		}
		var entry struct {
			Title      string  `json:"title"`
			URL        string  `json:"url"`
			WebpageURL string  `json:"webpage_url"`
			Uploader   string  `json:"uploader"`
			Duration   float64 `json:"duration"`
		}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		url := entry.URL
		if url == "" {
			url = entry.WebpageURL
		}
		results = append(results, SearchResult{
			Title:           entry.Title,
			URL:             url,
			Uploader:        entry.Uploader,
			DurationSeconds: int(entry.Duration),
		})
	}
	return results, nil
}
