package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/mediagrab/mediagrab/pkg/download"
)

// resolveRedirect follows a shortened link to its canonical URL with a HEAD
// probe. On any failure the original URL is returned unchanged.
func resolveRedirect(ctx context.Context, client *http.Client, url string) string {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodHead, url, nil)
	if err != nil {
		return url
	}
	for k, v := range download.DefaultHeaders {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return url
	}
	resp.Body.Close()

	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return url
}
