package platform

import (
	"context"
	neturl "net/url"
	"strings"

	"github.com/mediagrab/mediagrab/pkg/media"
)

// Router evaluates a fixed, ordered adapter list and dispatches a URL to the
// first match. Ordering is the tie-break; patterns are registered mutually
// near-exclusive so it rarely matters.
type Router struct {
	adapters []Adapter
}

// NewRouter builds the router with the standard adapter order.
func NewRouter(deps Deps) *Router {
	return &Router{
		adapters: []Adapter{
			NewSoundCloud(deps),
			NewTikTok(deps),
			NewYouTube(deps),
			NewInstagram(deps),
			NewPinterest(deps),
		},
	}
}

// Route returns the first adapter matching url, or nil when the URL is not
// handled by any platform. A nil return is not an error.
func (r *Router) Route(url string) Adapter {
	for _, a := range r.adapters {
		if a.Match(url) {
			return a
		}
	}
	return nil
}

// Platform returns the name of the adapter handling url, or "".
func (r *Router) Platform(url string) string {
	if a := r.Route(url); a != nil {
		return a.Name()
	}
	return ""
}

// Download routes and downloads in one step.
func (r *Router) Download(ctx context.Context, url string, mediaType media.MediaType) media.FetchResult {
	parsed, err := neturl.Parse(strings.TrimSpace(url))
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return media.Failure(media.NewError(media.KindInvalidURL, "not an http(s) url"))
	}
	a := r.Route(url)
	if a == nil {
		return media.Failure(media.NewError(media.KindUnsupportedPlatform, "unsupported platform"))
	}
	return a.Download(ctx, url, mediaType)
}
