package platform

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/media"
)

var tiktokPattern = regexp.MustCompile(`^https?://(?:www\.)?(?:tiktok\.com/@[\w.-]+/(?:video|photo)/\d+|vm\.tiktok\.com/\w+|vt\.tiktok\.com/\w+)`)

// TikTok downloads single videos through the extraction tool and photo
// slideshows through a third-party aggregation API.
type TikTok struct {
	deps Deps
}

func NewTikTok(deps Deps) *TikTok { return &TikTok{deps: deps} }

func (a *TikTok) Name() string { return "tiktok" }

func (a *TikTok) Match(url string) bool {
	return tiktokPattern.MatchString(strings.TrimSpace(url))
}

func (a *TikTok) Download(ctx context.Context, rawURL string, mediaType media.MediaType) media.FetchResult {
	canonical := rawURL
	if isShortLink(rawURL) {
		canonical = resolveRedirect(ctx, a.deps.Client, rawURL)
	}

	if isSlideshow(canonical) {
		return a.downloadSlideshow(ctx, canonical)
	}

	extractAudio := mediaType == media.TypeAudio

	opts := fetcher.Options{ExtractAudio: extractAudio, AudioFormat: "mp3"}
	if !extractAudio {
		opts.FormatSpec = "best"
	}

	handle, _, ferr := a.deps.Fetcher.Run(ctx, canonical, a.deps.DownloadDir, opts)
	if ferr != nil {
		return media.Failure(ferr)
	}

	resultType := media.TypeVideo
	if extractAudio {
		resultType = media.TypeAudio
	}

	return media.FetchResult{
		OK:     true,
		File:   handle,
		Title:  fetcher.TitleFromHandle(handle),
		Author: "TikTok",
		Type:   resultType,
	}
}

func isShortLink(rawURL string) bool {
	return strings.Contains(rawURL, "vm.tiktok.com") || strings.Contains(rawURL, "vt.tiktok.com")
}

// isSlideshow reports whether the canonical URL points at a photo post.
func isSlideshow(canonical string) bool {
	u, err := url.Parse(canonical)
	if err != nil {
		return false
	}
	return strings.Contains(u.Path, "/photo/")
}
