package platform

import (
	"context"
	"regexp"
	"strings"

	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/media"
)

var instagramPattern = regexp.MustCompile(`^https?://(?:www\.)?instagram\.com/(?:p|reel|reels|stories)/[\w-]+`)

// Instagram downloads posts and reels via the extraction tool. The platform
// frequently demands authentication, so login diagnostics get their own kind.
type Instagram struct {
	deps Deps
}

func NewInstagram(deps Deps) *Instagram { return &Instagram{deps: deps} }

func (a *Instagram) Name() string { return "instagram" }

func (a *Instagram) Match(url string) bool {
	return instagramPattern.MatchString(strings.TrimSpace(url))
}

func (a *Instagram) Download(ctx context.Context, url string, mediaType media.MediaType) media.FetchResult {
	extractAudio := mediaType == media.TypeAudio

	opts := fetcher.Options{ExtractAudio: extractAudio, AudioFormat: "mp3"}
	if !extractAudio {
		opts.FormatSpec = "best"
	}

	handle, _, ferr := a.deps.Fetcher.Run(ctx, url, a.deps.DownloadDir, opts)
	if ferr != nil {
		if ferr.Kind == media.KindExtractionFailed && strings.Contains(ferr.Message, "401") {
			return media.Failure(media.NewError(media.KindLoginRequired, "login required for this content"))
		}
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
		Author: "Instagram",
		Type:   resultType,
	}
}
