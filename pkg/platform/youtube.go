package platform

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/media"
)

var youtubePattern = regexp.MustCompile(`^https?://(?:www\.)?(?:youtube\.com/(?:watch\?v=|shorts/)|youtu\.be/|music\.youtube\.com/watch\?v=)[\w-]+`)

// youtubeVideoFormat keeps combined or merged downloads under the transfer
// ceiling before the file is fully retrieved.
const youtubeVideoFormat = "best[filesize<50M]/bestvideo[filesize<45M]+bestaudio/best"

// YouTube downloads videos and audio extractions via the extraction tool.
type YouTube struct {
	deps Deps
}

func NewYouTube(deps Deps) *YouTube { return &YouTube{deps: deps} }

func (a *YouTube) Name() string { return "youtube" }

func (a *YouTube) Match(url string) bool {
	return youtubePattern.MatchString(strings.TrimSpace(url))
}

func (a *YouTube) Download(ctx context.Context, url string, mediaType media.MediaType) media.FetchResult {
	extractAudio := mediaType != media.TypeVideo

	opts := fetcher.Options{
		ExtractAudio: extractAudio,
		AudioFormat:  "mp3",
		Timeout:      300 * time.Second, // large videos transcode slowly
	}
	if !extractAudio {
		opts.FormatSpec = youtubeVideoFormat
	}

	handle, _, ferr := a.deps.Fetcher.Run(ctx, url, a.deps.DownloadDir, opts)
	if ferr != nil {
		return media.Failure(ferr)
	}

	resultType := media.TypeAudio
	if !extractAudio {
		resultType = media.TypeVideo
	}

	return media.FetchResult{
		OK:     true,
		File:   handle,
		Title:  fetcher.TitleFromHandle(handle),
		Author: "YouTube",
		Type:   resultType,
	}
}
