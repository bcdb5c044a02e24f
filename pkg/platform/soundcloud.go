package platform

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/mediagrab/mediagrab/pkg/download"
	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/media"
	"github.com/mediagrab/mediagrab/pkg/tags"
)

var soundcloudPattern = regexp.MustCompile(`^https?://(?:www\.)?soundcloud\.com/[\w-]+/[\w-]+`)

// maxArtworkBytes bounds the cover image download.
const maxArtworkBytes = 10 * 1024 * 1024

// SoundCloud downloads tracks as mp3, resolving artist/title from the track
// metadata and embedding the highest-resolution artwork it can find.
type SoundCloud struct {
	deps Deps
}

func NewSoundCloud(deps Deps) *SoundCloud { return &SoundCloud{deps: deps} }

func (a *SoundCloud) Name() string { return "soundcloud" }

func (a *SoundCloud) Match(url string) bool {
	return soundcloudPattern.MatchString(strings.TrimSpace(url))
}

func (a *SoundCloud) Download(ctx context.Context, url string, _ media.MediaType) media.FetchResult {
	// Metadata-only probe. Losing it degrades title/artwork, never the fetch.
	info, perr := a.deps.Fetcher.Probe(ctx, url, 30*time.Second)
	if perr != nil {
		a.deps.Logger.Warn("soundcloud metadata probe failed", "url", url, "error", perr)
		info = &fetcher.ProbeInfo{}
	}

	handle, _, ferr := a.deps.Fetcher.Run(ctx, url, a.deps.DownloadDir, fetcher.Options{
		ExtractAudio: true,
		AudioFormat:  "mp3",
	})
	if ferr != nil {
		return media.Failure(ferr)
	}

	rawTitle := info.Title
	if rawTitle == "" {
		rawTitle = fetcher.TitleFromHandle(handle)
	}

	author, title := a.resolveAuthorTitle(rawTitle, info.Uploader, handle.Path)

	if aerr := a.embedArtwork(ctx, handle.Path, info.Thumbnail); aerr != nil {
		a.deps.Logger.Warn("artwork embedding failed", "url", url, "error", aerr)
	}

	return media.FetchResult{
		OK:              true,
		File:            handle,
		Title:           title,
		Author:          author,
		DurationSeconds: int(info.DurationSeconds),
		Type:            media.TypeAudio,
	}
}

// resolveAuthorTitle splits the raw title on the known separator conventions,
// falling back to the probed uploader, then to the artist tag the extraction
// tool embedded in the file, then to "Unknown".
func (a *SoundCloud) resolveAuthorTitle(rawTitle, uploader, path string) (author, title string) {
	if artist, split, ok := tags.ParseArtistTitle(rawTitle); ok {
		return artist, split
	}

	title = rawTitle
	if uploader != "" {
		return uploader, title
	}

	if fileTags, err := tags.Read(path); err == nil && fileTags.Artist != "" {
		return fileTags.Artist, title
	}

	return "Unknown", title
}

// embedArtwork downloads the artwork at the highest resolution tier and
// writes it into the file's cover-art tag. Failures are typed as enrichment
// errors; the caller ignores them without failing the fetch.
func (a *SoundCloud) embedArtwork(ctx context.Context, path, thumbnail string) *media.Error {
	if thumbnail == "" {
		return nil
	}

	// The CDN serves resolution tiers by filename suffix.
	artworkURL := strings.Replace(thumbnail, "-large.", "-t500x500.", 1)

	data, err := download.Bytes(ctx, a.deps.Client, artworkURL, maxArtworkBytes, nil)
	if err != nil && artworkURL != thumbnail {
		data, err = download.Bytes(ctx, a.deps.Client, thumbnail, maxArtworkBytes, nil)
	}
	if err != nil {
		return media.NewError(media.KindEnrichmentFailed, err.Error())
	}

	if err := tags.WriteArtwork(path, data); err != nil {
		return media.NewError(media.KindEnrichmentFailed, err.Error())
	}
	return nil
}
