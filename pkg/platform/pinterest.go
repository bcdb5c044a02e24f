package platform

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mediagrab/mediagrab/pkg/download"
	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/media"
)

var (
	pinterestPattern = regexp.MustCompile(`^https?://(?:[a-z]{2}\.)?(?:www\.)?(?:pinterest\.(?:com|co\.uk|de|fr|es|it|ca|au|jp|kr|se|nz|at|ch|pt|ie|co|cl|mx|dk|no|be|fi|nl|pl|cz)/pin/[\w-]+|pin\.it/\w+)`)

	pinTitlePattern = regexp.MustCompile(`<title>([^<]+)</title>`)
	pinTitleSuffix  = regexp.MustCompile(`\s*[-|]\s*Pinterest.*$`)
	pinVideoPattern = regexp.MustCompile(`https://v[^"\s]*\.pinimg\.com/[^"\s]+\.mp4`)
	pinImagePattern = regexp.MustCompile(`https://i\.pinimg\.com/[^"\s]+\.(?:jpg|png|gif|webp)`)

	unsafeFilenameChars = regexp.MustCompile(`[^\w\s-]`)
)

// Pinterest scrapes the pin page for a direct media URL; videos win over
// images, and among images the original-quality tier wins.
type Pinterest struct {
	deps Deps
}

func NewPinterest(deps Deps) *Pinterest { return &Pinterest{deps: deps} }

func (a *Pinterest) Name() string { return "pinterest" }

func (a *Pinterest) Match(url string) bool {
	return pinterestPattern.MatchString(strings.TrimSpace(url))
}

func (a *Pinterest) Download(ctx context.Context, rawURL string, _ media.MediaType) media.FetchResult {
	canonical := rawURL
	if strings.Contains(rawURL, "pin.it") {
		canonical = resolveRedirect(ctx, a.deps.Client, rawURL)
	}

	imageURL, videoURL, title, err := a.extractMedia(ctx, canonical)
	if err != nil {
		return media.Failure(media.Errorf("failed to fetch pin page: %v", err))
	}
	if imageURL == "" && videoURL == "" {
		return media.Failure(media.Errorf("could not extract media from page"))
	}

	mediaURL := videoURL
	isVideo := videoURL != ""
	ext := ".mp4"
	if !isVideo {
		mediaURL = imageURL
		ext = ".jpg"
	}

	if title == "" {
		title = "Pinterest"
	}

	token := fetcher.NewToken()
	safeTitle := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(title, ""))
	safeTitle = media.Truncate(safeTitle, 50)
	if safeTitle == "" {
		safeTitle = "pinterest"
	}
	path := filepath.Join(a.deps.DownloadDir, token+"_"+safeTitle+ext)

	dlCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, derr := download.File(dlCtx, a.deps.Store.Fs(), a.deps.Client, mediaURL, path, a.deps.MaxFileSize, download.DefaultHeaders, a.deps.Logger)
	if derr != nil {
		if errors.Is(derr, download.ErrTooLarge) {
			return media.Failure(media.NewError(media.KindSizeLimitExceeded, "file exceeds size limit"))
		}
		return media.Failure(media.Errorf("download failed: %v", derr))
	}

	handle, terr := a.deps.Store.Track(path, token)
	if terr != nil {
		return media.Failure(media.Errorf("failed to track download: %v", terr))
	}

	resultType := media.TypePhoto
	if isVideo {
		resultType = media.TypeVideo
	}

	return media.FetchResult{
		OK:     true,
		File:   handle,
		Title:  title,
		Author: "Pinterest",
		Type:   resultType,
	}
}

// extractMedia pulls the best media URL and a display title out of the pin
// page's HTML.
func (a *Pinterest) extractMedia(ctx context.Context, pageURL string) (imageURL, videoURL, title string, err error) {
	reqCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	body, err := download.Bytes(reqCtx, a.deps.Client, pageURL, 8*1024*1024, download.DefaultHeaders)
	if err != nil {
		return "", "", "", err
	}
	html := string(body)

	if m := pinTitlePattern.FindStringSubmatch(html); m != nil {
		title = strings.TrimSpace(pinTitleSuffix.ReplaceAllString(m[1], ""))
		title = media.Truncate(title, 80)
	}

	if videos := pinVideoPattern.FindAllString(html, -1); len(videos) > 0 {
		return "", videos[0], title, nil
	}

	images := pinImagePattern.FindAllString(html, -1)
	if len(images) == 0 {
		return "", "", title, nil
	}

	imageURL = images[0]
	for _, quality := range []string{"/originals/", "/1200x/", "/736x/"} {
		if best := firstContaining(images, quality); best != "" {
			imageURL = best
			break
		}
	}
	return imageURL, "", title, nil
}

func firstContaining(urls []string, substr string) string {
	for _, u := range urls {
		if strings.Contains(u, substr) {
			return u
		}
	}
	return ""
}
