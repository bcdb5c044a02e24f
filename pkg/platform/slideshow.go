package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/mediagrab/mediagrab/pkg/download"
	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/media"
)

// maxSlideshowImages caps how many images of a photo post are retrieved.
const maxSlideshowImages = 10

// slideshowResponse is the aggregation API's envelope. Code zero means ok.
type slideshowResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		Title  string   `json:"title"`
		Play   string   `json:"play"`
		Images []string `json:"images"`
		Author struct {
			Nickname string `json:"nickname"`
		} `json:"author"`
	} `json:"data"`
}

// downloadSlideshow fetches a photo post through the aggregation API. Each
// image is retrieved independently over HTTP; the first becomes the primary
// file, the rest travel as extras so the caller delivers them as one unit.
// When the API reports a plain video instead, that video is downloaded
// directly.
func (a *TikTok) downloadSlideshow(ctx context.Context, canonical string) media.FetchResult {
	info, err := a.querySlideshowAPI(ctx, canonical)
	if err != nil {
		return media.Failure(media.Errorf("slideshow lookup failed: %v", err))
	}

	author := info.Data.Author.Nickname
	if author == "" {
		author = "TikTok"
	}
	title := info.Data.Title
	if title == "" {
		title = "Slideshow"
	}

	if len(info.Data.Images) == 0 {
		if info.Data.Play == "" {
			return media.Failure(media.Errorf("slideshow has no media"))
		}
		return a.downloadDirect(ctx, info.Data.Play, title, author)
	}

	images := info.Data.Images
	if len(images) > maxSlideshowImages {
		images = images[:maxSlideshowImages]
	}

	var handles []*filestore.Handle
	for i, imageURL := range images {
		token := fetcher.NewToken()
		path := filepath.Join(a.deps.DownloadDir, fmt.Sprintf("%s_slide%02d.jpg", token, i+1))

		dlCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		_, derr := download.File(dlCtx, a.deps.Store.Fs(), a.deps.Client, imageURL, path, a.deps.MaxFileSize, nil, a.deps.Logger)
		cancel()
		if derr != nil {
			a.deps.Store.ReleaseAll(handles)
			if errors.Is(derr, download.ErrTooLarge) {
				return media.Failure(media.NewError(media.KindSizeLimitExceeded, "slideshow image exceeds size limit"))
			}
			return media.Failure(media.Errorf("slideshow image download failed: %v", derr))
		}

		handle, terr := a.deps.Store.Track(path, token)
		if terr != nil {
			a.deps.Store.ReleaseAll(handles)
			return media.Failure(media.Errorf("failed to track slideshow image: %v", terr))
		}
		handles = append(handles, handle)
	}

	return media.FetchResult{
		OK:     true,
		File:   handles[0],
		Extra:  handles[1:],
		Title:  title,
		Author: author,
		Type:   media.TypePhoto,
	}
}

// downloadDirect retrieves a plain video URL the aggregation API handed back.
func (a *TikTok) downloadDirect(ctx context.Context, videoURL, title, author string) media.FetchResult {
	token := fetcher.NewToken()
	path := filepath.Join(a.deps.DownloadDir, token+"_video.mp4")

	dlCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
	defer cancel()

	_, err := download.File(dlCtx, a.deps.Store.Fs(), a.deps.Client, videoURL, path, a.deps.MaxFileSize, nil, a.deps.Logger)
	if err != nil {
		if errors.Is(err, download.ErrTooLarge) {
			return media.Failure(media.NewError(media.KindSizeLimitExceeded, "video exceeds size limit"))
		}
		return media.Failure(media.Errorf("video download failed: %v", err))
	}

	handle, terr := a.deps.Store.Track(path, token)
	if terr != nil {
		return media.Failure(media.Errorf("failed to track video: %v", terr))
	}

	return media.FetchResult{
		OK:     true,
		File:   handle,
		Title:  title,
		Author: author,
		Type:   media.TypeVideo,
	}
}

func (a *TikTok) querySlideshowAPI(ctx context.Context, canonical string) (*slideshowResponse, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	endpoint := a.deps.SlideshowAPI + "?url=" + url.QueryEscape(canonical)
	body, err := download.Bytes(reqCtx, a.deps.Client, endpoint, 1024*1024, nil)
	if err != nil {
		return nil, err
	}

	resp := &slideshowResponse{}
	if err := json.Unmarshal(body, resp); err != nil {
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}
	if resp.Code != 0 {
		return nil, fmt.Errorf("API error: %s", resp.Msg)
	}
	return resp, nil
}
