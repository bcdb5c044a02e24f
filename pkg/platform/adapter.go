// Package platform holds the per-platform download adapters and the router
// that dispatches a URL to the first adapter whose pattern matches it.
package platform

import (
	"context"
	"net/http"

	"github.com/mediagrab/mediagrab/pkg/fetcher"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/media"
)

// Adapter is one platform-specific downloader. Match is a pure predicate
// over the full URL; Download returns a typed result and never panics
// across the boundary.
type Adapter interface {
	Name() string
	Match(url string) bool
	Download(ctx context.Context, url string, mediaType media.MediaType) media.FetchResult
}

// Deps carries the collaborators shared by every adapter.
type Deps struct {
	Fetcher      *fetcher.Fetcher
	Store        *filestore.Store
	Client       *http.Client
	DownloadDir  string
	MaxFileSize  int64
	SlideshowAPI string
	Logger       *logging.Logger
}
