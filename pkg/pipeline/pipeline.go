// Package pipeline orchestrates one fetch request end to end: rate limit,
// cache consultation, platform routing, delivery, bookkeeping and cleanup.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mediagrab/mediagrab/pkg/editsession"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/media"
	"github.com/mediagrab/mediagrab/pkg/platform"
	"github.com/mediagrab/mediagrab/pkg/store"
)

// ErrRateLimited is returned before any expensive work happens.
var ErrRateLimited = errors.New("rate limit exceeded")

// Deliverer hands a finished FetchResult to the outside world (a chat
// upload, a move into the user's output directory) and returns the stable
// remote reference the consumer assigned to it.
type Deliverer interface {
	Deliver(ctx context.Context, result media.FetchResult) (remoteRef string, err error)
}

// Limits configures the fixed-window rate limiter.
type Limits struct {
	MaxRequests int
	Window      time.Duration
}

// Pipeline wires the download core together for one process.
type Pipeline struct {
	Router   *platform.Router
	Store    *store.Store
	Files    *filestore.Store
	Sessions *editsession.Manager
	Limits   Limits
	Logger   *logging.Logger
}

// Cached is returned when a prior delivery for the URL is known.
type Cached struct {
	Entry *store.CacheEntry
}

// Process runs the full flow for one request. On success every temp file is
// released after delivery; on failure nothing is left on disk.
func (p *Pipeline) Process(ctx context.Context, subjectID int64, req media.Request, deliver Deliverer) (*store.CacheEntry, error) {
	if err := p.consumeQuota(subjectID); err != nil {
		return nil, err
	}

	if entry, hit, err := p.Store.CacheGet(req.URL); err != nil {
		p.Logger.Warn("cache lookup failed", "error", err)
	} else if hit {
		p.Logger.Info("cache hit, skipping fetch", "url", req.URL)
		return entry, nil
	}

	result := p.Router.Download(ctx, req.URL, req.Type)
	if !result.OK {
		return nil, result.Err
	}
	defer p.Files.ReleaseAll(result.Handles())

	remoteRef, err := deliver.Deliver(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("delivery failed: %w", err)
	}

	p.record(subjectID, req.URL, remoteRef, result)

	return &store.CacheEntry{
		RemoteRef:       remoteRef,
		MediaKind:       string(result.Type),
		Title:           result.Title,
		Author:          result.Author,
		DurationSeconds: result.DurationSeconds,
	}, nil
}

// ProcessToSession fetches audio and opens a metadata-edit session on the
// produced file instead of delivering it. Ownership of the file, including
// its eventual release, moves to the session.
func (p *Pipeline) ProcessToSession(ctx context.Context, subjectID int64, url string) (*editsession.Session, media.FetchResult, error) {
	if err := p.consumeQuota(subjectID); err != nil {
		return nil, media.FetchResult{}, err
	}

	result := p.Router.Download(ctx, url, media.TypeAudio)
	if !result.OK {
		return nil, result, result.Err
	}

	session, err := p.Sessions.Open(result.File)
	if err != nil {
		p.Files.ReleaseAll(result.Handles())
		return nil, media.FetchResult{}, fmt.Errorf("failed to open edit session: %w", err)
	}

	// Extras are not editable; they are not expected on audio fetches but
	// must never leak.
	p.Files.ReleaseAll(result.Extra)

	return session, result, nil
}

func (p *Pipeline) consumeQuota(subjectID int64) error {
	allowed, remaining, err := p.Store.CheckAndConsume(subjectID, p.Limits.MaxRequests, p.Limits.Window)
	if err != nil {
		return fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return ErrRateLimited
	}
	p.Logger.Debug("request allowed", "subject", subjectID, "remaining", remaining)
	return nil
}

func (p *Pipeline) record(subjectID int64, url, remoteRef string, result media.FetchResult) {
	if err := p.Store.CachePut(url, remoteRef, string(result.Type), result.Title, result.Author, result.DurationSeconds); err != nil {
		p.Logger.Warn("cache write failed", "error", err)
	}
	platformName := p.Router.Platform(url)
	if err := p.Store.AddDownload(subjectID, platformName, url, result.Title, result.Author); err != nil {
		p.Logger.Warn("history write failed", "error", err)
	}
	if err := p.Store.TouchUser(subjectID); err != nil {
		p.Logger.Warn("user touch failed", "error", err)
	}
}
