package filestore

import (
	"sync"

	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
)

// Handle is an opaque reference to a temporary file on disk. The token is the
// per-call unique prefix embedded in the filename; Size is known once the
// underlying write has completed.
type Handle struct {
	Path  string
	Token string
	Size  int64

	released bool
}

// Store tracks every temporary file the pipeline creates and guarantees each
// one is deleted at most once. Releasing a handle twice, or releasing a
// handle whose file is already gone, is a no-op.
type Store struct {
	fs     afero.Fs
	logger *logging.Logger

	mu   sync.Mutex
	live map[*Handle]struct{}
}

func NewStore(fs afero.Fs, logger *logging.Logger) *Store {
	return &Store{
		fs:     fs,
		logger: logger,
		live:   make(map[*Handle]struct{}),
	}
}

// Track registers a file that already exists on disk and returns its handle.
func (s *Store) Track(path, token string) (*Handle, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, err
	}

	h := &Handle{Path: path, Token: token, Size: info.Size()}

	s.mu.Lock()
	s.live[h] = struct{}{}
	s.mu.Unlock()

	return h, nil
}

// Release deletes the file behind the handle if it still exists. Idempotent.
func (s *Store) Release(h *Handle) {
	if h == nil {
		return
	}

	s.mu.Lock()
	if h.released {
		s.mu.Unlock()
		return
	}
	h.released = true
	delete(s.live, h)
	s.mu.Unlock()

	exists, err := afero.Exists(s.fs, h.Path)
	if err != nil || !exists {
		return
	}
	if err := s.fs.Remove(h.Path); err != nil {
		s.logger.Warn("failed to remove temp file", "path", h.Path, "error", err)
	}
}

// ReleaseAll releases every handle in the slice. Nil entries are skipped.
func (s *Store) ReleaseAll(handles []*Handle) {
	for _, h := range handles {
		s.Release(h)
	}
}

// LiveCount reports how many tracked files have not been released yet.
func (s *Store) LiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.live)
}

// Fs exposes the underlying filesystem so collaborators that operate on the
// handle's path use the same view of disk as the store.
func (s *Store) Fs() afero.Fs {
	return s.fs
}
