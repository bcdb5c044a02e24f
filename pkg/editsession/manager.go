package editsession

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/tags"
)

// ErrNotFound is returned when a session id is unknown or already reaped.
var ErrNotFound = errors.New("session not found")

// ErrFileOwned is returned when a second session tries to claim a file that
// a live session already owns.
var ErrFileOwned = errors.New("file already owned by another session")

// DefaultTTL is how long an idle session survives before the reaper cancels
// it and deletes its file.
const DefaultTTL = 30 * time.Minute

// fileTagIO is the production TagIO backed by pkg/tags.
type fileTagIO struct{}

func (fileTagIO) Read(path string) (tags.Tags, error)            { return tags.Read(path) }
func (fileTagIO) Write(path string, t tags.Tags) error           { return tags.Write(path, t) }
func (fileTagIO) ReadArtwork(path string) ([]byte, string, error) { return tags.ReadArtwork(path) }
func (fileTagIO) WriteArtwork(path string, data []byte) error    { return tags.WriteArtwork(path, data) }
func (fileTagIO) DeleteArtwork(path string) error                { return tags.DeleteArtwork(path) }

// Manager owns the session table: opaque-id lookup, exclusive file
// ownership, and TTL-based reaping of abandoned sessions.
type Manager struct {
	store  *filestore.Store
	tagio  TagIO
	ttl    time.Duration
	logger *logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	owned    map[*filestore.Handle]string
}

func NewManager(store *filestore.Store, logger *logging.Logger, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		store:    store,
		tagio:    fileTagIO{},
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
		owned:    make(map[*filestore.Handle]string),
	}
}

// SetTagIO swaps the tag backend; used by tests.
func (m *Manager) SetTagIO(t TagIO) { m.tagio = t }

// Open creates a session owning h. Ownership of the handle, including its
// release, transfers to the session.
func (m *Manager) Open(h *filestore.Handle) (*Session, error) {
	s, err := m.newSession()
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, taken := m.owned[h]; taken {
		delete(m.sessions, s.ID)
		m.mu.Unlock()
		return nil, ErrFileOwned
	}
	m.owned[h] = s.ID
	m.mu.Unlock()

	if err := s.AttachFile(h); err != nil {
		m.mu.Lock()
		delete(m.sessions, s.ID)
		delete(m.owned, h)
		m.mu.Unlock()
		return nil, err
	}
	return s, nil
}

// OpenDetached creates a session with no file yet; the caller attaches one
// later via AttachFile.
func (m *Manager) OpenDetached() (*Session, error) {
	return m.newSession()
}

func (m *Manager) newSession() (*Session, error) {
	s := &Session{
		ID:      newSessionID(),
		store:   m.store,
		tagio:   m.tagio,
		state:   StateAwaitingFile,
		touched: time.Now(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s, nil
}

// Get looks up a session by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Len reports how many sessions are in the table, terminal ones included.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Start runs the reaper until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Reap()
			}
		}
	}()
}

// Reap cancels sessions idle beyond the TTL and drops terminal sessions
// from the table. Cancelling releases the session's file.
func (m *Manager) Reap() {
	cutoff := time.Now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.State().Terminal() {
			delete(m.sessions, id)
			m.unownLocked(id)
			continue
		}
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
			m.unownLocked(id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		m.logger.Info("reaping abandoned edit session", "session", s.ID)
		if err := s.Cancel(); err != nil && !errors.Is(err, ErrSessionFinished) {
			m.logger.Warn("failed to cancel expired session", "session", s.ID, "error", err)
		}
	}
}

func (m *Manager) unownLocked(sessionID string) {
	for h, id := range m.owned {
		if id == sessionID {
			delete(m.owned, h)
		}
	}
}

func newSessionID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
