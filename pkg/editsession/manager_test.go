package editsession

import (
	"testing"
	"time"

	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManagerFixture(t *testing.T, ttl time.Duration) (*Manager, *filestore.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	logger := logging.NewTestLogger()
	files := filestore.NewStore(fs, logger)

	manager := NewManager(files, logger, ttl)
	manager.SetTagIO(newFakeTagIO())
	return manager, files, fs
}

func trackFile(t *testing.T, fs afero.Fs, files *filestore.Store, path, token string) *filestore.Handle {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte("audio"), 0o644))
	h, err := files.Track(path, token)
	require.NoError(t, err)
	return h
}

func TestManagerGet(t *testing.T) {
	manager, files, fs := newManagerFixture(t, time.Minute)
	h := trackFile(t, fs, files, "/tmp/a_song.mp3", "a")

	s, err := manager.Open(h)
	require.NoError(t, err)

	got, err := manager.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = manager.Get("nope1234")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManagerRejectsDoubleOwnership(t *testing.T) {
	manager, files, fs := newManagerFixture(t, time.Minute)
	h := trackFile(t, fs, files, "/tmp/a_song.mp3", "a")

	_, err := manager.Open(h)
	require.NoError(t, err)

	_, err = manager.Open(h)
	assert.ErrorIs(t, err, ErrFileOwned)
}

func TestManagerOpenDetached(t *testing.T) {
	manager, files, fs := newManagerFixture(t, time.Minute)

	s, err := manager.OpenDetached()
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingFile, s.State())

	h := trackFile(t, fs, files, "/tmp/b_song.mp3", "b")
	require.NoError(t, s.AttachFile(h))
	assert.Equal(t, StateReady, s.State())
}

func TestReapDropsTerminalSessions(t *testing.T) {
	manager, files, fs := newManagerFixture(t, time.Minute)
	h := trackFile(t, fs, files, "/tmp/a_song.mp3", "a")

	s, err := manager.Open(h)
	require.NoError(t, err)
	require.NoError(t, s.Cancel())
	assert.Equal(t, 1, manager.Len())

	manager.Reap()
	assert.Equal(t, 0, manager.Len())
}

func TestReapCancelsIdleSessions(t *testing.T) {
	manager, files, fs := newManagerFixture(t, 10*time.Millisecond)
	h := trackFile(t, fs, files, "/tmp/a_song.mp3", "a")

	s, err := manager.Open(h)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	manager.Reap()

	assert.Equal(t, 0, manager.Len())
	assert.Equal(t, StateCancelled, s.State())
	assert.Equal(t, 0, files.LiveCount())

	exists, err := afero.Exists(fs, h.Path)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReapFreesOwnershipForReuse(t *testing.T) {
	manager, files, fs := newManagerFixture(t, time.Minute)
	h := trackFile(t, fs, files, "/tmp/a_song.mp3", "a")

	s, err := manager.Open(h)
	require.NoError(t, err)
	require.NoError(t, s.Cancel())
	manager.Reap()

	// Cancelled sessions release their file, so re-tracking is required
	// before a new session can own the same path.
	h2 := trackFile(t, fs, files, "/tmp/a_song.mp3", "a")
	_, err = manager.Open(h2)
	assert.NoError(t, err)
}

func TestSessionIDsAreShortAndUnique(t *testing.T) {
	manager, _, _ := newManagerFixture(t, time.Minute)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		s, err := manager.OpenDetached()
		require.NoError(t, err)
		assert.Len(t, s.ID, 8)
		assert.False(t, seen[s.ID])
		seen[s.ID] = true
	}
}
