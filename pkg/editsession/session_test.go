package editsession

import (
	"errors"
	"testing"
	"time"

	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/logging"
	"github.com/mediagrab/mediagrab/pkg/tags"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTagIO keeps tags and artwork in memory keyed by path. When the write
// gate channels are set, Write blocks until the test releases it.
type fakeTagIO struct {
	tags     map[string]tags.Tags
	art      map[string][]byte
	writeErr error

	writeStarted chan struct{}
	writeRelease chan struct{}
}

func newFakeTagIO() *fakeTagIO {
	return &fakeTagIO{tags: make(map[string]tags.Tags), art: make(map[string][]byte)}
}

func (f *fakeTagIO) Read(path string) (tags.Tags, error) { return f.tags[path], nil }

func (f *fakeTagIO) Write(path string, t tags.Tags) error {
	if f.writeStarted != nil {
		close(f.writeStarted)
		f.writeStarted = nil
		<-f.writeRelease
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	existing := f.tags[path]
	if t.Title != "" {
		existing.Title = t.Title
	}
	if t.Artist != "" {
		existing.Artist = t.Artist
	}
	f.tags[path] = existing
	return nil
}

func (f *fakeTagIO) ReadArtwork(path string) ([]byte, string, error) {
	if art, ok := f.art[path]; ok {
		return art, "image/jpeg", nil
	}
	return nil, "", tags.ErrNoArtwork
}

func (f *fakeTagIO) WriteArtwork(path string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.art[path] = data
	return nil
}

func (f *fakeTagIO) DeleteArtwork(path string) error {
	delete(f.art, path)
	return nil
}

type sessionFixture struct {
	fs      afero.Fs
	files   *filestore.Store
	manager *Manager
	tagio   *fakeTagIO
	handle  *filestore.Handle
	session *Session
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	logger := logging.NewTestLogger()
	files := filestore.NewStore(fs, logger)
	tagio := newFakeTagIO()

	manager := NewManager(files, logger, time.Minute)
	manager.SetTagIO(tagio)

	require.NoError(t, afero.WriteFile(fs, "/tmp/tok_song.mp3", []byte("audio"), 0o644))
	handle, err := files.Track("/tmp/tok_song.mp3", "tok")
	require.NoError(t, err)

	tagio.tags[handle.Path] = tags.Tags{Title: "Original Title", Artist: "Original Artist"}

	session, err := manager.Open(handle)
	require.NoError(t, err)

	return &sessionFixture{fs: fs, files: files, manager: manager, tagio: tagio, handle: handle, session: session}
}

func TestOpenReadsTags(t *testing.T) {
	fx := newSessionFixture(t)

	assert.Equal(t, StateReady, fx.session.State())
	assert.Equal(t, "Original Title", fx.session.Tags().Title)
	assert.Equal(t, "Original Artist", fx.session.Tags().Artist)
	assert.Same(t, fx.handle, fx.session.File())
}

func TestTagEditFlow(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session

	require.NoError(t, s.BeginTagEdit())
	assert.Equal(t, StateEditingTitle, s.State())

	require.NoError(t, s.SetTitle("New Title"))
	assert.Equal(t, StateEditingArtist, s.State())

	require.NoError(t, s.SetArtist("New Artist"))
	assert.Equal(t, StateReady, s.State())

	// Pending edits are visible but not yet written to the file.
	assert.Equal(t, "New Title", s.Tags().Title)
	assert.Equal(t, "New Artist", s.Tags().Artist)
	assert.Equal(t, "Original Title", fx.tagio.tags[fx.handle.Path].Title)
}

func TestSaveAppliesPendingEdits(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session

	require.NoError(t, s.BeginTagEdit())
	require.NoError(t, s.SetTitle("New Title"))
	require.NoError(t, s.SetArtist("New Artist"))

	var deliveredPath, deliveredName string
	require.NoError(t, s.Save(func(path, displayName string) error {
		deliveredPath = path
		deliveredName = displayName
		return nil
	}))

	assert.Equal(t, StateSaved, s.State())
	assert.Equal(t, fx.handle.Path, deliveredPath)
	assert.Equal(t, "New Artist - New Title.mp3", deliveredName)
	assert.Equal(t, "New Title", fx.tagio.tags[fx.handle.Path].Title)
	assert.Equal(t, "New Artist", fx.tagio.tags[fx.handle.Path].Artist)

	// The temp file is released once delivered.
	assert.Equal(t, 0, fx.files.LiveCount())
}

func TestSaveRejectsFurtherEvents(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session

	require.NoError(t, s.Save(nil))

	assert.ErrorIs(t, s.BeginTagEdit(), ErrSessionFinished)
	assert.ErrorIs(t, s.SetTitle("x"), ErrSessionFinished)
	assert.ErrorIs(t, s.Cancel(), ErrSessionFinished)
	assert.ErrorIs(t, s.Save(nil), ErrSessionFinished)
}

func TestSaveFailureReturnsToReady(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session

	fx.tagio.writeErr = errors.New("disk full")
	err := s.Save(nil)
	assert.Error(t, err)
	assert.Equal(t, StateReady, s.State())

	// A retry after the fault clears succeeds.
	fx.tagio.writeErr = nil
	require.NoError(t, s.Save(nil))
	assert.Equal(t, StateSaved, s.State())
}

func TestCancelRejectedWhileSaving(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session

	fx.tagio.writeStarted = make(chan struct{})
	fx.tagio.writeRelease = make(chan struct{})

	saveDone := make(chan error, 1)
	go func() { saveDone <- s.Save(nil) }()

	// A concurrent cancel must not release the file out from under the save.
	<-fx.tagio.writeStarted
	assert.ErrorIs(t, s.Cancel(), ErrInvalidTransition)

	close(fx.tagio.writeRelease)
	require.NoError(t, <-saveDone)
	assert.Equal(t, StateSaved, s.State())
	assert.Equal(t, 0, fx.files.LiveCount())
}

func TestCancelEditDiscardsDraft(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session

	require.NoError(t, s.BeginTagEdit())
	require.NoError(t, s.SetTitle("Discarded"))
	require.NoError(t, s.CancelEdit())

	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, "Original Title", s.Tags().Title)
}

func TestCancelReleasesFile(t *testing.T) {
	fx := newSessionFixture(t)

	require.NoError(t, fx.session.Cancel())
	assert.Equal(t, StateCancelled, fx.session.State())
	assert.Equal(t, 0, fx.files.LiveCount())

	exists, err := afero.Exists(fx.fs, fx.handle.Path)
	require.NoError(t, err)
	assert.False(t, exists)

	// The file's tags stay whatever they were.
	assert.Equal(t, "Original Title", fx.tagio.tags[fx.handle.Path].Title)
}

func TestArtworkFlow(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session
	fx.tagio.art[fx.handle.Path] = []byte("old art")

	current, err := s.BeginArtEdit()
	require.NoError(t, err)
	assert.Equal(t, []byte("old art"), current)

	require.NoError(t, s.SetArtwork([]byte("new art")))
	assert.Equal(t, StateReady, s.State())

	// Artwork lands in the file only at save time.
	assert.Equal(t, []byte("old art"), fx.tagio.art[fx.handle.Path])

	require.NoError(t, s.Save(nil))
	assert.Equal(t, []byte("new art"), fx.tagio.art[fx.handle.Path])
}

func TestArtworkDelete(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session
	fx.tagio.art[fx.handle.Path] = []byte("old art")

	_, err := s.BeginArtEdit()
	require.NoError(t, err)
	require.NoError(t, s.DeleteArtwork())
	require.NoError(t, s.Save(nil))

	_, ok := fx.tagio.art[fx.handle.Path]
	assert.False(t, ok)
}

func TestInvalidTransitions(t *testing.T) {
	fx := newSessionFixture(t)
	s := fx.session

	// SetTitle before BeginTagEdit.
	assert.ErrorIs(t, s.SetTitle("x"), ErrInvalidTransition)

	// Save while an edit is in progress.
	require.NoError(t, s.BeginTagEdit())
	assert.ErrorIs(t, s.Save(nil), ErrInvalidTransition)

	// Nested BeginTagEdit.
	assert.ErrorIs(t, s.BeginTagEdit(), ErrInvalidTransition)
}

func TestDisplayFilename(t *testing.T) {
	tests := []struct {
		name string
		in   tags.Tags
		want string
	}{
		{"both present", tags.Tags{Title: "Nightcall", Artist: "Kavinsky"}, "Kavinsky - Nightcall.mp3"},
		{"missing artist", tags.Tags{Title: "Nightcall"}, "Unknown - Nightcall.mp3"},
		{"missing title", tags.Tags{Artist: "Kavinsky"}, "Kavinsky - Unknown.mp3"},
		{"both missing", tags.Tags{}, "Unknown - Unknown.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DisplayFilename(tt.in))
		})
	}
}
