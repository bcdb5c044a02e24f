// Package editsession implements the interactive metadata-editing workflow
// as a transport-independent state machine. A delivery layer (bot, CLI)
// drives it by feeding events; the session owns its file exclusively until
// it reaches a terminal state.
package editsession

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mediagrab/mediagrab/pkg/filestore"
	"github.com/mediagrab/mediagrab/pkg/tags"
)

// State of an edit session.
type State string

const (
	StateAwaitingFile  State = "awaiting_file"
	StateReady         State = "ready"
	StateEditingTitle  State = "editing_title"
	StateEditingArtist State = "editing_artist"
	StateEditingArt    State = "editing_art"
	StateSaving        State = "saving"
	StateSaved         State = "saved"
	StateCancelled     State = "cancelled"
)

// Terminal reports whether no further events are accepted.
func (s State) Terminal() bool {
	return s == StateSaved || s == StateCancelled
}

var (
	// ErrSessionFinished is returned for any event fed to a terminal session.
	ErrSessionFinished = errors.New("session already finished")
	// ErrInvalidTransition is returned when an event is not legal in the
	// session's current state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrFileMissing is returned when the owned file disappeared from disk.
	ErrFileMissing = errors.New("session file missing")
)

// TagIO abstracts the tag/artwork operations the session performs, so tests
// can run without real MP3 files.
type TagIO interface {
	Read(path string) (tags.Tags, error)
	Write(path string, t tags.Tags) error
	ReadArtwork(path string) ([]byte, string, error)
	WriteArtwork(path string, data []byte) error
	DeleteArtwork(path string) error
}

// Session is a per-file metadata-editing state machine.
type Session struct {
	ID string

	store *filestore.Store
	tagio TagIO

	mu      sync.Mutex
	state   State
	file    *filestore.Handle
	current tags.Tags

	draftTitle string

	pendingTitle  string
	pendingArtist string
	pendingArt    []byte
	deleteArt     bool

	touched time.Time
}

// State returns the session's current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// File returns the handle the session owns, nil before AttachFile.
func (s *Session) File() *filestore.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file
}

// Tags returns the file's tags overlaid with any pending edits.
func (s *Session) Tags() tags.Tags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.effectiveTags()
}

func (s *Session) effectiveTags() tags.Tags {
	t := s.current
	if s.pendingTitle != "" {
		t.Title = s.pendingTitle
	}
	if s.pendingArtist != "" {
		t.Artist = s.pendingArtist
	}
	return t
}

// AttachFile associates a file with a detached session and reads its tags.
func (s *Session) AttachFile(h *filestore.Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionFinished
	}
	if s.state != StateAwaitingFile {
		return fmt.Errorf("%w: file already attached", ErrInvalidTransition)
	}

	current, err := s.tagio.Read(h.Path)
	if err != nil {
		return fmt.Errorf("failed to read tags: %w", err)
	}

	s.file = h
	s.current = current
	s.state = StateReady
	s.touch()
	return nil
}

// BeginTagEdit starts the two-step title/artist collection.
func (s *Session) BeginTagEdit() error {
	return s.transition(StateReady, StateEditingTitle)
}

// SetTitle records the new title and moves on to artist collection.
func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionFinished
	}
	if s.state != StateEditingTitle {
		return fmt.Errorf("%w: not editing title", ErrInvalidTransition)
	}

	s.draftTitle = title
	s.state = StateEditingArtist
	s.touch()
	return nil
}

// SetArtist completes the tag-edit loop; the collected pair becomes the
// pending edit applied on Save.
func (s *Session) SetArtist(artist string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionFinished
	}
	if s.state != StateEditingArtist {
		return fmt.Errorf("%w: not editing artist", ErrInvalidTransition)
	}

	s.pendingTitle = s.draftTitle
	s.pendingArtist = artist
	s.draftTitle = ""
	s.state = StateReady
	s.touch()
	return nil
}

// BeginArtEdit enters the artwork-edit loop and returns the current cover
// image, if any.
func (s *Session) BeginArtEdit() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return nil, ErrSessionFinished
	}
	if s.state != StateReady {
		return nil, fmt.Errorf("%w: session busy", ErrInvalidTransition)
	}

	s.state = StateEditingArt
	s.touch()

	if s.pendingArt != nil {
		return s.pendingArt, nil
	}
	if s.deleteArt {
		return nil, nil
	}
	art, _, err := s.tagio.ReadArtwork(s.file.Path)
	if err != nil {
		return nil, nil // no artwork yet
	}
	return art, nil
}

// SetArtwork stages a replacement cover image and returns to Ready.
func (s *Session) SetArtwork(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionFinished
	}
	if s.state != StateEditingArt {
		return fmt.Errorf("%w: not editing artwork", ErrInvalidTransition)
	}

	s.pendingArt = data
	s.deleteArt = false
	s.state = StateReady
	s.touch()
	return nil
}

// DeleteArtwork stages removal of the cover image and returns to Ready.
func (s *Session) DeleteArtwork() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionFinished
	}
	if s.state != StateEditingArt {
		return fmt.Errorf("%w: not editing artwork", ErrInvalidTransition)
	}

	s.pendingArt = nil
	s.deleteArt = true
	s.state = StateReady
	s.touch()
	return nil
}

// CancelEdit abandons an in-progress title/artist or artwork step, returning
// to Ready with the file's tags untouched.
func (s *Session) CancelEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionFinished
	}

	switch s.state {
	case StateEditingTitle, StateEditingArtist:
		s.draftTitle = ""
	case StateEditingArt:
		// nothing staged yet for this step
	default:
		return fmt.Errorf("%w: nothing to cancel", ErrInvalidTransition)
	}

	s.state = StateReady
	s.touch()
	return nil
}

// Save writes the pending tags and artwork into the file, hands it to the
// deliver callback under its display filename, releases the temp file and
// terminates the session. After Save returns, the session accepts no events.
func (s *Session) Save(deliver func(path, displayName string) error) error {
	s.mu.Lock()

	if s.state.Terminal() {
		s.mu.Unlock()
		return ErrSessionFinished
	}
	if s.state != StateReady {
		s.mu.Unlock()
		return fmt.Errorf("%w: finish the current edit first", ErrInvalidTransition)
	}
	s.state = StateSaving
	s.touch()

	file := s.file
	final := s.effectiveTags()
	pendingArt := s.pendingArt
	deleteArt := s.deleteArt
	s.mu.Unlock()

	if err := s.applyEdits(file.Path, final, pendingArt, deleteArt); err != nil {
		// Report without corrupting state; the caller may retry or cancel.
		s.mu.Lock()
		s.state = StateReady
		s.mu.Unlock()
		return err
	}

	var deliverErr error
	if deliver != nil {
		deliverErr = deliver(file.Path, DisplayFilename(final))
	}

	s.store.Release(file)

	s.mu.Lock()
	s.state = StateSaved
	s.mu.Unlock()

	return deliverErr
}

func (s *Session) applyEdits(path string, final tags.Tags, pendingArt []byte, deleteArt bool) error {
	if err := s.tagio.Write(path, tags.Tags{Title: final.Title, Artist: final.Artist}); err != nil {
		return fmt.Errorf("failed to write tags: %w", err)
	}
	if pendingArt != nil {
		if err := s.tagio.WriteArtwork(path, pendingArt); err != nil {
			return fmt.Errorf("failed to write artwork: %w", err)
		}
	} else if deleteArt {
		if err := s.tagio.DeleteArtwork(path); err != nil {
			return fmt.Errorf("failed to delete artwork: %w", err)
		}
	}
	return nil
}

// Cancel terminates the session from any non-terminal state except Saving
// and releases the owned file. Cancelling succeeds even when the file is
// already gone. During Saving the file is being written and delivered, so
// cancellation is rejected rather than racing the save.
func (s *Session) Cancel() error {
	s.mu.Lock()

	if s.state.Terminal() {
		s.mu.Unlock()
		return ErrSessionFinished
	}
	if s.state == StateSaving {
		s.mu.Unlock()
		return fmt.Errorf("%w: save in progress", ErrInvalidTransition)
	}

	file := s.file
	s.state = StateCancelled
	s.mu.Unlock()

	s.store.Release(file)
	return nil
}

func (s *Session) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Terminal() {
		return ErrSessionFinished
	}
	if s.state != from {
		return fmt.Errorf("%w: %s -> %s while %s", ErrInvalidTransition, from, to, s.state)
	}

	s.state = to
	s.touch()
	return nil
}

func (s *Session) touch() {
	s.touched = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// DisplayFilename builds the user-facing filename from the final tags.
func DisplayFilename(t tags.Tags) string {
	artist := t.Artist
	if artist == "" {
		artist = "Unknown"
	}
	title := t.Title
	if title == "" {
		title = "Unknown"
	}
	return fmt.Sprintf("%s - %s.mp3", artist, title)
}
