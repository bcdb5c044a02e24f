package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
)

// CacheEntry associates a source URL with a previously delivered remote
// content reference and its lightweight metadata.
type CacheEntry struct {
	URLHash         string
	RemoteRef       string
	MediaKind       string
	Title           string
	Author          string
	DurationSeconds int
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

// CacheGet looks up a prior delivery for url. The second return is false on
// a miss.
func (s *Store) CacheGet(url string) (*CacheEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &CacheEntry{URLHash: hashURL(url)}
	err := s.db.QueryRow(
		"SELECT remote_ref, media_kind, title, artist, duration FROM file_cache WHERE url_hash = ?",
		entry.URLHash,
	).Scan(&entry.RemoteRef, &entry.MediaKind, &entry.Title, &entry.Author, &entry.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return entry, true, nil
}

// CachePut upserts the delivery record for url. A second put for the same
// URL replaces the stored reference and metadata; no history is kept.
func (s *Store) CachePut(url, remoteRef, mediaKind, title, author string, durationSeconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO file_cache (url_hash, remote_ref, media_kind, title, artist, duration)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(url_hash) DO UPDATE SET
			remote_ref = excluded.remote_ref,
			media_kind = excluded.media_kind,
			title = excluded.title,
			artist = excluded.artist,
			duration = excluded.duration
	`, hashURL(url), remoteRef, mediaKind, title, author, durationSeconds)
	return err
}
