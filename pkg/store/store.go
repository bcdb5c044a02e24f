// Package store persists user settings, download history, rate-limit
// windows and the URL result cache in a single sqlite database.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	user_id INTEGER PRIMARY KEY,
	language TEXT DEFAULT 'en',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	last_active TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS downloads (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	platform TEXT NOT NULL,
	url TEXT NOT NULL,
	title TEXT,
	artist TEXT,
	downloaded_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users(user_id)
);

CREATE TABLE IF NOT EXISTS rate_limits (
	user_id INTEGER PRIMARY KEY,
	request_count INTEGER DEFAULT 0,
	window_start TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_downloads_user ON downloads(user_id);
CREATE INDEX IF NOT EXISTS idx_downloads_date ON downloads(downloaded_at);

CREATE TABLE IF NOT EXISTS file_cache (
	url_hash TEXT PRIMARY KEY,
	remote_ref TEXT NOT NULL,
	media_kind TEXT NOT NULL,
	title TEXT,
	artist TEXT,
	duration INTEGER,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// Store wraps the sqlite database. The mutex serializes writers; sqlite
// handles one writer at a time anyway and the fetch itself dominates
// latency, so a single lock is fine.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating when needed) the database at dbPath and ensures the
// schema exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Stats summarizes the store for the health endpoint.
type Stats struct {
	TotalUsers     int `json:"total_users"`
	TotalDownloads int `json:"total_downloads"`
	TodayDownloads int `json:"today_downloads"`
}

// GetStats returns aggregate counters.
func (s *Store) GetStats() (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	if err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&stats.TotalUsers); err != nil {
		return stats, err
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM downloads").Scan(&stats.TotalDownloads); err != nil {
		return stats, err
	}
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM downloads WHERE DATE(downloaded_at) = DATE('now')",
	).Scan(&stats.TodayDownloads)
	return stats, err
}
