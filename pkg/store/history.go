package store

import "time"

// DownloadRecord is one line of a requester's download history.
type DownloadRecord struct {
	ID           int64
	UserID       int64
	Platform     string
	URL          string
	Title        string
	Artist       string
	DownloadedAt time.Time
}

// AddDownload appends a history record after a successful delivery.
func (s *Store) AddDownload(userID int64, platform, url, title, artist string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO downloads (user_id, platform, url, title, artist) VALUES (?, ?, ?, ?, ?)",
		userID, platform, url, title, artist,
	)
	return err
}

// RecentDownloads returns the subject's newest history records.
func (s *Store) RecentDownloads(userID int64, limit int) ([]DownloadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT id, user_id, platform, url, title, artist, downloaded_at
		FROM downloads WHERE user_id = ? ORDER BY downloaded_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []DownloadRecord
	for rows.Next() {
		var r DownloadRecord
		if err := rows.Scan(&r.ID, &r.UserID, &r.Platform, &r.URL, &r.Title, &r.Artist, &r.DownloadedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
