package store

import (
	"database/sql"
	"errors"
	"time"
)

// CheckAndConsume applies fixed-window rate limiting for one subject. The
// check and the increment happen atomically under the store lock. A denied
// call does not consume from the window.
func (s *Store) CheckAndConsume(subjectID int64, maxRequests int, window time.Duration) (allowed bool, remaining int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	var count int
	var windowStart time.Time
	err = s.db.QueryRow(
		"SELECT request_count, window_start FROM rate_limits WHERE user_id = ?",
		subjectID,
	).Scan(&count, &windowStart)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.Exec(
			"INSERT INTO rate_limits (user_id, request_count, window_start) VALUES (?, 1, ?)",
			subjectID, now,
		)
		return err == nil, maxRequests - 1, err

	case err != nil:
		return false, 0, err

	case now.Sub(windowStart) > window:
		_, err = s.db.Exec(
			"UPDATE rate_limits SET request_count = 1, window_start = ? WHERE user_id = ?",
			now, subjectID,
		)
		return err == nil, maxRequests - 1, err

	case count >= maxRequests:
		return false, 0, nil

	default:
		_, err = s.db.Exec(
			"UPDATE rate_limits SET request_count = request_count + 1 WHERE user_id = ?",
			subjectID,
		)
		return err == nil, maxRequests - count - 1, err
	}
}
