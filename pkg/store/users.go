package store

import (
	"database/sql"
	"errors"
)

const defaultLanguage = "en"

// UserLanguage returns the subject's preferred language, defaulting when the
// user is unknown.
func (s *Store) UserLanguage(userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lang string
	err := s.db.QueryRow("SELECT language FROM users WHERE user_id = ?", userID).Scan(&lang)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultLanguage, nil
	}
	if err != nil {
		return "", err
	}
	return lang, nil
}

// SetUserLanguage stores the subject's preferred language.
func (s *Store) SetUserLanguage(userID int64, lang string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO users (user_id, language, last_active)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			language = excluded.language,
			last_active = CURRENT_TIMESTAMP
	`, userID, lang)
	return err
}

// TouchUser records activity for the subject, creating the row when needed.
func (s *Store) TouchUser(userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO users (user_id) VALUES (?)
		ON CONFLICT(user_id) DO UPDATE SET last_active = CURRENT_TIMESTAMP
	`, userID)
	return err
}
