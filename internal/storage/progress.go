package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const progressColumns = "wp.id, wp.word_id, wp.status, wp.last_studied_at"

func (s *SQLiteStore) queryProgress(query string, args ...any) ([]WordProgress, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []WordProgress{}
	for rows.Next() {
		var p WordProgress
		if err := rows.Scan(&p.ID, &p.WordID, &p.Status, &p.LastStudiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// CreateProgress inserts the progress row for a word.
func (s *SQLiteStore) CreateProgress(wordID int64, status string, studiedAt time.Time) (*WordProgress, error) {
	_, err := s.db.Exec(`
		INSERT INTO word_progress (word_id, status, last_studied_at) VALUES (?, ?, ?)
	`, wordID, status, studiedAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}
	return s.GetProgress(wordID)
}

// UpdateProgress changes the given fields of a word's progress. With no
// fields it does nothing and returns nil.
func (s *SQLiteStore) UpdateProgress(wordID int64, status *string, studiedAt *time.Time) (*WordProgress, error) {
	var fields []string
	var args []any
	if status != nil && *status != "" {
		fields = append(fields, "status = ?")
		args = append(args, *status)
	}
	if studiedAt != nil && !studiedAt.IsZero() {
		fields = append(fields, "last_studied_at = ?")
		args = append(args, studiedAt.UTC())
	}
	if len(fields) == 0 {
		return nil, nil
	}
	args = append(args, wordID)

	if _, err := s.db.Exec("UPDATE word_progress SET "+strings.Join(fields, ", ")+" WHERE word_id = ?", args...); err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}
	return s.GetProgress(wordID)
}

// GetProgress returns a word's progress or nil if it has none.
func (s *SQLiteStore) GetProgress(wordID int64) (*WordProgress, error) {
	var p WordProgress
	err := s.db.QueryRow(`
		SELECT `+progressColumns+` FROM word_progress wp WHERE wp.word_id = ?
	`, wordID).Scan(&p.ID, &p.WordID, &p.Status, &p.LastStudiedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) ListProgressByStatus(status string) ([]WordProgress, error) {
	items, err := s.queryProgress(`
		SELECT `+progressColumns+` FROM word_progress wp WHERE wp.status = ? ORDER BY wp.word_id
	`, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress by status: %w", err)
	}
	return items, nil
}

// ListLearnedOverDays returns learned words last studied more than days ago.
func (s *SQLiteStore) ListLearnedOverDays(days int) ([]WordProgress, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(days) * 24 * time.Hour)
	items, err := s.queryProgress(`
		SELECT `+progressColumns+` FROM word_progress wp
		WHERE wp.status = 'learned' AND wp.last_studied_at < ?
		ORDER BY wp.last_studied_at
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list learned progress: %w", err)
	}
	return items, nil
}

// ListProgressByGroup returns the progress rows of a group's words and their count.
func (s *SQLiteStore) ListProgressByGroup(groupID int64) ([]WordProgress, int, error) {
	items, err := s.queryProgress(`
		SELECT `+progressColumns+` FROM word_progress wp
		JOIN word_groups wg ON wp.word_id = wg.word_id
		WHERE wg.group_id = ?
		ORDER BY wp.word_id
	`, groupID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list group progress: %w", err)
	}
	return items, len(items), nil
}
