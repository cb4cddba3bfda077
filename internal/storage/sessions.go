package storage

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

const sessionColumns = "id, group_id, study_activity_id, created_at"

// Newest first; id breaks ties between sessions created in the same second.
const sessionOrder = "created_at DESC, id DESC"

func (s *SQLiteStore) querySessions(query string, args ...any) ([]StudySession, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []StudySession{}
	for rows.Next() {
		var ss StudySession
		if err := rows.Scan(&ss.ID, &ss.GroupID, &ss.StudyActivityID, &ss.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, ss)
	}
	return sessions, rows.Err()
}

// listSessions pages through sessions matching an optional filter.
func (s *SQLiteStore) listSessions(filter sq.Sqlizer, page, perPage int) (*Page[StudySession], error) {
	page, perPage, offset := normalizePage(page, perPage)

	countQ := sq.Select("COUNT(*)").From("study_sessions")
	listQ := sq.Select(sessionColumns).From("study_sessions")
	if filter != nil {
		countQ = countQ.Where(filter)
		listQ = listQ.Where(filter)
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := s.db.Get(&total, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	query, args, err = listQ.OrderBy(sessionOrder).Limit(uint64(perPage)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}
	sessions, err := s.querySessions(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return &Page[StudySession]{Items: sessions, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *SQLiteStore) ListSessions(page, perPage int) (*Page[StudySession], error) {
	return s.listSessions(nil, page, perPage)
}

func (s *SQLiteStore) ListSessionsByActivity(activityID int64, page, perPage int) (*Page[StudySession], error) {
	return s.listSessions(sq.Eq{"study_activity_id": activityID}, page, perPage)
}

func (s *SQLiteStore) ListSessionsByGroup(groupID int64, page, perPage int) (*Page[StudySession], error) {
	return s.listSessions(sq.Eq{"group_id": groupID}, page, perPage)
}

// GetSession returns the session or nil if it does not exist.
func (s *SQLiteStore) GetSession(id int64) (*StudySession, error) {
	sessions, err := s.querySessions("SELECT "+sessionColumns+" FROM study_sessions WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// GetSessionWords returns a page of the words reviewed in a session.
func (s *SQLiteStore) GetSessionWords(sessionID int64, page, perPage int) (*Page[Word], error) {
	page, perPage, offset := normalizePage(page, perPage)

	var total int
	if err := s.db.Get(&total, "SELECT COUNT(*) FROM word_review_items WHERE session_id = ?", sessionID); err != nil {
		return nil, fmt.Errorf("failed to count session words: %w", err)
	}

	words, err := s.queryWords(`
		SELECT `+wordColumns+`
		FROM words w
		JOIN word_review_items wri ON w.id = wri.word_id
		LEFT JOIN jlpt_levels j ON w.id = j.word_id
		WHERE wri.session_id = ?
		ORDER BY wri.id
		LIMIT ? OFFSET ?
	`, sessionID, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get session words: %w", err)
	}

	return &Page[Word]{Items: words, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *SQLiteStore) CreateSession(groupID, activityID int64) (*StudySession, error) {
	result, err := s.db.Exec(`
		INSERT INTO study_sessions (group_id, study_activity_id) VALUES (?, ?)
	`, groupID, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get session id: %w", err)
	}
	return s.GetSession(id)
}

// nextStatus is the progress transition applied after a review.
func nextStatus(current string, correct bool) string {
	if !correct {
		return StatusLearning
	}
	switch current {
	case StatusLearning, StatusLearned:
		return StatusLearned
	default:
		return StatusLearning
	}
}

// RecordWordReview stores a review result for a word in a session and
// advances the word's progress.
func (s *SQLiteStore) RecordWordReview(sessionID, wordID int64, correct bool) (*WordReviewItem, *WordProgress, error) {
	result, err := s.db.Exec(`
		INSERT INTO word_review_items (session_id, word_id, is_correct) VALUES (?, ?, ?)
	`, sessionID, wordID, correct)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record review: %w", err)
	}
	itemID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get review id: %w", err)
	}

	var item WordReviewItem
	err = s.db.QueryRow(`
		SELECT id, session_id, word_id, is_correct, created_at FROM word_review_items WHERE id = ?
	`, itemID).Scan(&item.ID, &item.SessionID, &item.WordID, &item.IsCorrect, &item.CreatedAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read review: %w", err)
	}

	current, err := s.GetProgress(wordID)
	if err != nil {
		return &item, nil, err
	}
	now := time.Now().UTC()
	var progress *WordProgress
	if current == nil {
		progress, err = s.CreateProgress(wordID, nextStatus(StatusNew, correct), now)
	} else {
		status := nextStatus(current.Status, correct)
		progress, err = s.UpdateProgress(wordID, &status, &now)
	}
	if err != nil {
		return &item, nil, err
	}
	return &item, progress, nil
}

// ResetHistory deletes every review item and study session.
func (s *SQLiteStore) ResetHistory() error {
	if _, err := s.db.Exec("DELETE FROM word_review_items"); err != nil {
		return fmt.Errorf("failed to delete review items: %w", err)
	}
	if _, err := s.db.Exec("DELETE FROM study_sessions"); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// ContinueLearning returns the newest session whose group still has a word
// that is not learned, or nil if there is none.
func (s *SQLiteStore) ContinueLearning() (*StudySession, error) {
	sessions, err := s.querySessions(`
		SELECT ` + sessionColumns + `
		FROM study_sessions ss
		WHERE EXISTS (
			SELECT 1 FROM word_groups wg
			LEFT JOIN word_progress wp ON wp.word_id = wg.word_id
			WHERE wg.group_id = ss.group_id AND COALESCE(wp.status, 'new') != 'learned'
		)
		ORDER BY ` + sessionOrder + `
		LIMIT 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to find session to continue: %w", err)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// scanSessionRow is used by the dashboard for single-row lookups.
func scanSessionRow(row *sql.Row) (*StudySession, error) {
	var ss StudySession
	if err := row.Scan(&ss.ID, &ss.GroupID, &ss.StudyActivityID, &ss.CreatedAt); err != nil {
		return nil, err
	}
	return &ss, nil
}
