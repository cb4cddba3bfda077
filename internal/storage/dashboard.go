package storage

import (
	"database/sql"
	"fmt"
)

type StudyProgress struct {
	TotalSessions int     `db:"total_sessions"`
	TotalWords    int     `db:"total_words"`
	AverageScore  float64 `db:"average_score"`
}

type QuickStats struct {
	TotalWords      int `db:"total_words"`
	TotalGroups     int `db:"total_groups"`
	TotalActivities int `db:"total_activities"`
}

type PerformanceDay struct {
	Date          string  `db:"date"`
	SessionsCount int     `db:"sessions_count"`
	AverageScore  float64 `db:"average_score"`
}

// LastStudySession returns the newest session or nil if there are none.
func (s *SQLiteStore) LastStudySession() (*StudySession, error) {
	ss, err := scanSessionRow(s.db.QueryRow(
		"SELECT " + sessionColumns + " FROM study_sessions ORDER BY " + sessionOrder + " LIMIT 1"))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last session: %w", err)
	}
	return ss, nil
}

// StudyProgress counts sessions and distinct reviewed words. Scores are not tracked.
func (s *SQLiteStore) StudyProgress() (*StudyProgress, error) {
	var p StudyProgress
	err := s.db.Get(&p, `
		SELECT
			(SELECT COUNT(*) FROM study_sessions) AS total_sessions,
			(SELECT COUNT(DISTINCT word_id) FROM word_review_items) AS total_words,
			0.0 AS average_score
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get study progress: %w", err)
	}
	return &p, nil
}

func (s *SQLiteStore) QuickStats() (*QuickStats, error) {
	var q QuickStats
	err := s.db.Get(&q, `
		SELECT
			(SELECT COUNT(*) FROM words) AS total_words,
			(SELECT COUNT(*) FROM groups) AS total_groups,
			(SELECT COUNT(*) FROM study_activities) AS total_activities
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get quick stats: %w", err)
	}
	return &q, nil
}

// PerformanceGraph returns per-day session counts for the 31 most recent days with sessions.
func (s *SQLiteStore) PerformanceGraph() ([]PerformanceDay, error) {
	days := []PerformanceDay{}
	err := s.db.Select(&days, `
		SELECT
			DATE(created_at) AS date,
			COUNT(*) AS sessions_count,
			0.0 AS average_score
		FROM study_sessions
		GROUP BY DATE(created_at)
		ORDER BY date DESC
		LIMIT 31
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get performance graph: %w", err)
	}
	return days, nil
}

// FullReset deletes all review items and study sessions.
func (s *SQLiteStore) FullReset() error {
	return s.ResetHistory()
}
