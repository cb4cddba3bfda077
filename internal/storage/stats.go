package storage

import (
	"database/sql"
	"fmt"
	"math"
	"time"
)

type GroupStats struct {
	TotalWords         int
	LearnedWords       int
	LearningWords      int
	NewWords           int
	LastStudied        *time.Time
	ProgressPercentage float64
}

type GroupStatsRow struct {
	GroupID int64
	Name    string
	GroupStats
}

type OverallStats struct {
	TotalWords      int
	LearnedWords    int
	LearningWords   int
	NewWords        int
	OverallProgress float64
}

type AllGroupsStats struct {
	Groups  []GroupStatsRow
	Overall OverallStats
}

// groupStatsRow is the scan target for the aggregate queries below.
type groupStatsRow struct {
	GroupID       int64          `db:"group_id"`
	Name          string         `db:"name"`
	TotalWords    int            `db:"total_words"`
	LearnedWords  int            `db:"learned_words"`
	LearningWords int            `db:"learning_words"`
	NewWords      int            `db:"new_words"`
	LastStudied   sql.NullString `db:"last_studied"`
}

// percentage is learned/total*100 rounded to one decimal, 0 for an empty total.
func percentage(learned, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(learned)/float64(total)*1000) / 10
}

func (r groupStatsRow) stats() GroupStats {
	return GroupStats{
		TotalWords:         r.TotalWords,
		LearnedWords:       r.LearnedWords,
		LearningWords:      r.LearningWords,
		NewWords:           r.NewWords,
		LastStudied:        nullTime(r.LastStudied),
		ProgressPercentage: percentage(r.LearnedWords, r.TotalWords),
	}
}

// GroupStats summarizes the progress of one group's words.
func (s *SQLiteStore) GroupStats(groupID int64) (*GroupStats, error) {
	var r groupStatsRow
	err := s.db.Get(&r, `
		SELECT
			? AS group_id,
			'' AS name,
			(SELECT COUNT(*) FROM word_groups WHERE group_id = ?) AS total_words,
			COUNT(CASE WHEN wp.status = 'learned' THEN 1 END) AS learned_words,
			COUNT(CASE WHEN wp.status = 'learning' THEN 1 END) AS learning_words,
			COUNT(CASE WHEN wp.status = 'new' THEN 1 END) AS new_words,
			MAX(wp.last_studied_at) AS last_studied
		FROM word_progress wp
		JOIN word_groups wg ON wp.word_id = wg.word_id
		WHERE wg.group_id = ?
	`, groupID, groupID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group stats: %w", err)
	}
	st := r.stats()
	return &st, nil
}

// AllGroupsStats returns per-group progress counts over live words plus overall totals.
func (s *SQLiteStore) AllGroupsStats() (*AllGroupsStats, error) {
	var rows []groupStatsRow
	err := s.db.Select(&rows, `
		SELECT
			g.id AS group_id,
			g.name AS name,
			COALESCE(stats.word_count, 0) AS total_words,
			COALESCE(stats.learned_count, 0) AS learned_words,
			COALESCE(stats.learning_count, 0) AS learning_words,
			COALESCE(stats.new_count, 0) AS new_words,
			stats.last_studied AS last_studied
		FROM groups g
		LEFT JOIN (
			SELECT
				wg.group_id,
				COUNT(*) AS word_count,
				COUNT(CASE WHEN wp.status = 'learned' THEN 1 END) AS learned_count,
				COUNT(CASE WHEN wp.status = 'learning' THEN 1 END) AS learning_count,
				COUNT(CASE WHEN wp.status = 'new' THEN 1 END) AS new_count,
				MAX(wp.last_studied_at) AS last_studied
			FROM word_groups wg
			INNER JOIN words w ON wg.word_id = w.id
			LEFT JOIN word_progress wp ON wg.word_id = wp.word_id
			GROUP BY wg.group_id
		) stats ON g.id = stats.group_id
		ORDER BY g.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get all groups stats: %w", err)
	}

	out := &AllGroupsStats{Groups: []GroupStatsRow{}}
	for _, r := range rows {
		out.Groups = append(out.Groups, GroupStatsRow{GroupID: r.GroupID, Name: r.Name, GroupStats: r.stats()})
		out.Overall.TotalWords += r.TotalWords
		out.Overall.LearnedWords += r.LearnedWords
		out.Overall.LearningWords += r.LearningWords
		out.Overall.NewWords += r.NewWords
	}
	out.Overall.OverallProgress = percentage(out.Overall.LearnedWords, out.Overall.TotalWords)
	return out, nil
}
