package storage

import "fmt"

type Diagnostics struct {
	WordsCount        int `db:"words_count"`
	WordGroupsCount   int `db:"word_groups_count"`
	WordProgressCount int `db:"word_progress_count"`
	GroupsCount       int `db:"groups_count"`
	Groups            []GroupInfo
}

type GroupInfo struct {
	ID         int64  `db:"id"`
	Name       string `db:"name"`
	WordsCount int    `db:"words_count"`
}

type CleanupResult struct {
	OrphanedWordGroups   int `db:"orphaned_word_groups"`
	OrphanedWordProgress int `db:"orphaned_word_progress"`
	DeletedWordGroups    int64
	DeletedWordProgress  int64
}

// Diagnostics reports table sizes and the stored count of every group.
func (s *SQLiteStore) Diagnostics() (*Diagnostics, error) {
	var d Diagnostics
	err := s.db.Get(&d, `
		SELECT
			(SELECT COUNT(*) FROM words) AS words_count,
			(SELECT COUNT(*) FROM word_groups) AS word_groups_count,
			(SELECT COUNT(*) FROM word_progress) AS word_progress_count,
			(SELECT COUNT(*) FROM groups) AS groups_count
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	d.Groups = []GroupInfo{}
	if err := s.db.Select(&d.Groups, "SELECT id, name, words_count FROM groups ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return &d, nil
}

// CleanupOrphans removes membership and progress rows that point at missing
// words, then recomputes every group's count from live words.
func (s *SQLiteStore) CleanupOrphans() (*CleanupResult, error) {
	var r CleanupResult
	err := s.db.Get(&r, `
		SELECT
			(SELECT COUNT(*) FROM word_groups wg LEFT JOIN words w ON wg.word_id = w.id WHERE w.id IS NULL) AS orphaned_word_groups,
			(SELECT COUNT(*) FROM word_progress wp LEFT JOIN words w ON wp.word_id = w.id WHERE w.id IS NULL) AS orphaned_word_progress
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orphans: %w", err)
	}

	result, err := s.db.Exec("DELETE FROM word_groups WHERE word_id NOT IN (SELECT id FROM words)")
	if err != nil {
		return nil, fmt.Errorf("failed to delete orphaned memberships: %w", err)
	}
	r.DeletedWordGroups, _ = result.RowsAffected()

	result, err = s.db.Exec("DELETE FROM word_progress WHERE word_id NOT IN (SELECT id FROM words)")
	if err != nil {
		return nil, fmt.Errorf("failed to delete orphaned progress: %w", err)
	}
	r.DeletedWordProgress, _ = result.RowsAffected()

	_, err = s.db.Exec(`
		UPDATE groups
		SET words_count = (
			SELECT COUNT(*) FROM word_groups wg
			INNER JOIN words w ON wg.word_id = w.id
			WHERE wg.group_id = groups.id
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to recount groups: %w", err)
	}
	return &r, nil
}
