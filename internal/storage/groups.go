package storage

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

func (s *SQLiteStore) ListGroups(page, perPage int) (*Page[Group], error) {
	page, perPage, offset := normalizePage(page, perPage)

	var total int
	if err := s.db.Get(&total, "SELECT COUNT(*) FROM groups"); err != nil {
		return nil, fmt.Errorf("failed to count groups: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(description, ''), words_count
		FROM groups
		ORDER BY id
		LIMIT ? OFFSET ?
	`, perPage, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	groups := []Group{}
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.WordsCount); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Page[Group]{Items: groups, Total: total, Page: page, PerPage: perPage}, nil
}

// GetGroup returns the group or nil if it does not exist.
func (s *SQLiteStore) GetGroup(id int64) (*Group, error) {
	var g Group
	err := s.db.QueryRow(`
		SELECT id, name, COALESCE(description, ''), words_count FROM groups WHERE id = ?
	`, id).Scan(&g.ID, &g.Name, &g.Description, &g.WordsCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return &g, nil
}

func (s *SQLiteStore) CreateGroup(name, description string) (*Group, error) {
	result, err := s.db.Exec("INSERT INTO groups (name, description) VALUES (?, ?)", name, description)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get group id: %w", err)
	}
	return &Group{ID: id, Name: name, Description: description}, nil
}

// GetGroupWords returns a page of the words that belong to a group.
func (s *SQLiteStore) GetGroupWords(groupID int64, page, perPage int) (*Page[Word], error) {
	page, perPage, offset := normalizePage(page, perPage)

	var total int
	if err := s.db.Get(&total, "SELECT COUNT(*) FROM word_groups WHERE group_id = ?", groupID); err != nil {
		return nil, fmt.Errorf("failed to count group words: %w", err)
	}

	query, args, err := sq.Select(wordColumns).
		From("words w").
		Join("word_groups wg ON w.id = wg.word_id").
		LeftJoin("jlpt_levels j ON w.id = j.word_id").
		Where(sq.Eq{"wg.group_id": groupID}).
		OrderBy("w.id").
		Limit(uint64(perPage)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build group words query: %w", err)
	}
	words, err := s.queryWords(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get group words: %w", err)
	}

	return &Page[Word]{Items: words, Total: total, Page: page, PerPage: perPage}, nil
}

// AddWordToGroup links a word to a group. It returns false if the link already exists.
func (s *SQLiteStore) AddWordToGroup(groupID, wordID int64) (bool, error) {
	result, err := s.db.Exec("INSERT OR IGNORE INTO word_groups (word_id, group_id) VALUES (?, ?)", wordID, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to add word to group: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// RemoveWordFromGroup unlinks a word from a group. It returns false if there was no link.
func (s *SQLiteStore) RemoveWordFromGroup(groupID, wordID int64) (bool, error) {
	result, err := s.db.Exec("DELETE FROM word_groups WHERE word_id = ? AND group_id = ?", wordID, groupID)
	if err != nil {
		return false, fmt.Errorf("failed to remove word from group: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}

// DeleteGroup removes a group and its memberships. It returns false if the group does not exist.
// Sessions studied against the group are removed first since they reference it.
func (s *SQLiteStore) DeleteGroup(id int64) (bool, error) {
	if _, err := s.db.Exec("DELETE FROM study_sessions WHERE group_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to delete group sessions: %w", err)
	}
	result, err := s.db.Exec("DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete group: %w", err)
	}
	n, _ := result.RowsAffected()
	return n > 0, nil
}
