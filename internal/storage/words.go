package storage

import (
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

const wordColumns = "w.id, w.kanji, w.romaji, w.vietnamese, w.parts, j.level"

func scanWord(sc interface{ Scan(...any) error }) (*Word, error) {
	var w Word
	var parts string
	var level sql.NullString
	if err := sc.Scan(&w.ID, &w.Kanji, &w.Romaji, &w.Vietnamese, &parts, &level); err != nil {
		return nil, err
	}
	w.Parts = decodeParts(parts)
	if level.Valid {
		lv := level.String
		w.JLPTLevel = &lv
	}
	return &w, nil
}

func (s *SQLiteStore) queryWords(query string, args ...any) ([]Word, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	words := []Word{}
	for rows.Next() {
		w, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan word: %w", err)
		}
		words = append(words, *w)
	}
	return words, rows.Err()
}

// wordSearch matches the term case-insensitively against every text column
// of a word and its JLPT level.
func wordSearch(search string) sq.Sqlizer {
	pat := "%" + strings.ToLower(search) + "%"
	return sq.Or{
		sq.Like{"LOWER(w.kanji)": pat},
		sq.Like{"LOWER(w.romaji)": pat},
		sq.Like{"LOWER(w.vietnamese)": pat},
		sq.Like{"LOWER(w.parts)": pat},
		sq.Like{"LOWER(j.level)": pat},
	}
}

// ListWords returns a page of words, optionally filtered by a search term.
func (s *SQLiteStore) ListWords(page, perPage int, search string) (*Page[Word], error) {
	page, perPage, offset := normalizePage(page, perPage)

	countQ := sq.Select("COUNT(*)").From("words w").LeftJoin("jlpt_levels j ON w.id = j.word_id")
	listQ := sq.Select(wordColumns).From("words w").LeftJoin("jlpt_levels j ON w.id = j.word_id")
	if search != "" {
		countQ = countQ.Where(wordSearch(search))
		listQ = listQ.Where(wordSearch(search))
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int
	if err := s.db.Get(&total, query, args...); err != nil {
		return nil, fmt.Errorf("failed to count words: %w", err)
	}

	query, args, err = listQ.OrderBy("w.id").Limit(uint64(perPage)).Offset(uint64(offset)).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}
	words, err := s.queryWords(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}

	return &Page[Word]{Items: words, Total: total, Page: page, PerPage: perPage}, nil
}

// GetWord returns the word or nil if it does not exist.
func (s *SQLiteStore) GetWord(id int64) (*Word, error) {
	row := s.db.QueryRow(`
		SELECT `+wordColumns+`
		FROM words w
		LEFT JOIN jlpt_levels j ON w.id = j.word_id
		WHERE w.id = ?
	`, id)
	w, err := scanWord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return w, nil
}

// CreateWord inserts a word and, when JLPTLevel is set, its level row.
func (s *SQLiteStore) CreateWord(w *Word) (int64, error) {
	parts, err := encodeParts(w.Parts)
	if err != nil {
		return 0, err
	}
	result, err := s.db.Exec(`
		INSERT INTO words (kanji, romaji, vietnamese, parts) VALUES (?, ?, ?, ?)
	`, w.Kanji, w.Romaji, w.Vietnamese, parts)
	if err != nil {
		return 0, fmt.Errorf("failed to create word: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get word id: %w", err)
	}
	if w.JLPTLevel != nil && *w.JLPTLevel != "" {
		if err := s.SetWordLevel(id, *w.JLPTLevel); err != nil {
			return id, err
		}
	}
	return id, nil
}

// UpdateWord replaces a word's fields. It returns false if the word does not exist.
func (s *SQLiteStore) UpdateWord(id int64, w *Word) (bool, error) {
	parts, err := encodeParts(w.Parts)
	if err != nil {
		return false, err
	}
	result, err := s.db.Exec(`
		UPDATE words SET kanji = ?, romaji = ?, vietnamese = ?, parts = ? WHERE id = ?
	`, w.Kanji, w.Romaji, w.Vietnamese, parts, id)
	if err != nil {
		return false, fmt.Errorf("failed to update word: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if w.JLPTLevel != nil && *w.JLPTLevel != "" {
		if err := s.SetWordLevel(id, *w.JLPTLevel); err != nil {
			return true, err
		}
	}
	return true, nil
}

// DeleteWord removes a word and recomputes the counts of the groups that held it.
// Memberships, reviews, progress and level rows go with it through ON DELETE CASCADE.
func (s *SQLiteStore) DeleteWord(id int64) (bool, error) {
	var groupIDs []int64
	if err := s.db.Select(&groupIDs, "SELECT group_id FROM word_groups WHERE word_id = ?", id); err != nil {
		return false, fmt.Errorf("failed to list word groups: %w", err)
	}

	result, err := s.db.Exec("DELETE FROM words WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete word: %w", err)
	}
	n, _ := result.RowsAffected()

	for _, gid := range groupIDs {
		if err := s.recountGroup(gid); err != nil {
			return n > 0, err
		}
	}
	return n > 0, nil
}

// FindWordByKanjiLevel looks up a word by script form and JLPT level. Returns nil if absent.
func (s *SQLiteStore) FindWordByKanjiLevel(kanji, level string) (*Word, error) {
	row := s.db.QueryRow(`
		SELECT `+wordColumns+`
		FROM words w
		JOIN jlpt_levels j ON w.id = j.word_id
		WHERE w.kanji = ? AND j.level = ?
		ORDER BY w.id
		LIMIT 1
	`, kanji, level)
	w, err := scanWord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find word: %w", err)
	}
	return w, nil
}

// SetWordLevel assigns (or replaces) the JLPT level for a word.
func (s *SQLiteStore) SetWordLevel(wordID int64, level string) error {
	_, err := s.db.Exec("INSERT OR REPLACE INTO jlpt_levels (word_id, level) VALUES (?, ?)", wordID, level)
	if err != nil {
		return fmt.Errorf("failed to set word level: %w", err)
	}
	return nil
}

func (s *SQLiteStore) recountGroup(groupID int64) error {
	_, err := s.db.Exec(`
		UPDATE groups
		SET words_count = (SELECT COUNT(*) FROM word_groups WHERE group_id = ?)
		WHERE id = ?
	`, groupID, groupID)
	if err != nil {
		return fmt.Errorf("failed to recount group %d: %w", groupID, err)
	}
	return nil
}
