package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	db *sqlx.DB
}

// Part is one structural piece of a word: a kanji (or kana run) and its readings.
type Part struct {
	Kanji  string   `json:"kanji"`
	Romaji []string `json:"romaji"`
}

type Word struct {
	ID         int64
	Kanji      string
	Romaji     string
	Vietnamese string
	Parts      []Part
	JLPTLevel  *string
}

type Group struct {
	ID          int64
	Name        string
	Description string
	WordsCount  int
}

type StudyActivity struct {
	ID              int64
	Name            string
	URL             string
	PreviewURL      string
	Description     string
	ReleaseDate     *string
	AverageDuration *int
	Focus           *int64
}

type StudySession struct {
	ID              int64
	GroupID         int64
	StudyActivityID int64
	CreatedAt       time.Time
}

type WordReviewItem struct {
	ID        int64
	SessionID int64
	WordID    int64
	IsCorrect bool
	CreatedAt time.Time
}

type WordProgress struct {
	ID            int64
	WordID        int64
	Status        string
	LastStudiedAt *time.Time
}

// Progress statuses accepted by the word_progress CHECK constraint.
const (
	StatusNew      = "new"
	StatusLearning = "learning"
	StatusLearned  = "learned"
)

// ValidStatus reports whether s is one of the three progress statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusNew, StatusLearning, StatusLearned:
		return true
	}
	return false
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T
	Total   int
	Page    int
	PerPage int
}

const defaultPerPage = 10

// normalizePage clamps page and perPage and returns the row offset.
func normalizePage(page, perPage int) (int, int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage, (page - 1) * perPage
}

// NewStore opens (or creates) the database at dbPath and initializes the schema.
func NewStore(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pragmas are per connection; a single connection keeps foreign keys on for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	// Migrations for databases created before progress rows were unique per word.
	migrations := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_word_progress_word ON word_progress(word_id)",
		"UPDATE groups SET description = '' WHERE description IS NULL",
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			log.Printf("portal: migration %q: %v", m, err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeParts(parts []Part) (string, error) {
	if parts == nil {
		parts = []Part{}
	}
	b, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("failed to encode parts: %w", err)
	}
	return string(b), nil
}

func decodeParts(raw string) []Part {
	var parts []Part
	if raw == "" {
		return []Part{}
	}
	if err := json.Unmarshal([]byte(raw), &parts); err != nil || parts == nil {
		return []Part{}
	}
	return parts
}

// timeLayouts covers what SQLite hands back for aggregated timestamp columns,
// which lose their declared type and arrive as text.
var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nullTime converts an aggregate timestamp column to *time.Time.
func nullTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, ok := parseTime(ns.String)
	if !ok {
		return nil
	}
	return &t
}
