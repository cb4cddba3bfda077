// Package importer adds vocabulary records to the store under a themed group,
// reusing words that already exist at the same JLPT level.
package importer

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

const defaultLevel = "N5"

// Store is the subset of storage.Store the importer writes through.
type Store interface {
	CreateGroup(name, description string) (*storage.Group, error)
	FindWordByKanjiLevel(kanji, level string) (*storage.Word, error)
	CreateWord(w *storage.Word) (int64, error)
	CreateProgress(wordID int64, status string, studiedAt time.Time) (*storage.WordProgress, error)
	AddWordToGroup(groupID, wordID int64) (bool, error)
}

// Analyzer fills in the breakdown of words that arrive without one.
type Analyzer interface {
	Breakdown(word string) ([]storage.Part, string)
}

// Record is one word to import.
type Record struct {
	Kanji      string         `json:"kanji"`
	Romaji     string         `json:"romaji"`
	Vietnamese string         `json:"vietnamese"`
	JLPTLevel  string         `json:"jlpt_level"`
	Parts      []storage.Part `json:"parts"`
}

const (
	StatusNew     = "new"
	StatusExisted = "existed"
)

// ImportedWord reports what happened to one record.
type ImportedWord struct {
	ID         int64
	Kanji      string
	Romaji     string
	Vietnamese string
	JLPTLevel  string
	Parts      []storage.Part
	Status     string
}

// Result is the outcome of an import.
type Result struct {
	Words []ImportedWord
	Group *storage.Group
}

type Importer struct {
	store    Store
	analyzer Analyzer
}

// New returns an importer. analyzer may be nil, in which case records are
// stored as given.
func New(store Store, analyzer Analyzer) *Importer {
	return &Importer{store: store, analyzer: analyzer}
}

// Import creates a group named category and adds every record to it. Words
// are matched on (kanji, level); new ones get a "new" progress row. Earlier
// records stay imported when a later one fails.
func (im *Importer) Import(records []Record, category string) (*Result, error) {
	if len(records) == 0 {
		return nil, domain.NewValidationError("words", "no words data provided")
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.NewValidationError("thematicCategory", "thematic category is required")
	}

	group, err := im.store.CreateGroup(category, "Vocabulary for theme: "+category)
	if err != nil {
		return nil, err
	}

	res := &Result{Group: group, Words: make([]ImportedWord, 0, len(records))}
	for _, rec := range records {
		level := rec.JLPTLevel
		if level == "" {
			level = defaultLevel
		}

		existing, err := im.store.FindWordByKanjiLevel(rec.Kanji, level)
		if err != nil {
			return res, err
		}
		if existing != nil {
			if _, err := im.store.AddWordToGroup(group.ID, existing.ID); err != nil {
				return res, err
			}
			res.Words = append(res.Words, ImportedWord{
				ID:         existing.ID,
				Kanji:      existing.Kanji,
				Romaji:     existing.Romaji,
				Vietnamese: existing.Vietnamese,
				JLPTLevel:  level,
				Parts:      existing.Parts,
				Status:     StatusExisted,
			})
			continue
		}

		im.fillReading(&rec)
		w := &storage.Word{
			Kanji:      rec.Kanji,
			Romaji:     rec.Romaji,
			Vietnamese: rec.Vietnamese,
			Parts:      rec.Parts,
			JLPTLevel:  &level,
		}
		id, err := im.store.CreateWord(w)
		if err != nil {
			return res, fmt.Errorf("failed to import %s: %w", rec.Kanji, err)
		}
		if _, err := im.store.CreateProgress(id, storage.StatusNew, time.Now().UTC()); err != nil {
			return res, err
		}
		if _, err := im.store.AddWordToGroup(group.ID, id); err != nil {
			return res, err
		}
		res.Words = append(res.Words, ImportedWord{
			ID:         id,
			Kanji:      rec.Kanji,
			Romaji:     rec.Romaji,
			Vietnamese: rec.Vietnamese,
			JLPTLevel:  level,
			Parts:      rec.Parts,
			Status:     StatusNew,
		})
	}

	log.Printf("portal: imported %d words into group %q", len(res.Words), category)
	return res, nil
}

func (im *Importer) fillReading(rec *Record) {
	if im.analyzer == nil || (len(rec.Parts) > 0 && rec.Romaji != "") {
		return
	}
	parts, romaji := im.analyzer.Breakdown(rec.Kanji)
	if len(rec.Parts) == 0 {
		rec.Parts = parts
	}
	if rec.Romaji == "" {
		rec.Romaji = romaji
	}
}
