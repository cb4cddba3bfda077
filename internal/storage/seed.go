package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"
)

// SeedGroup maps a words file to the group it populates.
type SeedGroup struct {
	Name string
	File string
}

// DefaultSeedGroups are the vocabulary groups loaded into a fresh database.
var DefaultSeedGroups = []SeedGroup{
	{Name: "Core Verbs", File: "data_verbs.json"},
	{Name: "Core Adjectives", File: "data_adjectives.json"},
}

type seedWord struct {
	Kanji      string `json:"kanji"`
	Romaji     string `json:"romaji"`
	Vietnamese string `json:"vietnamese"`
	Parts      []Part `json:"parts"`
}

type seedActivity struct {
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	PreviewURL      string  `json:"preview_url"`
	Description     string  `json:"description"`
	ReleaseDate     *string `json:"release_date"`
	AverageDuration *int    `json:"average_duration"`
	Focus           *int64  `json:"focus"`
}

type seedSession struct {
	GroupID         int64  `json:"group_id"`
	StudyActivityID int64  `json:"study_activity_id"`
	CreatedAt       string `json:"created_at"`
}

type seedLevel struct {
	WordID int64  `json:"word_id"`
	Level  string `json:"level"`
}

type seedProgress struct {
	WordID        int64   `json:"word_id"`
	Status        string  `json:"status"`
	LastStudiedAt *string `json:"last_studied_at"`
}

// readSeed decodes dir/name into v. A missing file is reported as false.
func readSeed(dir, name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return true, nil
}

// Seed loads the sample data files found in dir. Files that do not exist are skipped.
func (s *SQLiteStore) Seed(dir string) error {
	for _, sg := range DefaultSeedGroups {
		var words []seedWord
		ok, err := readSeed(dir, sg.File, &words)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		group, err := s.CreateGroup(sg.Name, "")
		if err != nil {
			return err
		}
		for _, w := range words {
			id, err := s.CreateWord(&Word{Kanji: w.Kanji, Romaji: w.Romaji, Vietnamese: w.Vietnamese, Parts: w.Parts})
			if err != nil {
				return err
			}
			if _, err := s.AddWordToGroup(group.ID, id); err != nil {
				return err
			}
		}
		log.Printf("portal: seeded %d words into %q", len(words), sg.Name)
	}

	var activities []seedActivity
	if ok, err := readSeed(dir, "study_activities.json", &activities); err != nil {
		return err
	} else if ok {
		for _, a := range activities {
			_, err := s.CreateActivity(&StudyActivity{
				Name:            a.Name,
				URL:             a.URL,
				PreviewURL:      a.PreviewURL,
				Description:     a.Description,
				ReleaseDate:     a.ReleaseDate,
				AverageDuration: a.AverageDuration,
				Focus:           a.Focus,
			})
			if err != nil {
				return err
			}
		}
		log.Printf("portal: seeded %d study activities", len(activities))
	}

	var sessions []seedSession
	if ok, err := readSeed(dir, "study_sessions.json", &sessions); err != nil {
		return err
	} else if ok {
		for _, ss := range sessions {
			created := time.Now().UTC()
			if t, ok := parseTime(ss.CreatedAt); ok {
				created = t.UTC()
			}
			_, err := s.db.Exec(`
				INSERT INTO study_sessions (group_id, study_activity_id, created_at) VALUES (?, ?, ?)
			`, ss.GroupID, ss.StudyActivityID, created.Format("2006-01-02 15:04:05"))
			if err != nil {
				return fmt.Errorf("failed to seed session: %w", err)
			}
		}
		log.Printf("portal: seeded %d study sessions", len(sessions))
	}

	var levels []seedLevel
	if ok, err := readSeed(dir, "jlpt_levels.json", &levels); err != nil {
		return err
	} else if ok {
		for _, l := range levels {
			if err := s.SetWordLevel(l.WordID, l.Level); err != nil {
				return err
			}
		}
		log.Printf("portal: seeded %d JLPT levels", len(levels))
	}

	var progress []seedProgress
	if ok, err := readSeed(dir, "word_progress.json", &progress); err != nil {
		return err
	} else if ok {
		for _, p := range progress {
			var studied *time.Time
			if p.LastStudiedAt != nil {
				if t, ok := parseTime(*p.LastStudiedAt); ok {
					t = t.UTC()
					studied = &t
				}
			}
			_, err := s.db.Exec(`
				INSERT OR REPLACE INTO word_progress (word_id, status, last_studied_at) VALUES (?, ?, ?)
			`, p.WordID, p.Status, studied)
			if err != nil {
				return fmt.Errorf("failed to seed progress: %w", err)
			}
		}
		log.Printf("portal: seeded %d progress records", len(progress))
	}

	return nil
}

// IsEmpty reports whether the database holds no words and no groups yet.
func (s *SQLiteStore) IsEmpty() (bool, error) {
	var n int
	if err := s.db.Get(&n, "SELECT (SELECT COUNT(*) FROM words) + (SELECT COUNT(*) FROM groups)"); err != nil {
		return false, fmt.Errorf("failed to check database: %w", err)
	}
	return n == 0, nil
}
