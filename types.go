package portal

import (
	"io"
	"time"

	embedding "github.com/matthewjhunter/go-embedding"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/ai"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/listening"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

// EngineConfig holds the settings for creating an Engine. Config is required;
// the remaining fields replace the services built from it and are mainly
// used by tests.
type EngineConfig struct {
	Config *storage.Config

	Completer   ai.Completer
	Embedder    embedding.Embedder
	Transcripts listening.TranscriptSource
	NotifyOut   io.Writer
}

// Part is one structural piece of a word with its romaji syllables.
type Part struct {
	Kanji  string   `json:"kanji"`
	Romaji []string `json:"romaji"`
}

// Word is a vocabulary entry.
type Word struct {
	ID         int64   `json:"id"`
	Kanji      string  `json:"kanji"`
	Romaji     string  `json:"romaji"`
	Vietnamese string  `json:"vietnamese"`
	Parts      []Part  `json:"parts"`
	JLPTLevel  *string `json:"jlpt_level"`
}

// WordInput is the writable part of a word.
type WordInput struct {
	Kanji      string  `json:"kanji"`
	Romaji     string  `json:"romaji"`
	Vietnamese string  `json:"vietnamese"`
	Parts      []Part  `json:"parts"`
	JLPTLevel  *string `json:"jlpt_level"`
}

// Group is a named collection of words.
type Group struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	WordsCount  int    `json:"words_count"`
}

type StudyActivity struct {
	ID              int64   `json:"id"`
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	PreviewURL      string  `json:"preview_url"`
	Description     string  `json:"description"`
	ReleaseDate     *string `json:"release_date"`
	AverageDuration *int    `json:"average_duration"`
	Focus           *int64  `json:"focus"`
}

type StudySession struct {
	ID              int64     `json:"id"`
	GroupID         int64     `json:"group_id"`
	StudyActivityID int64     `json:"study_activity_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// WordReview is one answer recorded during a session.
type WordReview struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"study_session_id"`
	WordID    int64     `json:"word_id"`
	Correct   bool      `json:"correct"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewResult is a recorded review and the progress it produced.
type ReviewResult struct {
	Review   WordReview   `json:"review"`
	Progress WordProgress `json:"progress"`
}

type WordProgress struct {
	ID            int64      `json:"id"`
	WordID        int64      `json:"word_id"`
	Status        string     `json:"status"`
	LastStudiedAt *time.Time `json:"last_studied_at"`
}

// GroupProgress lists the progress rows of a group's words.
type GroupProgress struct {
	Items []WordProgress `json:"items"`
	Total int            `json:"total"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T `json:"items"`
	Total   int `json:"total"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
}

type GroupStats struct {
	TotalWords         int        `json:"total_words"`
	LearnedWords       int        `json:"learned_words"`
	LearningWords      int        `json:"learning_words"`
	NewWords           int        `json:"new_words"`
	LastStudied        *time.Time `json:"last_studied"`
	ProgressPercentage float64    `json:"progress_percentage"`
}

type GroupStatsRow struct {
	GroupID int64  `json:"group_id"`
	Name    string `json:"name"`
	GroupStats
}

type OverallStats struct {
	TotalWords      int     `json:"total_words"`
	LearnedWords    int     `json:"learned_words"`
	LearningWords   int     `json:"learning_words"`
	NewWords        int     `json:"new_words"`
	OverallProgress float64 `json:"overall_progress"`
}

type AllGroupsStats struct {
	Groups  []GroupStatsRow `json:"groups"`
	Overall OverallStats    `json:"overall"`
}

type StudyProgress struct {
	TotalSessions int     `json:"total_sessions"`
	TotalWords    int     `json:"total_words"`
	AverageScore  float64 `json:"average_score"`
}

type QuickStats struct {
	TotalWords      int `json:"total_words"`
	TotalGroups     int `json:"total_groups"`
	TotalActivities int `json:"total_activities"`
}

type PerformanceDay struct {
	Date          string  `json:"date"`
	SessionsCount int     `json:"sessions_count"`
	AverageScore  float64 `json:"average_score"`
}

// Diagnostics reports record counts for troubleshooting.
type Diagnostics struct {
	WordsCount        int         `json:"words_count"`
	WordGroupsCount   int         `json:"word_groups_count"`
	WordProgressCount int         `json:"word_progress_count"`
	GroupsCount       int         `json:"groups_count"`
	Groups            []GroupInfo `json:"groups"`
}

type GroupInfo struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	WordsCount int    `json:"words_count"`
}

type CleanupResult struct {
	OrphanedWordGroups   int   `json:"orphaned_word_groups"`
	OrphanedWordProgress int   `json:"orphaned_word_progress"`
	DeletedWordGroups    int64 `json:"deleted_word_groups"`
	DeletedWordProgress  int64 `json:"deleted_word_progress"`
}

// Listening pipeline results.
type (
	Question         = listening.Question
	TranscriptResult = listening.FetchResult
	SplitResult      = listening.SplitResult
	StructureResult  = listening.StructureResult
	RunResult        = listening.RunResult
	SectionResult    = listening.SectionResult
	IngestResult     = listening.IngestResult
)

// GeneratedWord is one vocabulary record proposed by the model.
type GeneratedWord struct {
	Kanji      string `json:"kanji"`
	Romaji     string `json:"romaji"`
	Vietnamese string `json:"vietnamese"`
	JLPTLevel  string `json:"jlpt_level"`
	Parts      []Part `json:"parts"`
}

// GeneratedWords is the outcome of a generation request. Strategy names the
// parser that recovered the words, "fallback" for the canned list.
type GeneratedWords struct {
	Words    []GeneratedWord `json:"words"`
	Strategy string          `json:"strategy"`
}

// ImportedWord is a word written by an import and whether it was "new" or
// already "existed".
type ImportedWord struct {
	ID         int64  `json:"id"`
	Kanji      string `json:"kanji"`
	Romaji     string `json:"romaji"`
	Vietnamese string `json:"vietnamese"`
	JLPTLevel  string `json:"jlpt_level"`
	Parts      []Part `json:"parts"`
	Status     string `json:"status"`
}

type ImportResult struct {
	Message       string         `json:"message"`
	ImportedWords []ImportedWord `json:"imported_words"`
	Group         Group          `json:"group"`
}

// ReminderResult reports a review reminder run.
type ReminderResult struct {
	Days  int `json:"days"`
	Words int `json:"words"`
}
