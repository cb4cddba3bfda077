package storage

import "time"

// Store defines the storage interface for the portal's data layer.
type Store interface {
	Close() error

	// Words
	ListWords(page, perPage int, search string) (*Page[Word], error)
	GetWord(id int64) (*Word, error)
	CreateWord(w *Word) (int64, error)
	UpdateWord(id int64, w *Word) (bool, error)
	DeleteWord(id int64) (bool, error)
	FindWordByKanjiLevel(kanji, level string) (*Word, error)
	SetWordLevel(wordID int64, level string) error

	// Groups
	ListGroups(page, perPage int) (*Page[Group], error)
	GetGroup(id int64) (*Group, error)
	CreateGroup(name, description string) (*Group, error)
	GetGroupWords(groupID int64, page, perPage int) (*Page[Word], error)
	AddWordToGroup(groupID, wordID int64) (bool, error)
	RemoveWordFromGroup(groupID, wordID int64) (bool, error)
	DeleteGroup(id int64) (bool, error)

	// Study activities
	ListActivities() ([]StudyActivity, error)
	GetActivity(id int64) (*StudyActivity, error)
	GetLaunchInfo(id int64) (*StudyActivity, error)
	CreateActivity(a *StudyActivity) (int64, error)

	// Study sessions
	ListSessions(page, perPage int) (*Page[StudySession], error)
	GetSession(id int64) (*StudySession, error)
	ListSessionsByActivity(activityID int64, page, perPage int) (*Page[StudySession], error)
	ListSessionsByGroup(groupID int64, page, perPage int) (*Page[StudySession], error)
	GetSessionWords(sessionID int64, page, perPage int) (*Page[Word], error)
	CreateSession(groupID, activityID int64) (*StudySession, error)
	RecordWordReview(sessionID, wordID int64, correct bool) (*WordReviewItem, *WordProgress, error)
	ResetHistory() error
	ContinueLearning() (*StudySession, error)

	// Word progress
	CreateProgress(wordID int64, status string, studiedAt time.Time) (*WordProgress, error)
	UpdateProgress(wordID int64, status *string, studiedAt *time.Time) (*WordProgress, error)
	GetProgress(wordID int64) (*WordProgress, error)
	ListProgressByStatus(status string) ([]WordProgress, error)
	ListLearnedOverDays(days int) ([]WordProgress, error)
	ListProgressByGroup(groupID int64) ([]WordProgress, int, error)

	// Dashboard
	LastStudySession() (*StudySession, error)
	StudyProgress() (*StudyProgress, error)
	QuickStats() (*QuickStats, error)
	PerformanceGraph() ([]PerformanceDay, error)
	FullReset() error

	// Statistics
	GroupStats(groupID int64) (*GroupStats, error)
	AllGroupsStats() (*AllGroupsStats, error)

	// Maintenance
	Diagnostics() (*Diagnostics, error)
	CleanupOrphans() (*CleanupResult, error)
	Seed(dir string) error
	IsEmpty() (bool, error)

	// Vector records
	EnsureCollection(name, metadata string) error
	UpsertVector(rec *VectorRecord) error
	ListVectors(collection string) ([]VectorRecord, error)
	CountVectors(collection string) (int, error)
}

var _ Store = (*SQLiteStore)(nil)
