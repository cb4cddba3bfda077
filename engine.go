package portal

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/ai"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/feeds"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/importer"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/listening"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/notify"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/reading"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/vectorstore"
)

// Engine is the public API of the portal. It wraps the store, the listening
// pipeline, word generation and import.
type Engine struct {
	store     *storage.SQLiteStore
	config    *storage.Config
	pipeline  *listening.Pipeline
	fetcher   *feeds.Fetcher
	generator *ai.WordGenerator
	importer  *importer.Importer
	notifier  *notify.Notifier
}

// NewEngine opens the database and builds the services named by cfg.Config.
// The model clients are created eagerly but only contact their servers when
// called.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	conf := cfg.Config
	if conf == nil {
		conf = storage.DefaultConfig()
	}

	store, err := storage.NewStore(conf.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	completer := cfg.Completer
	if completer == nil {
		completer, err = ai.NewCompleter(conf.LLM.Provider, conf.LLM.Model,
			conf.LLM.OllamaBaseURL, conf.LLM.GroqAPIKey, conf.LLM.GroqURL)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create completer: %w", err)
		}
	}

	embedder := cfg.Embedder
	if embedder == nil {
		embedder, err = ai.NewOllamaEmbedder(conf.Embedding.BaseURL, conf.Embedding.Model)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("create embedder: %w", err)
		}
	}

	collection, err := vectorstore.Open(store, embedder, conf.Listening.Collection, map[string]any{
		"description": "JLPT listening questions",
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open question collection: %w", err)
	}

	transcripts := cfg.Transcripts
	if transcripts == nil {
		transcripts = listening.NewYouTubeSource(conf.Listening.YouTubeURL)
	}

	prompts := ai.NewPromptLoader(conf)
	pipeline := listening.NewPipeline(transcripts, ai.NewQuestionWriter(completer, prompts), collection, listening.Options{
		DataDir:       conf.Listening.DataDir,
		Languages:     conf.Listening.Languages,
		SearchResults: conf.Listening.SearchResults,
	})

	// Words without a breakdown are imported as given when the dictionary
	// cannot be loaded.
	var analyzer importer.Analyzer
	if a, err := reading.NewAnalyzer(); err != nil {
		log.Printf("portal: reading analyzer unavailable: %v", err)
	} else {
		analyzer = a
	}

	return &Engine{
		store:     store,
		config:    conf,
		pipeline:  pipeline,
		fetcher:   feeds.NewFetcher(conf.Listening.YouTubeURL),
		generator: ai.NewWordGenerator(completer, prompts),
		importer:  importer.New(store, analyzer),
		notifier:  notify.NewNotifier(conf.Notify.Enabled, conf.Notify.Command, cfg.NotifyOut),
	}, nil
}

// Close releases the database.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *storage.Config {
	return e.config
}

// Words

func (e *Engine) ListWords(page, perPage int, search string) (*Page[Word], error) {
	p, err := e.store.ListWords(page, perPage, strings.TrimSpace(search))
	if err != nil {
		return nil, err
	}
	return pageFromInternal(p, wordFromInternal), nil
}

func (e *Engine) GetWord(id int64) (*Word, error) {
	w, err := e.store.GetWord(id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, domain.NotFoundf("word %d not found", id)
	}
	out := wordFromInternal(*w)
	return &out, nil
}

// CreateWord stores a new word and, when given, its JLPT level.
func (e *Engine) CreateWord(in WordInput) (*Word, error) {
	if strings.TrimSpace(in.Kanji) == "" {
		return nil, domain.NewValidationError("kanji", "kanji is required")
	}
	id, err := e.store.CreateWord(wordToInternal(in))
	if err != nil {
		return nil, err
	}
	return e.GetWord(id)
}

// UpdateWord replaces a word's fields. A nil level leaves the level unchanged.
func (e *Engine) UpdateWord(id int64, in WordInput) (*Word, error) {
	if strings.TrimSpace(in.Kanji) == "" {
		return nil, domain.NewValidationError("kanji", "kanji is required")
	}
	ok, err := e.store.UpdateWord(id, wordToInternal(in))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NotFoundf("word %d not found", id)
	}
	return e.GetWord(id)
}

// DeleteWord removes a word and everything attached to it.
func (e *Engine) DeleteWord(id int64) error {
	ok, err := e.store.DeleteWord(id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundf("word %d not found", id)
	}
	return nil
}

// Groups

func (e *Engine) ListGroups(page, perPage int) (*Page[Group], error) {
	p, err := e.store.ListGroups(page, perPage)
	if err != nil {
		return nil, err
	}
	return pageFromInternal(p, groupFromInternal), nil
}

func (e *Engine) GetGroup(id int64) (*Group, error) {
	g, err := e.store.GetGroup(id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.NotFoundf("group %d not found", id)
	}
	out := groupFromInternal(*g)
	return &out, nil
}

func (e *Engine) CreateGroup(name, description string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name", "group name is required")
	}
	g, err := e.store.CreateGroup(name, description)
	if err != nil {
		return nil, err
	}
	out := groupFromInternal(*g)
	return &out, nil
}

func (e *Engine) GetGroupWords(groupID int64, page, perPage int) (*Page[Word], error) {
	if _, err := e.GetGroup(groupID); err != nil {
		return nil, err
	}
	p, err := e.store.GetGroupWords(groupID, page, perPage)
	if err != nil {
		return nil, err
	}
	return pageFromInternal(p, wordFromInternal), nil
}

// AddWordToGroup reports false when the word is already a member.
func (e *Engine) AddWordToGroup(groupID, wordID int64) (bool, error) {
	if _, err := e.GetGroup(groupID); err != nil {
		return false, err
	}
	if _, err := e.GetWord(wordID); err != nil {
		return false, err
	}
	return e.store.AddWordToGroup(groupID, wordID)
}

func (e *Engine) RemoveWordFromGroup(groupID, wordID int64) error {
	if _, err := e.GetGroup(groupID); err != nil {
		return err
	}
	ok, err := e.store.RemoveWordFromGroup(groupID, wordID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundf("word %d not found in group %d", wordID, groupID)
	}
	return nil
}

// DeleteGroup removes a group, its memberships and its sessions.
func (e *Engine) DeleteGroup(id int64) error {
	ok, err := e.store.DeleteGroup(id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFoundf("group %d not found", id)
	}
	return nil
}

// Study activities

func (e *Engine) ListActivities() ([]StudyActivity, error) {
	list, err := e.store.ListActivities()
	if err != nil {
		return nil, err
	}
	return mapSlice(list, activityFromInternal), nil
}

func (e *Engine) GetActivity(id int64) (*StudyActivity, error) {
	a, err := e.store.GetActivity(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NotFoundf("activity %d not found", id)
	}
	out := activityFromInternal(*a)
	return &out, nil
}

// GetLaunchInfo returns what a client needs to start the activity.
func (e *Engine) GetLaunchInfo(id int64) (*StudyActivity, error) {
	a, err := e.store.GetLaunchInfo(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NotFoundf("activity %d not found", id)
	}
	out := activityFromInternal(*a)
	return &out, nil
}

// Study sessions

func (e *Engine) ListSessions(page, perPage int) (*Page[StudySession], error) {
	p, err := e.store.ListSessions(page, perPage)
	if err != nil {
		return nil, err
	}
	return pageFromInternal(p, sessionFromInternal), nil
}

func (e *Engine) GetSession(id int64) (*StudySession, error) {
	s, err := e.store.GetSession(id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFoundf("session %d not found", id)
	}
	out := sessionFromInternal(*s)
	return &out, nil
}

func (e *Engine) ListSessionsByActivity(activityID int64, page, perPage int) (*Page[StudySession], error) {
	p, err := e.store.ListSessionsByActivity(activityID, page, perPage)
	if err != nil {
		return nil, err
	}
	return pageFromInternal(p, sessionFromInternal), nil
}

func (e *Engine) ListSessionsByGroup(groupID int64, page, perPage int) (*Page[StudySession], error) {
	p, err := e.store.ListSessionsByGroup(groupID, page, perPage)
	if err != nil {
		return nil, err
	}
	return pageFromInternal(p, sessionFromInternal), nil
}

// GetSessionWords lists the words reviewed in a session.
func (e *Engine) GetSessionWords(sessionID int64, page, perPage int) (*Page[Word], error) {
	if _, err := e.GetSession(sessionID); err != nil {
		return nil, err
	}
	p, err := e.store.GetSessionWords(sessionID, page, perPage)
	if err != nil {
		return nil, err
	}
	return pageFromInternal(p, wordFromInternal), nil
}

func (e *Engine) CreateSession(groupID, activityID int64) (*StudySession, error) {
	if groupID == 0 {
		return nil, domain.NewValidationError("group_id", "group_id is required")
	}
	if activityID == 0 {
		return nil, domain.NewValidationError("study_activity_id", "study_activity_id is required")
	}
	if _, err := e.GetGroup(groupID); err != nil {
		return nil, err
	}
	if _, err := e.GetActivity(activityID); err != nil {
		return nil, err
	}
	s, err := e.store.CreateSession(groupID, activityID)
	if err != nil {
		return nil, err
	}
	out := sessionFromInternal(*s)
	return &out, nil
}

// RecordReview stores an answer for a word and advances its progress.
func (e *Engine) RecordReview(sessionID, wordID int64, correct bool) (*ReviewResult, error) {
	if _, err := e.GetSession(sessionID); err != nil {
		return nil, err
	}
	if _, err := e.GetWord(wordID); err != nil {
		return nil, err
	}
	item, progress, err := e.store.RecordWordReview(sessionID, wordID, correct)
	if err != nil {
		return nil, err
	}
	return &ReviewResult{
		Review:   reviewFromInternal(*item),
		Progress: progressFromInternal(*progress),
	}, nil
}

// ResetHistory deletes every session and review.
func (e *Engine) ResetHistory() error {
	return e.store.ResetHistory()
}

// ContinueLearning returns the newest session whose group still has words to learn.
func (e *Engine) ContinueLearning() (*StudySession, error) {
	s, err := e.store.ContinueLearning()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFoundf("no session to continue")
	}
	out := sessionFromInternal(*s)
	return &out, nil
}

// Word progress

func validateStatus(status string) error {
	if !storage.ValidStatus(status) {
		return domain.NewValidationError("status", fmt.Sprintf("invalid status %q, want new, learning or learned", status))
	}
	return nil
}

// CreateProgress starts tracking a word. An empty status means "new".
func (e *Engine) CreateProgress(wordID int64, status string) (*WordProgress, error) {
	if status == "" {
		status = storage.StatusNew
	}
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	if _, err := e.GetWord(wordID); err != nil {
		return nil, err
	}
	p, err := e.store.CreateProgress(wordID, status, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	out := progressFromInternal(*p)
	return &out, nil
}

// UpdateProgress changes the given fields. With neither field set it returns
// nil without touching the row.
func (e *Engine) UpdateProgress(wordID int64, status *string, lastStudiedAt *time.Time) (*WordProgress, error) {
	if status != nil && *status != "" {
		if err := validateStatus(*status); err != nil {
			return nil, err
		}
	}
	hasStatus := status != nil && *status != ""
	hasStudied := lastStudiedAt != nil && !lastStudiedAt.IsZero()
	if !hasStatus && !hasStudied {
		return nil, nil
	}
	p, err := e.store.UpdateProgress(wordID, status, lastStudiedAt)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFoundf("progress for word %d not found", wordID)
	}
	out := progressFromInternal(*p)
	return &out, nil
}

func (e *Engine) GetProgress(wordID int64) (*WordProgress, error) {
	p, err := e.store.GetProgress(wordID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFoundf("progress for word %d not found", wordID)
	}
	out := progressFromInternal(*p)
	return &out, nil
}

func (e *Engine) ListProgressByStatus(status string) ([]WordProgress, error) {
	if err := validateStatus(status); err != nil {
		return nil, err
	}
	list, err := e.store.ListProgressByStatus(status)
	if err != nil {
		return nil, err
	}
	return mapSlice(list, progressFromInternal), nil
}

// ListLearnedOverDays returns learned words not studied for more than days.
func (e *Engine) ListLearnedOverDays(days int) ([]WordProgress, error) {
	if days < 0 {
		return nil, domain.NewValidationError("days", "days must not be negative")
	}
	list, err := e.store.ListLearnedOverDays(days)
	if err != nil {
		return nil, err
	}
	return mapSlice(list, progressFromInternal), nil
}

func (e *Engine) ListProgressByGroup(groupID int64) (*GroupProgress, error) {
	list, total, err := e.store.ListProgressByGroup(groupID)
	if err != nil {
		return nil, err
	}
	return &GroupProgress{Items: mapSlice(list, progressFromInternal), Total: total}, nil
}

// Dashboard

func (e *Engine) LastStudySession() (*StudySession, error) {
	s, err := e.store.LastStudySession()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NotFoundf("no study sessions found")
	}
	out := sessionFromInternal(*s)
	return &out, nil
}

func (e *Engine) StudyProgress() (*StudyProgress, error) {
	p, err := e.store.StudyProgress()
	if err != nil {
		return nil, err
	}
	return &StudyProgress{TotalSessions: p.TotalSessions, TotalWords: p.TotalWords, AverageScore: p.AverageScore}, nil
}

func (e *Engine) QuickStats() (*QuickStats, error) {
	q, err := e.store.QuickStats()
	if err != nil {
		return nil, err
	}
	return &QuickStats{TotalWords: q.TotalWords, TotalGroups: q.TotalGroups, TotalActivities: q.TotalActivities}, nil
}

// PerformanceGraph returns session counts for the most recent 31 days with sessions.
func (e *Engine) PerformanceGraph() ([]PerformanceDay, error) {
	days, err := e.store.PerformanceGraph()
	if err != nil {
		return nil, err
	}
	return mapSlice(days, func(d storage.PerformanceDay) PerformanceDay {
		return PerformanceDay{Date: d.Date, SessionsCount: d.SessionsCount, AverageScore: d.AverageScore}
	}), nil
}

// FullReset deletes all study history. Words, groups and progress are kept.
func (e *Engine) FullReset() error {
	return e.store.FullReset()
}

// Statistics

func (e *Engine) GroupStats(groupID int64) (*GroupStats, error) {
	if _, err := e.GetGroup(groupID); err != nil {
		return nil, err
	}
	st, err := e.store.GroupStats(groupID)
	if err != nil {
		return nil, err
	}
	out := groupStatsFromInternal(*st)
	return &out, nil
}

func (e *Engine) AllGroupsStats() (*AllGroupsStats, error) {
	st, err := e.store.AllGroupsStats()
	if err != nil {
		return nil, err
	}
	return &AllGroupsStats{
		Groups: mapSlice(st.Groups, func(r storage.GroupStatsRow) GroupStatsRow {
			return GroupStatsRow{GroupID: r.GroupID, Name: r.Name, GroupStats: groupStatsFromInternal(r.GroupStats)}
		}),
		Overall: OverallStats{
			TotalWords:      st.Overall.TotalWords,
			LearnedWords:    st.Overall.LearnedWords,
			LearningWords:   st.Overall.LearningWords,
			NewWords:        st.Overall.NewWords,
			OverallProgress: st.Overall.OverallProgress,
		},
	}, nil
}

// Maintenance

func (e *Engine) Diagnostics() (*Diagnostics, error) {
	d, err := e.store.Diagnostics()
	if err != nil {
		return nil, err
	}
	return &Diagnostics{
		WordsCount:        d.WordsCount,
		WordGroupsCount:   d.WordGroupsCount,
		WordProgressCount: d.WordProgressCount,
		GroupsCount:       d.GroupsCount,
		Groups: mapSlice(d.Groups, func(g storage.GroupInfo) GroupInfo {
			return GroupInfo{ID: g.ID, Name: g.Name, WordsCount: g.WordsCount}
		}),
	}, nil
}

// CleanupOrphans removes membership and progress rows of deleted words.
func (e *Engine) CleanupOrphans() (*CleanupResult, error) {
	r, err := e.store.CleanupOrphans()
	if err != nil {
		return nil, err
	}
	log.Printf("portal: cleaned up %d word_groups and %d word_progress orphans", r.DeletedWordGroups, r.DeletedWordProgress)
	return &CleanupResult{
		OrphanedWordGroups:   r.OrphanedWordGroups,
		OrphanedWordProgress: r.OrphanedWordProgress,
		DeletedWordGroups:    r.DeletedWordGroups,
		DeletedWordProgress:  r.DeletedWordProgress,
	}, nil
}

// Seed loads the sample data in dir (the configured seed directory when
// empty) into an empty database. It reports false when the database
// already has words.
func (e *Engine) Seed(dir string) (bool, error) {
	if dir == "" {
		dir = e.config.Database.SeedDir
	}
	if dir == "" {
		return false, domain.NewValidationError("seed_dir", "no seed directory configured")
	}
	empty, err := e.store.IsEmpty()
	if err != nil {
		return false, err
	}
	if !empty {
		return false, nil
	}
	if err := e.store.Seed(dir); err != nil {
		return false, fmt.Errorf("seed database: %w", err)
	}
	return true, nil
}
