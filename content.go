package portal

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/feeds"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/importer"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/listening"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/notify"
)

// Listening pipeline

func videoIDFromURL(url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", domain.NewValidationError("url", "url is required")
	}
	id, ok := listening.ExtractVideoID(url)
	if !ok {
		return "", domain.NewValidationError("url", "invalid YouTube URL")
	}
	return id, nil
}

func requireVideoID(videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return domain.NewValidationError("video_id", "video_id is required")
	}
	if !listening.ValidVideoID(videoID) {
		return domain.NewValidationError("video_id", "invalid video id")
	}
	return nil
}

// FetchTranscript downloads the captions of the video at url and saves them.
func (e *Engine) FetchTranscript(ctx context.Context, url string) (*TranscriptResult, error) {
	id, err := videoIDFromURL(url)
	if err != nil {
		return nil, err
	}
	return e.pipeline.Fetch(ctx, id)
}

// SplitTranscript cuts a saved transcript into its numbered problem sections.
func (e *Engine) SplitTranscript(videoID string) (*SplitResult, error) {
	if err := requireVideoID(videoID); err != nil {
		return nil, err
	}
	return e.pipeline.Split(videoID)
}

// StructureSection has the model rewrite one section as question blocks.
func (e *Engine) StructureSection(ctx context.Context, videoID string, section int) (*StructureResult, error) {
	if err := requireVideoID(videoID); err != nil {
		return nil, err
	}
	if section < 1 {
		return nil, domain.NewValidationError("section_num", "section_num is required")
	}
	return e.pipeline.Structure(ctx, videoID, section)
}

// IndexQuestions embeds the structured questions of a section and returns how
// many were stored.
func (e *Engine) IndexQuestions(ctx context.Context, videoID string, section int) (int, error) {
	if err := requireVideoID(videoID); err != nil {
		return 0, err
	}
	if section < 1 {
		return 0, domain.NewValidationError("section_num", "section_num is required")
	}
	return e.pipeline.Index(ctx, videoID, section)
}

// SearchQuestions returns the indexed questions closest to conversation.
func (e *Engine) SearchQuestions(ctx context.Context, conversation string, k int) ([]Question, error) {
	if strings.TrimSpace(conversation) == "" {
		return nil, domain.NewValidationError("conversation", "conversation is required")
	}
	return e.pipeline.Search(ctx, conversation, k)
}

// GenerateQuestion writes a new question for conversation. It reports false
// when the model's answer lacks a field.
func (e *Engine) GenerateQuestion(ctx context.Context, conversation string) (*Question, bool, error) {
	if strings.TrimSpace(conversation) == "" {
		return nil, false, domain.NewValidationError("conversation", "conversation is required")
	}
	return e.pipeline.Generate(ctx, conversation)
}

// ProcessVideo runs every pipeline stage for the video at url.
func (e *Engine) ProcessVideo(ctx context.Context, url string) (*RunResult, error) {
	id, err := videoIDFromURL(url)
	if err != nil {
		return nil, err
	}
	return e.pipeline.Run(ctx, id)
}

// IngestChannel processes the channel's recent videos that have no
// transcript yet.
func (e *Engine) IngestChannel(ctx context.Context, channel string) (*IngestResult, error) {
	if strings.TrimSpace(channel) == "" {
		return nil, domain.NewValidationError("channel", "channel is required")
	}
	return e.pipeline.IngestChannel(ctx, e.fetcher, channel)
}

// ChannelsFromOPML returns the channel feed URLs listed in an OPML export,
// such as a YouTube subscriptions file.
func (e *Engine) ChannelsFromOPML(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, domain.NewValidationError("opml", "OPML path is required")
	}
	return feeds.ReadOPML(path)
}

// ConfiguredChannels merges listening.channels with the feeds listed in
// listening.channels_opml. Duplicates are dropped, first occurrence wins.
func (e *Engine) ConfiguredChannels() ([]string, error) {
	channels := append([]string{}, e.config.Listening.Channels...)
	if e.config.Listening.ChannelsOPML != "" {
		fromOPML, err := e.ChannelsFromOPML(e.config.Listening.ChannelsOPML)
		if err != nil {
			return nil, err
		}
		channels = append(channels, fromOPML...)
	}

	seen := make(map[string]bool, len(channels))
	out := channels[:0]
	for _, ch := range channels {
		key := e.fetcher.FeedURL(ch)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ch)
	}
	return out, nil
}

// IngestConfiguredChannels ingests every configured channel. A channel that
// fails is logged and skipped.
func (e *Engine) IngestConfiguredChannels(ctx context.Context) ([]*IngestResult, error) {
	channels, err := e.ConfiguredChannels()
	if err != nil {
		return nil, err
	}
	var results []*IngestResult
	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := e.IngestChannel(ctx, ch)
		if err != nil {
			log.Printf("portal: ingest %s: %v", ch, err)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// Vocabulary generation and import

// GenerateWords asks the model for vocabulary about category at a JLPT
// level (N5 when empty or unknown).
func (e *Engine) GenerateWords(ctx context.Context, category, level string) (*GeneratedWords, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, domain.NewValidationError("thematicCategory", "thematic category is required")
	}
	res, err := e.generator.Generate(ctx, category, level)
	if err != nil {
		return nil, err
	}

	out := &GeneratedWords{Strategy: string(res.Strategy), Words: make([]GeneratedWord, 0, len(res.Words))}
	for _, w := range res.Words {
		out.Words = append(out.Words, GeneratedWord{
			Kanji:      w.Kanji,
			Romaji:     w.Romaji,
			Vietnamese: w.Vietnamese,
			JLPTLevel:  w.JLPTLevel,
			Parts:      partsFromInternal(w.Parts),
		})
	}
	return out, nil
}

// ImportWords adds words to a new group named category. Words already
// stored at the same level are reused.
func (e *Engine) ImportWords(words []GeneratedWord, category string) (*ImportResult, error) {
	records := make([]importer.Record, 0, len(words))
	for _, w := range words {
		records = append(records, importer.Record{
			Kanji:      w.Kanji,
			Romaji:     w.Romaji,
			Vietnamese: w.Vietnamese,
			JLPTLevel:  w.JLPTLevel,
			Parts:      partsToInternal(w.Parts),
		})
	}
	res, err := e.importer.Import(records, category)
	if err != nil {
		return nil, err
	}
	return e.importResult(res), nil
}

// ImportFile imports the rows of an .xlsx or .csv file into category.
func (e *Engine) ImportFile(path, category string) (*ImportResult, error) {
	res, err := e.importer.ImportFile(path, category)
	if err != nil {
		return nil, err
	}
	return e.importResult(res), nil
}

// importResult reloads the group so its word count reflects the import.
func (e *Engine) importResult(res *importer.Result) *ImportResult {
	if res.Group != nil {
		if g, err := e.store.GetGroup(res.Group.ID); err == nil && g != nil {
			res.Group = g
		}
	}
	return importResultFromInternal(res)
}

// Reminders

// SendReviewReminders notifies about learned words not studied for more
// than days (the configured reminder interval when days is 0).
func (e *Engine) SendReviewReminders(ctx context.Context, days int) (*ReminderResult, error) {
	if days <= 0 {
		days = e.config.Daemon.ReminderDays
	}
	stale, err := e.store.ListLearnedOverDays(days)
	if err != nil {
		return nil, err
	}

	reminders := make([]notify.Reminder, 0, len(stale))
	for _, p := range stale {
		w, err := e.store.GetWord(p.WordID)
		if err != nil {
			return nil, err
		}
		if w == nil {
			continue
		}
		reminders = append(reminders, notify.Reminder{
			WordID:        w.ID,
			Kanji:         w.Kanji,
			Romaji:        w.Romaji,
			Vietnamese:    w.Vietnamese,
			LastStudiedAt: p.LastStudiedAt,
		})
	}

	if err := e.notifier.NotifyStaleWords(ctx, reminders, days); err != nil {
		return nil, fmt.Errorf("review reminder: %w", err)
	}
	return &ReminderResult{Days: days, Words: len(reminders)}, nil
}
