package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// server is the portal MCP server.
type server struct {
	engine *portal.Engine
	poller *poller // non-nil when --poll is enabled
	mcp    *mcp.Server
}

func newServer(engine *portal.Engine) *server {
	s := &server{engine: engine}
	s.mcp = mcp.NewServer(&mcp.Implementation{Name: "portal", Version: "1.0.0"}, nil)
	s.registerTools()
	return s
}

// run serves MCP over stdin/stdout until the client disconnects or ctx ends.
func (s *server) run(ctx context.Context) error {
	log.Printf("portal-mcp starting")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func (s *server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "words_list",
		Description: "List vocabulary words, optionally filtered by a search string. Returns kanji, romaji, Vietnamese meaning, per-character readings and JLPT level.",
	}, s.handleWordsList)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "word_get",
		Description: "Get a single vocabulary word by ID.",
	}, s.handleWordGet)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "word_create",
		Description: "Add a vocabulary word.",
	}, s.handleWordCreate)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "groups_list",
		Description: "List word groups with their word counts.",
	}, s.handleGroupsList)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "group_words",
		Description: "List the words of a group.",
	}, s.handleGroupWords)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "group_stats",
		Description: "Learning progress of one group, or of every group plus overall totals when group_id is omitted.",
	}, s.handleGroupStats)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "review_record",
		Description: "Record a learner's answer for a word in a study session and advance the word's progress status.",
	}, s.handleReviewRecord)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "progress_by_status",
		Description: "List progress rows of words in a status (new, learning, learned).",
	}, s.handleProgressByStatus)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "dashboard",
		Description: "Study overview: word, group and activity totals, session count, average score and the latest session.",
	}, s.handleDashboard)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "words_generate",
		Description: "Generate Japanese vocabulary for a theme with the language model. Set save to import the words into a new group.",
	}, s.handleWordsGenerate)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "words_import",
		Description: "Import words into a new group named after the theme. Words already stored at the same level are reused.",
	}, s.handleWordsImport)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "listening_search",
		Description: "Find indexed JLPT listening questions similar to a conversation.",
	}, s.handleListeningSearch)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "listening_generate",
		Description: "Write a new JLPT listening question for a conversation, modelled on similar indexed questions.",
	}, s.handleListeningGenerate)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "listening_process",
		Description: "Fetch a YouTube JLPT listening video's captions, split them into problem sections, structure them with the model and index the questions.",
	}, s.handleListeningProcess)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reminders_send",
		Description: "Send a review reminder for learned words that have not been studied recently.",
	}, s.handleRemindersSend)
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "poll_now",
		Description: "Trigger an immediate ingest of the configured YouTube channels. Only available when the server is running with --poll.",
	}, s.handlePollNow)
}

// --- tool handlers ---

func (s *server) handleWordsList(_ context.Context, _ *mcp.CallToolRequest, in wordsListInput) (*mcp.CallToolResult, any, error) {
	words, err := s.engine.ListWords(pageOr(in.Page), perPageOr(in.PerPage), in.Search)
	if err != nil {
		return mcpError("%v", err)
	}
	log.Printf("words_list: %d of %d", len(words.Items), words.Total)
	return mcpJSON(words)
}

func (s *server) handleWordGet(_ context.Context, _ *mcp.CallToolRequest, in wordIDInput) (*mcp.CallToolResult, any, error) {
	word, err := s.engine.GetWord(in.WordID)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(word)
}

func (s *server) handleWordCreate(_ context.Context, _ *mcp.CallToolRequest, in wordCreateInput) (*mcp.CallToolResult, any, error) {
	w := portal.WordInput{
		Kanji:      in.Kanji,
		Romaji:     in.Romaji,
		Vietnamese: in.Vietnamese,
		Parts:      in.Parts,
	}
	if in.JLPTLevel != "" {
		w.JLPTLevel = &in.JLPTLevel
	}
	word, err := s.engine.CreateWord(w)
	if err != nil {
		return mcpError("%v", err)
	}
	log.Printf("word_create: %d %s", word.ID, word.Kanji)
	return mcpJSON(word)
}

func (s *server) handleGroupsList(_ context.Context, _ *mcp.CallToolRequest, in pageInput) (*mcp.CallToolResult, any, error) {
	groups, err := s.engine.ListGroups(pageOr(in.Page), perPageOr(in.PerPage))
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(groups)
}

func (s *server) handleGroupWords(_ context.Context, _ *mcp.CallToolRequest, in groupWordsInput) (*mcp.CallToolResult, any, error) {
	words, err := s.engine.GetGroupWords(in.GroupID, pageOr(in.Page), perPageOr(in.PerPage))
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(words)
}

func (s *server) handleGroupStats(_ context.Context, _ *mcp.CallToolRequest, in groupStatsInput) (*mcp.CallToolResult, any, error) {
	if in.GroupID == 0 {
		stats, err := s.engine.AllGroupsStats()
		if err != nil {
			return mcpError("%v", err)
		}
		return mcpJSON(stats)
	}
	stats, err := s.engine.GroupStats(in.GroupID)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(stats)
}

func (s *server) handleReviewRecord(_ context.Context, _ *mcp.CallToolRequest, in reviewInput) (*mcp.CallToolResult, any, error) {
	res, err := s.engine.RecordReview(in.SessionID, in.WordID, in.Correct)
	if err != nil {
		return mcpError("%v", err)
	}
	log.Printf("review_record: session %d word %d -> %s", in.SessionID, in.WordID, res.Progress.Status)
	return mcpJSON(res)
}

func (s *server) handleProgressByStatus(_ context.Context, _ *mcp.CallToolRequest, in progressStatusInput) (*mcp.CallToolResult, any, error) {
	rows, err := s.engine.ListProgressByStatus(in.Status)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(rows)
}

type dashboardResult struct {
	QuickStats  *portal.QuickStats    `json:"quick_stats"`
	Progress    *portal.StudyProgress `json:"study_progress"`
	LastSession *portal.StudySession  `json:"last_session"`
}

func (s *server) handleDashboard(_ context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	var out dashboardResult
	var err error
	if out.QuickStats, err = s.engine.QuickStats(); err != nil {
		return mcpError("%v", err)
	}
	if out.Progress, err = s.engine.StudyProgress(); err != nil {
		return mcpError("%v", err)
	}
	out.LastSession, err = s.engine.LastStudySession()
	if err != nil && !errors.Is(err, portal.ErrNotFound) {
		return mcpError("%v", err)
	}
	return mcpJSON(out)
}

func (s *server) handleWordsGenerate(ctx context.Context, _ *mcp.CallToolRequest, in generateWordsInput) (*mcp.CallToolResult, any, error) {
	res, err := s.engine.GenerateWords(ctx, in.ThematicCategory, in.JLPTLevel)
	if err != nil {
		return mcpError("%v", err)
	}
	log.Printf("words_generate: %d words for %q (%s)", len(res.Words), in.ThematicCategory, res.Strategy)
	if !in.Save {
		return mcpJSON(res)
	}

	imported, err := s.engine.ImportWords(res.Words, in.ThematicCategory)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(imported)
}

func (s *server) handleWordsImport(_ context.Context, _ *mcp.CallToolRequest, in importWordsInput) (*mcp.CallToolResult, any, error) {
	res, err := s.engine.ImportWords(in.Words, in.ThematicCategory)
	if err != nil {
		return mcpError("%v", err)
	}
	log.Printf("words_import: %s", res.Message)
	return mcpJSON(res)
}

func (s *server) handleListeningSearch(ctx context.Context, _ *mcp.CallToolRequest, in conversationInput) (*mcp.CallToolResult, any, error) {
	qs, err := s.engine.SearchQuestions(ctx, in.Conversation, in.Limit)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(qs)
}

func (s *server) handleListeningGenerate(ctx context.Context, _ *mcp.CallToolRequest, in conversationInput) (*mcp.CallToolResult, any, error) {
	q, ok, err := s.engine.GenerateQuestion(ctx, in.Conversation)
	if err != nil {
		return mcpError("%v", err)
	}
	if !ok {
		return mcpError("could not generate question")
	}
	return mcpJSON(q)
}

func (s *server) handleListeningProcess(ctx context.Context, _ *mcp.CallToolRequest, in videoInput) (*mcp.CallToolResult, any, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	res, err := s.engine.ProcessVideo(ctx, in.URL)
	if err != nil {
		return mcpError("%v", err)
	}
	log.Printf("listening_process: %s, %d sections", res.VideoID, len(res.Sections))
	return mcpJSON(res)
}

func (s *server) handleRemindersSend(ctx context.Context, _ *mcp.CallToolRequest, in remindInput) (*mcp.CallToolResult, any, error) {
	res, err := s.engine.SendReviewReminders(ctx, in.Days)
	if err != nil {
		return mcpError("%v", err)
	}
	return mcpJSON(res)
}

func (s *server) handlePollNow(ctx context.Context, _ *mcp.CallToolRequest, _ emptyInput) (*mcp.CallToolResult, any, error) {
	if s.poller == nil {
		return mcpError("polling is not enabled (start with --poll)")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()

	result, err := s.poller.poll(ctx)
	if err != nil {
		return mcpError("poll failed: %v", err)
	}
	return mcpJSON(result)
}

func pageOr(p int) int {
	if p <= 0 {
		return 1
	}
	return p
}

func perPageOr(n int) int {
	if n <= 0 {
		return 10
	}
	return n
}

func mcpJSON(data any) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcpError("marshal response: %v", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func mcpError(format string, args ...any) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: "+format, args...)}},
		IsError: true,
	}, nil, nil
}
