package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/listening"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubCompleter struct{ response string }

func (s *stubCompleter) Complete(context.Context, string, float64) (string, error) {
	return s.response, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (stubEmbedder) Model() string { return "stub" }

type stubTranscripts struct{}

func (stubTranscripts) Transcript(context.Context, string, []string) ([]listening.Entry, error) {
	return nil, listening.ErrTranscriptNotFound
}

type testServer struct {
	srv       *server
	session   *mcp.ClientSession
	completer *stubCompleter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	cfg := storage.DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Listening.DataDir = filepath.Join(dir, "data")
	cfg.Notify.Enabled = false

	completer := &stubCompleter{}
	engine, err := portal.NewEngine(portal.EngineConfig{
		Config:      cfg,
		Completer:   completer,
		Embedder:    stubEmbedder{},
		Transcripts: stubTranscripts{},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(func() { engine.Close() })

	srv := newServer(engine)

	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	ss, err := srv.mcp.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { cs.Close() })

	return &testServer{srv: srv, session: cs, completer: completer}
}

func (ts *testServer) call(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := ts.session.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool %s: %v", name, err)
	}
	return res
}

// resultText extracts the first text content from a tool result.
func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

// --- Protocol tests ---

func TestToolsList(t *testing.T) {
	ts := newTestServer(t)

	res, err := ts.session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}

	names := make(map[string]bool)
	for _, tool := range res.Tools {
		names[tool.Name] = true
		if tool.InputSchema == nil {
			t.Errorf("tool %s has no input schema", tool.Name)
		}
	}
	for _, want := range []string{"words_list", "word_create", "group_stats", "review_record", "words_generate", "listening_search", "listening_process", "poll_now"} {
		if !names[want] {
			t.Errorf("missing tool %s", want)
		}
	}
}

// --- Tool tests ---

func TestWordCreateAndList(t *testing.T) {
	ts := newTestServer(t)

	res := ts.call(t, "word_create", map[string]any{
		"kanji": "水", "romaji": "mizu", "vietnamese": "nước", "jlpt_level": "N5",
	})
	if res.IsError {
		t.Fatalf("word_create error: %s", resultText(t, res))
	}
	var word portal.Word
	if err := json.Unmarshal([]byte(resultText(t, res)), &word); err != nil {
		t.Fatalf("decode word: %v", err)
	}
	if word.ID == 0 || word.JLPTLevel == nil || *word.JLPTLevel != "N5" {
		t.Errorf("unexpected word: %+v", word)
	}

	res = ts.call(t, "words_list", map[string]any{"search": "mizu"})
	var page portal.Page[portal.Word]
	if err := json.Unmarshal([]byte(resultText(t, res)), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 1 || page.Page != 1 || page.PerPage != 10 {
		t.Errorf("unexpected page: %+v", page)
	}
}

func TestWordGet_NotFound(t *testing.T) {
	ts := newTestServer(t)

	res := ts.call(t, "word_get", map[string]any{"word_id": 42})
	if !res.IsError {
		t.Fatal("expected an error result")
	}
	if !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("unexpected error: %s", resultText(t, res))
	}
}

func TestWordsGenerateSave(t *testing.T) {
	ts := newTestServer(t)
	ts.completer.response = `[{"kanji":"駅","romaji":"eki","vietnamese":"nhà ga","jlpt_level":"N5","parts":[{"kanji":"駅","romaji":["e","ki"]}]}]`

	res := ts.call(t, "words_generate", map[string]any{"thematic_category": "travel", "save": true})
	if res.IsError {
		t.Fatalf("words_generate error: %s", resultText(t, res))
	}
	var imported portal.ImportResult
	if err := json.Unmarshal([]byte(resultText(t, res)), &imported); err != nil {
		t.Fatalf("decode import: %v", err)
	}
	if imported.Group.Name != "travel" || len(imported.ImportedWords) != 1 {
		t.Errorf("unexpected import: %+v", imported)
	}

	res = ts.call(t, "group_stats", map[string]any{})
	var stats portal.AllGroupsStats
	if err := json.Unmarshal([]byte(resultText(t, res)), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if len(stats.Groups) != 1 || stats.Overall.TotalWords != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestDashboard_NoSessions(t *testing.T) {
	ts := newTestServer(t)

	res := ts.call(t, "dashboard", map[string]any{})
	if res.IsError {
		t.Fatalf("dashboard error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), `"last_session":null`) {
		t.Errorf("unexpected dashboard: %s", resultText(t, res))
	}
}

func TestListeningProcess_TranscriptMissing(t *testing.T) {
	ts := newTestServer(t)

	res := ts.call(t, "listening_process", map[string]any{"url": "https://www.youtube.com/watch?v=abcdefghijk"})
	if !res.IsError {
		t.Fatalf("expected an error result, got %s", resultText(t, res))
	}
}

func TestPollNow_Disabled(t *testing.T) {
	ts := newTestServer(t)

	res := ts.call(t, "poll_now", map[string]any{})
	if !res.IsError || !strings.Contains(resultText(t, res), "polling is not enabled") {
		t.Errorf("unexpected result: %s", resultText(t, res))
	}
}

func TestPollNow_NoChannels(t *testing.T) {
	ts := newTestServer(t)
	ts.srv.poller = newPoller(ts.srv.engine, 0)

	res := ts.call(t, "poll_now", map[string]any{})
	if res.IsError {
		t.Fatalf("poll_now error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), `"channels":0`) {
		t.Errorf("unexpected result: %s", resultText(t, res))
	}
}
