package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
)

func samplePage() *portal.Page[portal.Word] {
	n5 := "N5"
	return &portal.Page[portal.Word]{
		Items: []portal.Word{
			{ID: 1, Kanji: "山", Romaji: "yama", Vietnamese: "núi", JLPTLevel: &n5,
				Parts: []portal.Part{{Kanji: "山", Romaji: []string{"ya", "ma"}}}},
			{ID: 2, Kanji: "川", Romaji: "kawa", Vietnamese: "sông"},
		},
		Total:   12,
		Page:    1,
		PerPage: 2,
	}
}

func TestOutputWords_JSON(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatJSON, &out, &errBuf)

	if err := f.OutputWords(samplePage()); err != nil {
		t.Fatalf("OutputWords failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(out.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if decoded["total"] != float64(12) || decoded["per_page"] != float64(2) {
		t.Errorf("unexpected page fields: %v", decoded)
	}
	items := decoded["items"].([]any)
	second := items[1].(map[string]any)
	if v, ok := second["jlpt_level"]; !ok || v != nil {
		t.Errorf("jlpt_level should be present and null, got %v", second)
	}
}

func TestOutputWords_Text(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatText, &out, &errBuf)

	if err := f.OutputWords(samplePage()); err != nil {
		t.Fatalf("OutputWords failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "id=1\tkanji=山\tromaji=yama\tvietnamese=núi\tlevel=N5") {
		t.Errorf("missing first word in output: %s", got)
	}
	if !strings.Contains(got, "id=2\tkanji=川\tromaji=kawa\tvietnamese=sông\tlevel=\n") {
		t.Errorf("missing second word in output: %s", got)
	}
}

func TestOutputWords_Human(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	if err := f.OutputWords(samplePage()); err != nil {
		t.Fatalf("OutputWords failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"page 1, 2 of 12", "山 (yama) [N5]", "山=ya-ma", "川 (kawa)\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestOutputWords_Human_Empty(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	if err := f.OutputWords(&portal.Page[portal.Word]{}); err != nil {
		t.Fatalf("OutputWords failed: %v", err)
	}
	if !strings.Contains(out.String(), "No words") {
		t.Errorf("expected empty message, got: %q", out.String())
	}
}

func TestOutputAllGroupsStats_Human(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	stats := &portal.AllGroupsStats{
		Groups: []portal.GroupStatsRow{{
			GroupID:    1,
			Name:       "Core Verbs",
			GroupStats: portal.GroupStats{TotalWords: 4, LearnedWords: 2, LearningWords: 1, ProgressPercentage: 50},
		}},
		Overall: portal.OverallStats{TotalWords: 4, LearnedWords: 2, OverallProgress: 50},
	}
	if err := f.OutputAllGroupsStats(stats); err != nil {
		t.Fatalf("OutputAllGroupsStats failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "[##########..........]  50.0%") {
		t.Errorf("missing progress bar in output: %s", got)
	}
	if !strings.Contains(got, "Overall: 50.0% of 4 words learned") {
		t.Errorf("missing overall line in output: %s", got)
	}
}

func TestOutputAllGroupsStats_JSONFlattensStats(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatJSON, &out, &errBuf)

	stats := &portal.AllGroupsStats{Groups: []portal.GroupStatsRow{{GroupID: 3, Name: "x", GroupStats: portal.GroupStats{TotalWords: 2}}}}
	if err := f.OutputAllGroupsStats(stats); err != nil {
		t.Fatalf("OutputAllGroupsStats failed: %v", err)
	}
	if !strings.Contains(out.String(), `"group_id":3,"name":"x","total_words":2`) {
		t.Errorf("group stats should be flattened: %s", out.String())
	}
}

func TestOutputImportResult_Human(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	res := &portal.ImportResult{
		Message: "Successfully imported 3 words",
		ImportedWords: []portal.ImportedWord{
			{ID: 1, Status: "new"}, {ID: 2, Status: "existed"}, {ID: 3, Status: "new"},
		},
		Group: portal.Group{ID: 9, Name: "travel", WordsCount: 3},
	}
	if err := f.OutputImportResult(res); err != nil {
		t.Fatalf("OutputImportResult failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, `Successfully imported 3 words into "travel"`) || !strings.Contains(got, "2 new, 1 already known") {
		t.Errorf("unexpected output: %s", got)
	}
}

func TestOutputGeneratedWords_HumanFallback(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	res := &portal.GeneratedWords{
		Strategy: "fallback",
		Words:    []portal.GeneratedWord{{Kanji: "水", Romaji: "mizu", Vietnamese: "nước", JLPTLevel: "N5"}},
	}
	if err := f.OutputGeneratedWords(res); err != nil {
		t.Fatalf("OutputGeneratedWords failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "fallback list") || !strings.Contains(got, "水 (mizu) nước [N5]") {
		t.Errorf("unexpected output: %s", got)
	}
}

func TestOutputRunResult_Text(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatText, &out, &errBuf)

	run := &portal.RunResult{
		VideoID: "abcdefghijk",
		Lines:   40,
		Sections: []portal.SectionResult{
			{Section: 1, Indexed: 4},
			{Section: 2, Error: "completion failed"},
		},
	}
	if err := f.OutputRunResult(run); err != nil {
		t.Fatalf("OutputRunResult failed: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "video=abcdefghijk\tsection=1\tindexed=4\terror=\n") {
		t.Errorf("missing section 1: %s", got)
	}
	if !strings.Contains(got, "section=2\tindexed=0\terror=completion failed") {
		t.Errorf("missing section 2: %s", got)
	}
}

func TestOutputQuestions_Human(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	qs := []portal.Question{{
		Conversation:  "男：駅はどこですか。",
		Question:      "駅はどこですか。",
		Options:       []string{"左", "右"},
		CorrectAnswer: "2",
	}}
	if err := f.OutputQuestions(qs); err != nil {
		t.Fatalf("OutputQuestions failed: %v", err)
	}

	got := out.String()
	for _, want := range []string{"Q: 駅はどこですか。", "  2. 右", "Answer: 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in output:\n%s", want, got)
		}
	}
}

func TestOutputIngestResults_Text(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatText, &out, &errBuf)

	results := []*portal.IngestResult{{
		Channel: "UC123",
		Skipped: []string{"a", "b"},
		Runs:    []*portal.RunResult{{VideoID: "c"}},
		Failed:  []string{},
	}}
	if err := f.OutputIngestResults(results); err != nil {
		t.Fatalf("OutputIngestResults failed: %v", err)
	}
	if got := out.String(); got != "channel=UC123\tprocessed=1\tskipped=2\tfailed=0\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestUnknownFormat(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(Format("xml"), &out, &errBuf)

	err := f.OutputGroups(&portal.Page[portal.Group]{})
	if err == nil || !strings.Contains(err.Error(), "unknown format: xml") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestWarning(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	f.Warning("something went %s", "wrong")

	got := errBuf.String()
	if !strings.Contains(got, "Warning: something went wrong") {
		t.Errorf("expected warning on stderr, got: %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("expected no stdout output, got: %q", out.String())
	}
}

func TestError(t *testing.T) {
	var out, errBuf bytes.Buffer
	f := NewFormatterWithWriters(FormatHuman, &out, &errBuf)

	f.Error("failed: %d", 42)

	got := errBuf.String()
	if !strings.Contains(got, "failed: 42") {
		t.Errorf("expected error on stderr, got: %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("expected no stdout output, got: %q", out.String())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string", "hello", 10, "hello"},
		{"exact length", "hello", 5, "hello"},
		{"over length", "hello world", 5, "hello..."},
		{"with whitespace", "  hello  ", 10, "hello"},
		{"multibyte", "日本語の勉強", 3, "日本語..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			if got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
