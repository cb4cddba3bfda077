package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	portal "github.com/HuyDinhdmm/Japanese-language-portal"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatText  Format = "text"
	FormatHuman Format = "human"
)

type Formatter struct {
	format Format
	out    io.Writer
	err    io.Writer
}

// NewFormatter creates a new output formatter
func NewFormatter(format Format) *Formatter {
	return &Formatter{
		format: format,
		out:    os.Stdout,
		err:    os.Stderr,
	}
}

// NewFormatterWithWriters creates a formatter with custom output writers for testability
func NewFormatterWithWriters(format Format, out, errW io.Writer) *Formatter {
	return &Formatter{
		format: format,
		out:    out,
		err:    errW,
	}
}

// OutputJSON writes v as JSON regardless of the configured format. Commands
// without a dedicated layout use it.
func (f *Formatter) OutputJSON(v any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readings(parts []portal.Part) string {
	var syl []string
	for _, p := range parts {
		syl = append(syl, p.Kanji+"="+strings.Join(p.Romaji, "-"))
	}
	return strings.Join(syl, " ")
}

func level(l *string) string {
	if l == nil {
		return ""
	}
	return *l
}

// OutputWords outputs a page of words
func (f *Formatter) OutputWords(page *portal.Page[portal.Word]) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(page)
	case FormatText:
		for _, w := range page.Items {
			fmt.Fprintf(f.out, "id=%d\tkanji=%s\tromaji=%s\tvietnamese=%s\tlevel=%s\n",
				w.ID, w.Kanji, w.Romaji, w.Vietnamese, level(w.JLPTLevel))
		}
		return nil
	case FormatHuman:
		if len(page.Items) == 0 {
			fmt.Fprintln(f.out, "No words")
			return nil
		}
		fmt.Fprintf(f.out, "Words (page %d, %d of %d):\n\n", page.Page, len(page.Items), page.Total)
		for _, w := range page.Items {
			lv := level(w.JLPTLevel)
			if lv != "" {
				lv = " [" + lv + "]"
			}
			fmt.Fprintf(f.out, "%4d  %s (%s)%s\n", w.ID, w.Kanji, w.Romaji, lv)
			fmt.Fprintf(f.out, "      %s\n", truncate(w.Vietnamese, 60))
			if len(w.Parts) > 0 {
				fmt.Fprintf(f.out, "      %s\n", readings(w.Parts))
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputGroups outputs a page of groups
func (f *Formatter) OutputGroups(page *portal.Page[portal.Group]) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(page)
	case FormatText:
		for _, g := range page.Items {
			fmt.Fprintf(f.out, "id=%d\tname=%s\twords=%d\n", g.ID, g.Name, g.WordsCount)
		}
		return nil
	case FormatHuman:
		if len(page.Items) == 0 {
			fmt.Fprintln(f.out, "No groups")
			return nil
		}
		for _, g := range page.Items {
			fmt.Fprintf(f.out, "%4d  %s (%d words)\n", g.ID, g.Name, g.WordsCount)
			if g.Description != "" {
				fmt.Fprintf(f.out, "      %s\n", truncate(g.Description, 70))
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputAllGroupsStats outputs per-group learning progress
func (f *Formatter) OutputAllGroupsStats(stats *portal.AllGroupsStats) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(stats)
	case FormatText:
		for _, g := range stats.Groups {
			fmt.Fprintf(f.out, "group=%d\tname=%s\ttotal=%d\tlearned=%d\tlearning=%d\tnew=%d\tprogress=%.1f\tlast_studied=%s\n",
				g.GroupID, g.Name, g.TotalWords, g.LearnedWords, g.LearningWords, g.NewWords,
				g.ProgressPercentage, formatTime(g.LastStudied))
		}
		o := stats.Overall
		fmt.Fprintf(f.out, "overall\ttotal=%d\tlearned=%d\tlearning=%d\tnew=%d\tprogress=%.1f\n",
			o.TotalWords, o.LearnedWords, o.LearningWords, o.NewWords, o.OverallProgress)
		return nil
	case FormatHuman:
		for _, g := range stats.Groups {
			fmt.Fprintf(f.out, "%-24s %s %5.1f%%  (%d/%d learned, %d learning)\n",
				truncate(g.Name, 24), bar(g.ProgressPercentage, 20), g.ProgressPercentage,
				g.LearnedWords, g.TotalWords, g.LearningWords)
		}
		fmt.Fprintln(f.out, strings.Repeat("=", 70))
		o := stats.Overall
		fmt.Fprintf(f.out, "Overall: %.1f%% of %d words learned\n", o.OverallProgress, o.TotalWords)
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

func bar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}

// OutputGeneratedWords outputs words proposed by the model
func (f *Formatter) OutputGeneratedWords(res *portal.GeneratedWords) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(res)
	case FormatText:
		for _, w := range res.Words {
			fmt.Fprintf(f.out, "kanji=%s\tromaji=%s\tvietnamese=%s\tlevel=%s\tstrategy=%s\n",
				w.Kanji, w.Romaji, w.Vietnamese, w.JLPTLevel, res.Strategy)
		}
		return nil
	case FormatHuman:
		if res.Strategy == "fallback" {
			fmt.Fprintln(f.out, "⚠️  Model output could not be parsed, showing the fallback list")
		}
		for _, w := range res.Words {
			fmt.Fprintf(f.out, "  • %s (%s) %s [%s]\n", w.Kanji, w.Romaji, w.Vietnamese, w.JLPTLevel)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputImportResult outputs the words written by an import
func (f *Formatter) OutputImportResult(res *portal.ImportResult) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(res)
	case FormatText:
		for _, w := range res.ImportedWords {
			fmt.Fprintf(f.out, "id=%d\tkanji=%s\tlevel=%s\tstatus=%s\n", w.ID, w.Kanji, w.JLPTLevel, w.Status)
		}
		fmt.Fprintf(f.out, "group=%d\tname=%s\twords=%d\n", res.Group.ID, res.Group.Name, res.Group.WordsCount)
		return nil
	case FormatHuman:
		fresh := 0
		for _, w := range res.ImportedWords {
			if w.Status == "new" {
				fresh++
			}
		}
		fmt.Fprintf(f.out, "%s into %q\n", res.Message, res.Group.Name)
		fmt.Fprintf(f.out, "  %d new, %d already known\n", fresh, len(res.ImportedWords)-fresh)
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputRunResult outputs the per-section outcome of a pipeline run
func (f *Formatter) OutputRunResult(run *portal.RunResult) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(run)
	case FormatText:
		for _, s := range run.Sections {
			fmt.Fprintf(f.out, "video=%s\tsection=%d\tindexed=%d\terror=%s\n", run.VideoID, s.Section, s.Indexed, s.Error)
		}
		return nil
	case FormatHuman:
		fmt.Fprintf(f.out, "🎧 %s: %d transcript lines, %d sections\n", run.VideoID, run.Lines, len(run.Sections))
		for _, s := range run.Sections {
			if s.Error != "" {
				fmt.Fprintf(f.out, "  ⚠️  section %d: %s\n", s.Section, s.Error)
				continue
			}
			fmt.Fprintf(f.out, "  section %d: %d questions indexed\n", s.Section, s.Indexed)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputIngestResults outputs channel ingest summaries
func (f *Formatter) OutputIngestResults(results []*portal.IngestResult) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(results)
	case FormatText:
		for _, r := range results {
			fmt.Fprintf(f.out, "channel=%s\tprocessed=%d\tskipped=%d\tfailed=%d\n",
				r.Channel, len(r.Runs), len(r.Skipped), len(r.Failed))
		}
		return nil
	case FormatHuman:
		if len(results) == 0 {
			fmt.Fprintln(f.out, "No channels configured")
			return nil
		}
		for _, r := range results {
			fmt.Fprintf(f.out, "📺 %s: %d processed, %d already fetched\n", r.Channel, len(r.Runs), len(r.Skipped))
			for _, id := range r.Failed {
				fmt.Fprintf(f.out, "  ⚠️  %s failed\n", id)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputQuestions outputs listening questions
func (f *Formatter) OutputQuestions(questions []portal.Question) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(questions)
	case FormatText:
		for i, q := range questions {
			fmt.Fprintf(f.out, "n=%d\tquestion=%s\toptions=%s\tanswer=%s\n",
				i+1, q.Question, strings.Join(q.Options, "; "), q.CorrectAnswer)
		}
		return nil
	case FormatHuman:
		if len(questions) == 0 {
			fmt.Fprintln(f.out, "No questions")
			return nil
		}
		for _, q := range questions {
			fmt.Fprintln(f.out, strings.Repeat("-", 70))
			if q.Introduction != "" {
				fmt.Fprintf(f.out, "%s\n\n", q.Introduction)
			}
			fmt.Fprintf(f.out, "%s\n\n", q.Conversation)
			fmt.Fprintf(f.out, "Q: %s\n", q.Question)
			for i, o := range q.Options {
				fmt.Fprintf(f.out, "  %d. %s\n", i+1, o)
			}
			if q.CorrectAnswer != "" {
				fmt.Fprintf(f.out, "Answer: %s\n", q.CorrectAnswer)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// OutputDiagnostics outputs database record counts
func (f *Formatter) OutputDiagnostics(d *portal.Diagnostics) error {
	switch f.format {
	case FormatJSON:
		return json.NewEncoder(f.out).Encode(d)
	case FormatText:
		fmt.Fprintf(f.out, "words=%d\n", d.WordsCount)
		fmt.Fprintf(f.out, "word_groups=%d\n", d.WordGroupsCount)
		fmt.Fprintf(f.out, "word_progress=%d\n", d.WordProgressCount)
		fmt.Fprintf(f.out, "groups=%d\n", d.GroupsCount)
		return nil
	case FormatHuman:
		fmt.Fprintf(f.out, "Words: %d\nMemberships: %d\nProgress rows: %d\nGroups: %d\n",
			d.WordsCount, d.WordGroupsCount, d.WordProgressCount, d.GroupsCount)
		for _, g := range d.Groups {
			fmt.Fprintf(f.out, "  %4d  %s (%d words)\n", g.ID, g.Name, g.WordsCount)
		}
		return nil
	}
	return fmt.Errorf("unknown format: %s", f.format)
}

// Error outputs an error message to stderr
func (f *Formatter) Error(format string, args ...interface{}) {
	fmt.Fprintf(f.err, format+"\n", args...)
}

// Warning outputs a warning message to stderr
func (f *Formatter) Warning(format string, args ...interface{}) {
	fmt.Fprintf(f.err, "Warning: "+format+"\n", args...)
}

// formatTime formats a time pointer for output
func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

// truncate truncates a string to maxLen runes
func truncate(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
