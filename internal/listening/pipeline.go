// Package listening turns JLPT listening-test videos into indexed practice
// questions. Each stage reads the previous stage's artifact under the data
// directory and writes its own:
//
//	transcripts/{id}.txt
//	split/{id}/{id}_section{N}.txt
//	questions/{id}_section{N}_questions.txt
package listening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
	"github.com/HuyDinhdmm/Japanese-language-portal/internal/vectorstore"
)

// QuestionModel is the completion side of the pipeline.
type QuestionModel interface {
	ExtractQuestions(ctx context.Context, transcript string) (string, error)
	GenerateQuestion(ctx context.Context, conversation string) (string, error)
}

// Index stores embedded question documents.
type Index interface {
	Upsert(ctx context.Context, id, document string, metadata map[string]any) error
	Query(ctx context.Context, text string, k int) ([]vectorstore.Match, error)
}

// Pipeline runs the listening stages against one data directory.
type Pipeline struct {
	dataDir       string
	languages     []string
	searchResults int
	source        TranscriptSource
	model         QuestionModel
	index         Index
}

// Options configures a Pipeline.
type Options struct {
	DataDir       string
	Languages     []string
	SearchResults int
}

func NewPipeline(source TranscriptSource, model QuestionModel, index Index, opts Options) *Pipeline {
	if opts.DataDir == "" {
		opts.DataDir = "./data"
	}
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"ja", "en"}
	}
	if opts.SearchResults <= 0 {
		opts.SearchResults = 3
	}
	return &Pipeline{
		dataDir:       opts.DataDir,
		languages:     opts.Languages,
		searchResults: opts.SearchResults,
		source:        source,
		model:         model,
		index:         index,
	}
}

func (p *Pipeline) TranscriptPath(videoID string) string {
	return filepath.Join(p.dataDir, "transcripts", videoID+".txt")
}

func (p *Pipeline) SectionPath(videoID string, section int) string {
	return filepath.Join(p.dataDir, "split", videoID, fmt.Sprintf("%s_section%d.txt", videoID, section))
}

func (p *Pipeline) QuestionsPath(videoID string, section int) string {
	return filepath.Join(p.dataDir, "questions", fmt.Sprintf("%s_section%d_questions.txt", videoID, section))
}

func checkVideoID(videoID string) error {
	if !ValidVideoID(videoID) {
		return domain.NewValidationError("video_id", "invalid video id")
	}
	return nil
}

func writeArtifact(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readArtifact returns ErrNotFound when the previous stage has not run.
func readArtifact(path, what string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.NotFoundf("%s file not found", what)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// FetchResult is the outcome of the fetch stage.
type FetchResult struct {
	VideoID string   `json:"video_id"`
	Lines   []string `json:"transcript"`
	Path    string   `json:"path"`
}

// Fetch downloads the transcript and writes one line per caption entry.
func (p *Pipeline) Fetch(ctx context.Context, videoID string) (*FetchResult, error) {
	if err := checkVideoID(videoID); err != nil {
		return nil, err
	}
	entries, err := p.source.Transcript(ctx, videoID, p.languages)
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(entries))
	var b strings.Builder
	for i, e := range entries {
		lines[i] = e.Text
		b.WriteString(e.Text)
		b.WriteByte('\n')
	}

	path := p.TranscriptPath(videoID)
	if err := writeArtifact(path, b.String()); err != nil {
		return nil, err
	}
	log.Printf("portal: saved transcript %s (%d lines)", videoID, len(lines))
	return &FetchResult{VideoID: videoID, Lines: lines, Path: path}, nil
}

// SplitResult lists the section artifacts written by Split.
type SplitResult struct {
	VideoID  string   `json:"video_id"`
	Sections []int    `json:"sections"`
	Paths    []string `json:"sections_saved"`
}

// Split writes one artifact per numbered section of the saved transcript.
func (p *Pipeline) Split(videoID string) (*SplitResult, error) {
	if err := checkVideoID(videoID); err != nil {
		return nil, err
	}
	text, err := readArtifact(p.TranscriptPath(videoID), "transcript")
	if err != nil {
		return nil, err
	}

	res := &SplitResult{VideoID: videoID, Sections: []int{}, Paths: []string{}}
	for _, s := range SplitSections(text) {
		path := p.SectionPath(videoID, s.Number)
		if err := writeArtifact(path, s.Text); err != nil {
			return nil, err
		}
		res.Sections = append(res.Sections, s.Number)
		res.Paths = append(res.Paths, path)
	}
	return res, nil
}

// StructureResult holds the raw completion saved for a section.
type StructureResult struct {
	Path    string `json:"questions_saved"`
	Content string `json:"content"`
}

// Structure asks the model to rewrite a section as question blocks and saves
// the completion verbatim.
func (p *Pipeline) Structure(ctx context.Context, videoID string, section int) (*StructureResult, error) {
	if err := checkVideoID(videoID); err != nil {
		return nil, err
	}
	text, err := readArtifact(p.SectionPath(videoID, section), "section")
	if err != nil {
		return nil, err
	}

	out, err := p.model.ExtractQuestions(ctx, CleanText(text))
	if err != nil {
		return nil, err
	}

	path := p.QuestionsPath(videoID, section)
	if err := writeArtifact(path, out); err != nil {
		return nil, err
	}
	return &StructureResult{Path: path, Content: out}, nil
}

// Index parses a section's question blocks and upserts each into the index.
func (p *Pipeline) Index(ctx context.Context, videoID string, section int) (int, error) {
	if err := checkVideoID(videoID); err != nil {
		return 0, err
	}
	text, err := readArtifact(p.QuestionsPath(videoID, section), "questions")
	if err != nil {
		return 0, err
	}

	questions := ParseQuestions(text)
	if len(questions) == 0 {
		return 0, fmt.Errorf("%w: %w", domain.ErrParse, domain.NewValidationError("questions", "no questions found in file"))
	}

	for idx, q := range questions {
		full, err := json.Marshal(q)
		if err != nil {
			return idx, fmt.Errorf("failed to encode question: %w", err)
		}
		id := fmt.Sprintf("%s_%d_%d", videoID, section, idx)
		meta := map[string]any{
			"video_id":       videoID,
			"section":        section,
			"question_index": idx,
			"full_structure": string(full),
		}
		if err := p.index.Upsert(ctx, id, q.Document(), meta); err != nil {
			return idx, fmt.Errorf("failed to index question %s: %w", id, err)
		}
	}
	log.Printf("portal: indexed %d questions from %s section %d", len(questions), videoID, section)
	return len(questions), nil
}

// Search returns up to k stored questions most similar to conversation. A
// non-positive k uses the configured default.
func (p *Pipeline) Search(ctx context.Context, conversation string, k int) ([]Question, error) {
	if k <= 0 {
		k = p.searchResults
	}
	matches, err := p.index.Query(ctx, conversation, k)
	if err != nil {
		return nil, err
	}

	questions := make([]Question, 0, len(matches))
	for _, m := range matches {
		raw, _ := m.Metadata["full_structure"].(string)
		var q Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			continue
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// Generate writes a new question for conversation. It reports false when the
// completion does not hold a complete question block.
func (p *Pipeline) Generate(ctx context.Context, conversation string) (*Question, bool, error) {
	out, err := p.model.GenerateQuestion(ctx, conversation)
	if err != nil {
		return nil, false, err
	}
	q, ok := ParseGeneratedQuestion(out)
	return q, ok, nil
}

// SectionResult reports one section of a full run.
type SectionResult struct {
	Section int    `json:"section"`
	Indexed int    `json:"indexed"`
	Error   string `json:"error,omitempty"`
}

// RunResult reports a full run over one video.
type RunResult struct {
	VideoID  string          `json:"video_id"`
	Lines    int             `json:"transcript_lines"`
	Sections []SectionResult `json:"sections"`
}

// Run fetches and splits a video, then structures and indexes every section.
// A failing section is recorded and the run moves on.
func (p *Pipeline) Run(ctx context.Context, videoID string) (*RunResult, error) {
	fetched, err := p.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}
	split, err := p.Split(videoID)
	if err != nil {
		return nil, err
	}

	res := &RunResult{VideoID: videoID, Lines: len(fetched.Lines), Sections: []SectionResult{}}
	for _, n := range split.Sections {
		sr := SectionResult{Section: n}
		if _, err := p.Structure(ctx, videoID, n); err != nil {
			sr.Error = err.Error()
			log.Printf("portal: structure %s section %d failed: %v", videoID, n, err)
		} else if count, err := p.Index(ctx, videoID, n); err != nil {
			sr.Error = err.Error()
			log.Printf("portal: index %s section %d failed: %v", videoID, n, err)
		} else {
			sr.Indexed = count
		}
		res.Sections = append(res.Sections, sr)
	}
	return res, nil
}

// HasTranscript reports whether the fetch stage already ran for videoID.
func (p *Pipeline) HasTranscript(videoID string) bool {
	_, err := os.Stat(p.TranscriptPath(videoID))
	return err == nil
}
