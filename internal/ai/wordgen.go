package ai

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// levelDescriptions describe the difficulty expected at each JLPT level.
var levelDescriptions = map[string]string{
	"N5": "most basic (N5): simple vocabulary used in everyday life",
	"N4": "elementary (N4): basic to lower-intermediate vocabulary common in conversation",
	"N3": "intermediate (N3): vocabulary for learners with a solid foundation",
	"N2": "upper-intermediate (N2): fairly complex vocabulary common in writing",
	"N1": "advanced (N1): vocabulary found in literature and newspapers",
}

// NormalizeLevel returns level upper-cased if it is a JLPT level, else N5.
func NormalizeLevel(level string) string {
	level = strings.ToUpper(strings.TrimSpace(level))
	if _, ok := levelDescriptions[level]; ok {
		return level
	}
	return "N5"
}

// LevelDescription returns the prompt description for level, falling back to N5.
func LevelDescription(level string) string {
	return levelDescriptions[NormalizeLevel(level)]
}

// GenerationResult holds generated vocabulary and how it was recovered.
type GenerationResult struct {
	Words    []GeneratedWord
	Strategy Strategy
	Raw      string
}

// WordGenerator asks the model for themed vocabulary at a JLPT level.
type WordGenerator struct {
	completer Completer
	prompts   *PromptLoader
}

func NewWordGenerator(completer Completer, prompts *PromptLoader) *WordGenerator {
	if prompts == nil {
		prompts = NewPromptLoader(nil)
	}
	return &WordGenerator{completer: completer, prompts: prompts}
}

// Generate returns vocabulary for category at level. A response that cannot
// be parsed yields the fallback list rather than an error.
func (g *WordGenerator) Generate(ctx context.Context, category, level string) (*GenerationResult, error) {
	level = NormalizeLevel(level)

	tmpl, err := g.prompts.GetPrompt(PromptTypeWordGeneration)
	if err != nil {
		return nil, err
	}
	prompt, err := ExecutePrompt(tmpl, map[string]string{
		"Category":         category,
		"Level":            level,
		"LevelDescription": LevelDescription(level),
	})
	if err != nil {
		return nil, err
	}

	raw, err := g.completer.Complete(ctx, prompt, g.prompts.GetTemperature(PromptTypeWordGeneration))
	if err != nil {
		return nil, fmt.Errorf("failed to generate words: %w", err)
	}

	result := RecoverWords(raw, level)
	if result.Strategy == StrategyFallback {
		log.Printf("portal: could not parse generated words for %q (%s), using fallback list", category, level)
	}
	return &GenerationResult{Words: result.Words, Strategy: result.Strategy, Raw: raw}, nil
}
