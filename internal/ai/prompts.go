package ai

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

// Embedded default prompts
//
//go:embed prompts/word_generation.txt
var defaultWordGenerationPrompt string

//go:embed prompts/question_extraction.txt
var defaultQuestionExtractionPrompt string

//go:embed prompts/question_generation.txt
var defaultQuestionGenerationPrompt string

// PromptType represents the type of AI prompt
type PromptType string

const (
	PromptTypeWordGeneration     PromptType = "word_generation"
	PromptTypeQuestionExtraction PromptType = "question_extraction"
	PromptTypeQuestionGeneration PromptType = "question_generation"
)

// PromptTypes lists every prompt the portal sends.
var PromptTypes = []PromptType{
	PromptTypeWordGeneration,
	PromptTypeQuestionExtraction,
	PromptTypeQuestionGeneration,
}

// PromptLoader resolves prompts and temperatures with 2-tier fallback:
// config file -> embedded default.
type PromptLoader struct {
	config *storage.Config
}

// NewPromptLoader creates a new prompt loader. config may be nil.
func NewPromptLoader(config *storage.Config) *PromptLoader {
	return &PromptLoader{config: config}
}

// GetPrompt returns the config override for promptType, or the embedded default.
func (pl *PromptLoader) GetPrompt(promptType PromptType) (string, error) {
	if pl.config != nil {
		var configPrompt string
		switch promptType {
		case PromptTypeWordGeneration:
			configPrompt = pl.config.Prompts.WordGeneration
		case PromptTypeQuestionExtraction:
			configPrompt = pl.config.Prompts.QuestionExtraction
		case PromptTypeQuestionGeneration:
			configPrompt = pl.config.Prompts.QuestionGeneration
		}
		if configPrompt != "" {
			return configPrompt, nil
		}
	}

	switch promptType {
	case PromptTypeWordGeneration:
		return defaultWordGenerationPrompt, nil
	case PromptTypeQuestionExtraction:
		return defaultQuestionExtractionPrompt, nil
	case PromptTypeQuestionGeneration:
		return defaultQuestionGenerationPrompt, nil
	default:
		return "", fmt.Errorf("unknown prompt type: %s", promptType)
	}
}

// GetTemperature returns the sampling temperature for promptType.
// Extraction runs at 0, so a config value of 0 is taken as-is.
func (pl *PromptLoader) GetTemperature(promptType PromptType) float64 {
	if pl.config != nil {
		switch promptType {
		case PromptTypeWordGeneration:
			return pl.config.Temperatures.WordGeneration
		case PromptTypeQuestionExtraction:
			return pl.config.Temperatures.QuestionExtraction
		case PromptTypeQuestionGeneration:
			return pl.config.Temperatures.QuestionGeneration
		}
	}

	switch promptType {
	case PromptTypeQuestionExtraction:
		return 0
	default:
		return 0.7
	}
}

// ExecutePrompt renders a prompt template with the given data
func ExecutePrompt(promptTemplate string, data interface{}) (string, error) {
	tmpl, err := template.New("prompt").Parse(promptTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return buf.String(), nil
}
