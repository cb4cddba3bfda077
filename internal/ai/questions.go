package ai

import (
	"context"
	"fmt"
)

// QuestionWriter drives the model for listening questions.
type QuestionWriter struct {
	completer Completer
	prompts   *PromptLoader
}

func NewQuestionWriter(completer Completer, prompts *PromptLoader) *QuestionWriter {
	if prompts == nil {
		prompts = NewPromptLoader(nil)
	}
	return &QuestionWriter{completer: completer, prompts: prompts}
}

// ExtractQuestions asks the model to restructure a transcript section into
// <question> blocks and returns the raw completion.
func (w *QuestionWriter) ExtractQuestions(ctx context.Context, transcript string) (string, error) {
	prompt, err := w.prompts.GetPrompt(PromptTypeQuestionExtraction)
	if err != nil {
		return "", err
	}
	full := prompt + "\n\nHere is the transcript:\n" + transcript

	out, err := w.completer.Complete(ctx, full, w.prompts.GetTemperature(PromptTypeQuestionExtraction))
	if err != nil {
		return "", fmt.Errorf("failed to extract questions: %w", err)
	}
	return out, nil
}

// GenerateQuestion asks the model for one new question built on conversation.
func (w *QuestionWriter) GenerateQuestion(ctx context.Context, conversation string) (string, error) {
	tmpl, err := w.prompts.GetPrompt(PromptTypeQuestionGeneration)
	if err != nil {
		return "", err
	}
	prompt, err := ExecutePrompt(tmpl, map[string]string{"Conversation": conversation})
	if err != nil {
		return "", err
	}

	out, err := w.completer.Complete(ctx, prompt, w.prompts.GetTemperature(PromptTypeQuestionGeneration))
	if err != nil {
		return "", fmt.Errorf("failed to generate question: %w", err)
	}
	return out, nil
}
