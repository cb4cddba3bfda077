package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
)

// GroqCompleter talks to Groq's OpenAI-compatible chat completions endpoint.
type GroqCompleter struct {
	apiKey string
	apiURL string
	model  string
	http   *http.Client
}

// NewGroqCompleter creates a Groq client. apiURL is the full chat completions URL.
func NewGroqCompleter(apiKey, apiURL, model string) (*GroqCompleter, error) {
	if apiKey == "" {
		return nil, errors.New("groq api key is not set (GROQ_API_KEY)")
	}
	return &GroqCompleter{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  model,
		http:   &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of a chat completions call.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse is the subset of the chat completions response we read.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *GroqCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(ChatRequest{
		Model:       c.model,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &domain.UpstreamError{Service: "groq", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &domain.UpstreamError{
			Service:    "groq",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", bytes.TrimSpace(snippet)),
		}
	}

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", &domain.UpstreamError{Service: "groq", Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if response.Error != nil {
		return "", &domain.UpstreamError{Service: "groq", Err: fmt.Errorf("API error: %s", response.Error.Message)}
	}
	if len(response.Choices) == 0 {
		return "", &domain.UpstreamError{Service: "groq", Err: errors.New("no response choices returned")}
	}
	return response.Choices[0].Message.Content, nil
}

// NewCompleter picks the completion backend named by provider.
func NewCompleter(provider, model, ollamaURL, groqKey, groqURL string) (Completer, error) {
	switch provider {
	case "", "ollama":
		return NewOllamaCompleter(ollamaURL, model)
	case "groq":
		return NewGroqCompleter(groqKey, groqURL, model)
	default:
		return nil, fmt.Errorf("unknown llm provider: %q", provider)
	}
}
