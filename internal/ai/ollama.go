package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
)

// Completer sends a single prompt to a language model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// newOllamaClient builds a client for baseURL, falling back to OLLAMA_HOST
// from the environment when baseURL is empty.
func newOllamaClient(baseURL string) (*api.Client, error) {
	if baseURL == "" {
		return api.ClientFromEnvironment()
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	return api.NewClient(parsedURL, http.DefaultClient), nil
}

// ollamaError wraps a client failure, keeping the HTTP status when the server answered.
func ollamaError(op string, err error) error {
	ue := &domain.UpstreamError{Service: "ollama", Err: fmt.Errorf("%s failed: %w", op, err)}
	var se api.StatusError
	if errors.As(err, &se) {
		ue.StatusCode = se.StatusCode
	}
	return ue
}

// OllamaCompleter generates completions through a local Ollama server.
type OllamaCompleter struct {
	client *api.Client
	model  string
}

// NewOllamaCompleter creates a completer for model served at baseURL.
func NewOllamaCompleter(baseURL, model string) (*OllamaCompleter, error) {
	client, err := newOllamaClient(baseURL)
	if err != nil {
		return nil, err
	}
	return &OllamaCompleter{client: client, model: model}, nil
}

func (c *OllamaCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	req := &api.GenerateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: new(bool), // false
		Options: map[string]interface{}{
			"temperature": temperature,
		},
	}

	var fullResponse strings.Builder
	err := c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		fullResponse.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", ollamaError("generate", err)
	}
	return fullResponse.String(), nil
}

// OllamaEmbedder implements embedding.Embedder with Ollama's /api/embed.
type OllamaEmbedder struct {
	client *api.Client
	model  string
}

func NewOllamaEmbedder(baseURL, model string) (*OllamaEmbedder, error) {
	client, err := newOllamaClient(baseURL)
	if err != nil {
		return nil, err
	}
	return &OllamaEmbedder{client: client, model: model}, nil
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embed(ctx, &api.EmbedRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, ollamaError("embed", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, &domain.UpstreamError{
			Service: "ollama",
			Err:     fmt.Errorf("embed returned %d vectors for %d inputs", len(resp.Embeddings), len(texts)),
		}
	}
	return resp.Embeddings, nil
}

func (e *OllamaEmbedder) Model() string { return e.model }
