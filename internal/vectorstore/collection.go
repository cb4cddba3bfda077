// Package vectorstore keeps named collections of embedded documents in the
// portal database and answers nearest-neighbour queries over them.
package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	embedding "github.com/matthewjhunter/go-embedding"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/storage"
)

// Backend is the subset of storage.Store a collection needs.
type Backend interface {
	EnsureCollection(name, metadata string) error
	UpsertVector(rec *storage.VectorRecord) error
	ListVectors(collection string) ([]storage.VectorRecord, error)
	CountVectors(collection string) (int, error)
}

// Match is one query hit.
type Match struct {
	ID         string
	Document   string
	Metadata   map[string]any
	Similarity float64
}

// Collection is a named set of documents embedded with one model.
type Collection struct {
	backend  Backend
	embedder embedding.Embedder
	name     string
}

// Open returns the collection called name, creating it with metadata if needed.
func Open(backend Backend, embedder embedding.Embedder, name string, metadata map[string]any) (*Collection, error) {
	meta := "{}"
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to encode collection metadata: %w", err)
		}
		meta = string(b)
	}
	if err := backend.EnsureCollection(name, meta); err != nil {
		return nil, err
	}
	return &Collection{backend: backend, embedder: embedder, name: name}, nil
}

// Count returns the number of records in the collection.
func (c *Collection) Count() (int, error) {
	return c.backend.CountVectors(c.name)
}

// Upsert embeds document and stores it under id, replacing any previous record.
func (c *Collection) Upsert(ctx context.Context, id, document string, metadata map[string]any) error {
	vec, err := embedding.Single(ctx, c.embedder, document)
	if err != nil {
		return fmt.Errorf("embed document %s: %w", id, err)
	}
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return c.backend.UpsertVector(&storage.VectorRecord{
		Collection: c.name,
		ID:         id,
		Document:   document,
		Metadata:   string(meta),
		Embedding:  embedding.EncodeFloat32s(vec),
		Model:      c.embedder.Model(),
	})
}

// Query returns up to k records most similar to text, best first.
func (c *Collection) Query(ctx context.Context, text string, k int) ([]Match, error) {
	if k <= 0 {
		return []Match{}, nil
	}
	query, err := embedding.Single(ctx, c.embedder, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	recs, err := c.backend.ListVectors(c.name)
	if err != nil {
		return nil, err
	}

	matches := make([]Match, 0, len(recs))
	for _, r := range recs {
		vec := embedding.DecodeFloat32s(r.Embedding)
		if len(vec) != len(query) {
			// Embedded with a different model; not comparable.
			continue
		}
		var meta map[string]any
		if err := json.Unmarshal([]byte(r.Metadata), &meta); err != nil {
			meta = map[string]any{}
		}
		matches = append(matches, Match{
			ID:         r.ID,
			Document:   r.Document,
			Metadata:   meta,
			Similarity: embedding.CosineSimilarity(query, vec),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}
