package storage

import (
	"fmt"
	"time"
)

// VectorRecord is one embedded document in a named collection.
type VectorRecord struct {
	Collection string    `db:"collection"`
	ID         string    `db:"id"`
	Document   string    `db:"document"`
	Metadata   string    `db:"metadata"`
	Embedding  []byte    `db:"embedding"`
	Model      string    `db:"model"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// EnsureCollection creates the collection if it does not exist yet.
func (s *SQLiteStore) EnsureCollection(name, metadata string) error {
	if metadata == "" {
		metadata = "{}"
	}
	_, err := s.db.Exec(`
		INSERT INTO vector_collections (name, metadata) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING
	`, name, metadata)
	if err != nil {
		return fmt.Errorf("failed to ensure collection: %w", err)
	}
	return nil
}

// UpsertVector inserts or replaces a record by (collection, id).
func (s *SQLiteStore) UpsertVector(rec *VectorRecord) error {
	if err := s.EnsureCollection(rec.Collection, ""); err != nil {
		return err
	}
	_, err := s.db.Exec(`
		INSERT INTO vector_records (collection, id, document, metadata, embedding, model, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, id) DO UPDATE SET
			document = excluded.document,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			model = excluded.model,
			updated_at = CURRENT_TIMESTAMP
	`, rec.Collection, rec.ID, rec.Document, rec.Metadata, rec.Embedding, rec.Model)
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}
	return nil
}

// ListVectors returns every record of a collection.
func (s *SQLiteStore) ListVectors(collection string) ([]VectorRecord, error) {
	recs := []VectorRecord{}
	err := s.db.Select(&recs, `
		SELECT collection, id, document, metadata, embedding, model, updated_at
		FROM vector_records WHERE collection = ? ORDER BY id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to list vectors: %w", err)
	}
	return recs, nil
}

func (s *SQLiteStore) CountVectors(collection string) (int, error) {
	var n int
	if err := s.db.Get(&n, "SELECT COUNT(*) FROM vector_records WHERE collection = ?", collection); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return n, nil
}
