package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

// PostgresDocumentStore is a rag.DocumentStore backed by a documents
// table. It holds document metadata and raw content only; chunk
// embeddings live in the vector store, not in Postgres.
type PostgresDocumentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresDocumentStore constructs a PostgresDocumentStore.
func NewPostgresDocumentStore(pool *pgxpool.Pool) *PostgresDocumentStore {
	return &PostgresDocumentStore{pool: pool}
}

// Create implements rag.DocumentStore.
func (s *PostgresDocumentStore) Create(ctx context.Context, doc rag.Document) error {
	const query = `
		INSERT INTO documents (id, name, content, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = $2, content = $3
	`
	_, err := s.pool.Exec(ctx, query, doc.ID, doc.Name, doc.Content, doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("docstore: create document %s: %w", doc.ID, err)
	}
	return nil
}

// Get implements rag.DocumentStore.
func (s *PostgresDocumentStore) Get(ctx context.Context, id uuid.UUID) (rag.Document, bool, error) {
	const query = `SELECT id, name, content, created_at FROM documents WHERE id = $1`
	var doc rag.Document
	err := s.pool.QueryRow(ctx, query, id).Scan(&doc.ID, &doc.Name, &doc.Content, &doc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rag.Document{}, false, nil
		}
		return rag.Document{}, false, fmt.Errorf("docstore: get document %s: %w", id, err)
	}
	return doc, true, nil
}

// Delete implements rag.DocumentStore.
func (s *PostgresDocumentStore) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM documents WHERE id = $1`
	_, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("docstore: delete document %s: %w", id, err)
	}
	return nil
}

var _ rag.DocumentStore = (*PostgresDocumentStore)(nil)
