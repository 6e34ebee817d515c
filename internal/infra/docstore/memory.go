package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/yanqian/ragchat/internal/domain/rag"
)

// MemoryDocumentStore is an in-process rag.DocumentStore backed by a
// mutex-guarded map, for local development and tests.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]rag.Document
}

// NewMemoryDocumentStore constructs a MemoryDocumentStore.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[uuid.UUID]rag.Document)}
}

// Create implements rag.DocumentStore.
func (s *MemoryDocumentStore) Create(_ context.Context, doc rag.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// Get implements rag.DocumentStore.
func (s *MemoryDocumentStore) Get(_ context.Context, id uuid.UUID) (rag.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok, nil
}

// Delete implements rag.DocumentStore.
func (s *MemoryDocumentStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

var _ rag.DocumentStore = (*MemoryDocumentStore)(nil)
