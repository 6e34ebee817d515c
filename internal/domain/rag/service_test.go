package rag

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/ragchat/pkg/errors"
)

type memoryDocStore struct {
	mu   sync.Mutex
	docs map[uuid.UUID]Document
}

func newMemoryDocStore() *memoryDocStore {
	return &memoryDocStore{docs: make(map[uuid.UUID]Document)}
}

func (s *memoryDocStore) Create(_ context.Context, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *memoryDocStore) Get(_ context.Context, id uuid.UUID) (Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	return doc, ok, nil
}

func (s *memoryDocStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

type stubVectorStore struct {
	mu      sync.Mutex
	upserts int
	deleted []uuid.UUID
	results []SearchResult
}

func (s *stubVectorStore) Upsert(_ context.Context, _ []Embedding, _ []Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	return nil
}

func (s *stubVectorStore) Search(_ context.Context, _ []float32, topK int) ([]SearchResult, error) {
	if topK > 0 && len(s.results) > topK {
		return s.results[:topK], nil
	}
	return s.results, nil
}

func (s *stubVectorStore) DeleteByDocument(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, id)
	return nil
}

type stubEmbedder struct {
	dims int
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dims)
	}
	return out, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDocumentService_IngestChunksEmbedsAndIndexes(t *testing.T) {
	docs := newMemoryDocStore()
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	chunker := NewParagraphChunker()

	svc := NewDocumentService(Config{ChunkSize: 1000}, docs, vectors, embedder, chunker, testLogger())

	doc, err := svc.Ingest(context.Background(), "notes", "paragraph one\n\nparagraph two", "")
	require.NoError(t, err)
	require.Equal(t, "notes", doc.Name)
	require.Equal(t, DefaultContentType, doc.ContentType)
	require.Equal(t, 1, vectors.upserts)

	stored, found, err := docs.Get(context.Background(), doc.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, doc.Content, stored.Content)
}

func TestDocumentService_IngestRejectsEmptyContent(t *testing.T) {
	docs := newMemoryDocStore()
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	chunker := NewParagraphChunker()
	svc := NewDocumentService(Config{ChunkSize: 1000}, docs, vectors, embedder, chunker, testLogger())

	_, err := svc.Ingest(context.Background(), "empty", "   ", "")
	require.Error(t, err)
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDocumentService_IngestRejectsOversizedContent(t *testing.T) {
	docs := newMemoryDocStore()
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	chunker := NewParagraphChunker()
	svc := NewDocumentService(Config{ChunkSize: 1000, MaxContentBytes: 5}, docs, vectors, embedder, chunker, testLogger())

	_, err := svc.Ingest(context.Background(), "too big", "way more than five bytes", "")
	require.Error(t, err)
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestDocumentService_GetUnknownReturnsNotFound(t *testing.T) {
	docs := newMemoryDocStore()
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	chunker := NewParagraphChunker()
	svc := NewDocumentService(Config{ChunkSize: 1000}, docs, vectors, embedder, chunker, testLogger())

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDocumentService_DeleteRemovesDocumentAndVectors(t *testing.T) {
	docs := newMemoryDocStore()
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	chunker := NewParagraphChunker()
	svc := NewDocumentService(Config{ChunkSize: 1000}, docs, vectors, embedder, chunker, testLogger())

	doc, err := svc.Ingest(context.Background(), "notes", "some content", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), doc.ID))
	require.Equal(t, []uuid.UUID{doc.ID}, vectors.deleted)

	_, err = svc.Get(context.Background(), doc.ID)
	require.Error(t, err)
	require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDocumentService_DeleteUnknownReturnsNotFound(t *testing.T) {
	docs := newMemoryDocStore()
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	chunker := NewParagraphChunker()
	svc := NewDocumentService(Config{ChunkSize: 1000}, docs, vectors, embedder, chunker, testLogger())

	err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestRAGService_RetrieveRejectsEmptyQuery(t *testing.T) {
	vectors := &stubVectorStore{}
	embedder := &stubEmbedder{dims: 4}
	svc := NewRAGService(Config{TopK: 5}, vectors, embedder, testLogger())

	_, err := svc.Retrieve(context.Background(), "  ", 0)
	require.Error(t, err)
	require.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestRAGService_RetrieveUsesConfiguredTopKWhenUnspecified(t *testing.T) {
	vectors := &stubVectorStore{results: []SearchResult{
		{Content: "a"}, {Content: "b"}, {Content: "c"},
	}}
	embedder := &stubEmbedder{dims: 4}
	svc := NewRAGService(Config{TopK: 2}, vectors, embedder, testLogger())

	results, err := svc.Retrieve(context.Background(), "query", 0)
	require.NoError(t, err)
	require.Len(t, results, 2)
}
