package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/ragchat/pkg/errors"
)

// Config drives chunking, retrieval, and ingestion limits.
type Config struct {
	ChunkSize        int
	TopK             int
	MaxContentBytes  int64
	MaxHistoryTokens int
}

// DocumentService orchestrates document ingestion and deletion.
type DocumentService struct {
	cfg      Config
	docs     DocumentStore
	vectors  VectorStore
	embedder EmbeddingService
	chunker  Chunker
	logger   *slog.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(cfg Config, docs DocumentStore, vectors VectorStore, embedder EmbeddingService, chunker Chunker, logger *slog.Logger) *DocumentService {
	return &DocumentService{
		cfg:      cfg,
		docs:     docs,
		vectors:  vectors,
		embedder: embedder,
		chunker:  chunker,
		logger:   logger.With("component", "rag.document_service"),
	}
}

// DefaultContentType is applied to an ingested document when the
// caller does not specify one.
const DefaultContentType = "text/plain"

// Ingest stores the document and synchronously chunks, embeds, and
// indexes its content. Callers that want this done asynchronously
// should instead enqueue an EmbedJob (see internal/domain/job).
func (s *DocumentService) Ingest(ctx context.Context, name, content, contentType string) (Document, error) {
	name = strings.TrimSpace(name)
	content = strings.TrimSpace(content)
	contentType = strings.TrimSpace(contentType)
	if content == "" {
		return Document{}, apperrors.Wrap(apperrors.KindValidation, "document content cannot be empty", nil)
	}
	if s.cfg.MaxContentBytes > 0 && int64(len(content)) > s.cfg.MaxContentBytes {
		return Document{}, apperrors.Wrap(apperrors.KindValidation, "document content exceeds maximum allowed size", nil)
	}
	if name == "" {
		name = "untitled"
	}
	if contentType == "" {
		contentType = DefaultContentType
	}

	now := time.Now()
	doc := Document{
		ID:          uuid.New(),
		Name:        name,
		Content:     content,
		ContentType: contentType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return Document{}, apperrors.Wrap(apperrors.KindInternal, "failed to persist document", err)
	}

	if err := s.indexDocument(ctx, doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

func (s *DocumentService) indexDocument(ctx context.Context, doc Document) error {
	pieces := s.chunker.Chunk(doc.Content, s.cfg.ChunkSize)
	if len(pieces) == 0 {
		return apperrors.Wrap(apperrors.KindValidation, "document produced no chunks", nil)
	}

	chunks := make([]Chunk, len(pieces))
	for i, content := range pieces {
		chunks[i] = Chunk{
			ID:         uuid.New(),
			DocumentID: doc.ID,
			Index:      i,
			Content:    content,
		}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return apperrors.Wrap(apperrors.KindExternalService, "failed to embed document chunks", err)
	}
	if len(vectors) != len(chunks) {
		return apperrors.Wrap(apperrors.KindInternal, "embedding count mismatch", nil)
	}

	embeddings := make([]Embedding, len(chunks))
	for i, c := range chunks {
		embeddings[i] = Embedding{
			ChunkID:    c.ID,
			DocumentID: c.DocumentID,
			Vector:     vectors[i],
		}
	}

	if err := s.vectors.Upsert(ctx, embeddings, chunks); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to index document chunks", err)
	}
	s.logger.Info("document indexed", "document_id", doc.ID, "chunks", len(chunks))
	return nil
}

// Get fetches a document by ID.
func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (Document, error) {
	doc, found, err := s.docs.Get(ctx, id)
	if err != nil {
		return Document{}, apperrors.Wrap(apperrors.KindInternal, "failed to fetch document", err)
	}
	if !found {
		return Document{}, apperrors.Wrap(apperrors.KindNotFound, "document not found", nil)
	}
	return doc, nil
}

// Delete removes a document and its indexed chunks.
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, found, err := s.docs.Get(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to fetch document", err)
	} else if !found {
		return apperrors.Wrap(apperrors.KindNotFound, "document not found", nil)
	}
	if err := s.vectors.DeleteByDocument(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to remove indexed chunks", err)
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete document", err)
	}
	return nil
}

// RAGService performs similarity search over indexed chunks.
type RAGService struct {
	cfg      Config
	vectors  VectorStore
	embedder EmbeddingService
	logger   *slog.Logger
}

// NewRAGService constructs a RAGService.
func NewRAGService(cfg Config, vectors VectorStore, embedder EmbeddingService, logger *slog.Logger) *RAGService {
	return &RAGService{
		cfg:      cfg,
		vectors:  vectors,
		embedder: embedder,
		logger:   logger.With("component", "rag.service"),
	}
}

// Retrieve embeds the query and returns the top-k matching chunks.
func (s *RAGService) Retrieve(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.Wrap(apperrors.KindValidation, "query cannot be empty", nil)
	}
	if topK <= 0 {
		topK = s.cfg.TopK
		if topK <= 0 {
			topK = 5
		}
	}
	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindExternalService, "failed to embed query", err)
	}
	if len(vectors) == 0 {
		return nil, apperrors.Wrap(apperrors.KindInternal, "no embedding returned for query", nil)
	}
	results, err := s.vectors.Search(ctx, vectors[0], topK)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "vector search failed", err)
	}
	return results, nil
}

// DeleteDocument removes every indexed chunk belonging to a document.
// The RAG service forwards to the vector store and never touches the
// DocumentStore directly.
func (s *RAGService) DeleteDocument(ctx context.Context, documentID uuid.UUID) error {
	if err := s.vectors.DeleteByDocument(ctx, documentID); err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to delete document vectors", err)
	}
	return nil
}
