package rag

import (
	"context"

	"github.com/google/uuid"
)

// DocumentStore persists Document metadata and content.
type DocumentStore interface {
	Create(ctx context.Context, doc Document) error
	Get(ctx context.Context, id uuid.UUID) (Document, bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// VectorStore indexes and searches Chunk embeddings.
type VectorStore interface {
	Upsert(ctx context.Context, embeddings []Embedding, chunks []Chunk) error
	Search(ctx context.Context, query []float32, topK int) ([]SearchResult, error)
	DeleteByDocument(ctx context.Context, documentID uuid.UUID) error
}

// EmbeddingService turns text into vector representations.
type EmbeddingService interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// LLMMessage mirrors a simplified chat payload passed to an LlmService.
type LLMMessage struct {
	Role    string
	Content string
}

// ToolDefinition describes a callable tool exposed to the LLM.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a request from the LLM to invoke a named tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// LlmService generates chat completions, optionally offering tools.
type LlmService interface {
	Chat(ctx context.Context, messages []LLMMessage, tools []ToolDefinition) (ChatCompletion, error)
}

// ChatCompletion is the normalized result of an LlmService.Chat call.
type ChatCompletion struct {
	Content   string
	ToolCalls []ToolCall
}

// Chunker splits raw text into contiguous pieces.
type Chunker interface {
	Chunk(text string, chunkSize int) []string
}
