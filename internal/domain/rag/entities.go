package rag

import (
	"time"

	"github.com/google/uuid"
)

// Document is a piece of ingested text available for retrieval. It is
// immutable after creation except for UpdatedAt.
type Document struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Chunk is a contiguous slice of a Document produced by the chunker.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"documentId"`
	Index      int       `json:"index"`
	Content    string    `json:"content"`
}

// Embedding pairs a chunk with its vector representation.
type Embedding struct {
	ChunkID    uuid.UUID `json:"chunkId"`
	DocumentID uuid.UUID `json:"documentId"`
	Vector     []float32 `json:"vector"`
}

// SearchResult is a retrieval hit returned by the vector store.
type SearchResult struct {
	ChunkID    uuid.UUID `json:"chunkId"`
	DocumentID uuid.UUID `json:"documentId"`
	Content    string    `json:"content"`
	Source     string    `json:"source"`
	Score      float64   `json:"score"`
}

// Role identifies the speaker of a conversation Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is a single turn in a Conversation.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Conversation is an append-only ordered sequence of Messages.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Messages  []Message `json:"messages"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Append adds a message to the conversation, preserving order.
func (c *Conversation) Append(role Role, content string) {
	c.Messages = append(c.Messages, Message{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	})
	c.UpdatedAt = time.Now()
}
