package job

import (
	"github.com/google/uuid"
)

// Kind identifies the job queue a job envelope belongs to.
type Kind string

const (
	KindChat  Kind = "chat"
	KindEmbed Kind = "embed"
	KindIndex Kind = "index"
)

// QueueKey returns the broker list key for a job Kind.
func (k Kind) QueueKey() string {
	return "jobs:" + string(k)
}

// ChatJob asks the agent to answer a message within a conversation.
type ChatJob struct {
	JobID          uuid.UUID `json:"jobId"`
	ConversationID uuid.UUID `json:"conversationId"`
	Message        string    `json:"message"`
}

// EmbedJob chunks and embeds an already-ingested document's content
// into the vector store without creating a new Document record.
type EmbedJob struct {
	JobID      uuid.UUID `json:"jobId"`
	DocumentID uuid.UUID `json:"documentId"`
	Content    string    `json:"content"`
}

// IndexJob clears a document's vectors from the vector store. The
// name is historical: the operation is currently "remove all vectors
// for this document"; indexing after a fresh embed is performed via
// the Embed job kind.
type IndexJob struct {
	JobID      uuid.UUID `json:"jobId"`
	DocumentID uuid.UUID `json:"documentId"`
}
