package job

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/ragchat/internal/domain/rag"
	apperrors "github.com/yanqian/ragchat/pkg/errors"
)

const (
	blockingPopTimeout = time.Second
	dispatchPacing     = 100 * time.Millisecond
)

// ConsumerConfig bounds worker concurrency and the TTLs the consumer
// applies to records it writes, plus the chunk size used for Embed
// jobs.
type ConsumerConfig struct {
	Concurrency     int
	ChunkSize       int
	ResultTTL       time.Duration
	ConversationTTL time.Duration
}

// Consumer dispatches jobs off each queue to a bounded pool of
// goroutines, one dispatch loop per queue Kind sharing a single
// semaphore so the total number of jobs processed concurrently
// across all kinds never exceeds Concurrency.
type Consumer struct {
	cfg     ConsumerConfig
	broker  Broker
	agent   *rag.ChatAgent
	ragSvc  *rag.RAGService
	chunker rag.Chunker
	embed   rag.EmbeddingService
	vectors rag.VectorStore
	logger  *slog.Logger
	sem     chan struct{}
}

// NewConsumer constructs a Consumer. The worker touches documents only
// through the RAG service (embedding and vector deletion); document
// metadata persistence is the HTTP-side DocumentService's concern.
func NewConsumer(
	cfg ConsumerConfig,
	broker Broker,
	agent *rag.ChatAgent,
	ragSvc *rag.RAGService,
	chunker rag.Chunker,
	embed rag.EmbeddingService,
	vectors rag.VectorStore,
	logger *slog.Logger,
) *Consumer {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = DefaultResultTTL
	}
	if cfg.ConversationTTL <= 0 {
		cfg.ConversationTTL = DefaultConversationTTL
	}
	return &Consumer{
		cfg:     cfg,
		broker:  broker,
		agent:   agent,
		ragSvc:  ragSvc,
		chunker: chunker,
		embed:   embed,
		vectors: vectors,
		logger:  logger.With("component", "job.consumer"),
		sem:     make(chan struct{}, cfg.Concurrency),
	}
}

// Run starts one dispatch loop per job Kind and blocks until ctx is
// cancelled.
func (c *Consumer) Run(ctx context.Context) {
	kinds := []Kind{KindChat, KindEmbed, KindIndex}
	done := make(chan struct{}, len(kinds))
	for _, kind := range kinds {
		go func(kind Kind) {
			c.dispatchLoop(ctx, kind)
			done <- struct{}{}
		}(kind)
	}
	for range kinds {
		<-done
	}
}

func (c *Consumer) dispatchLoop(ctx context.Context, kind Kind) {
	for {
		select {
		case <-ctx.Done():
			return
		case c.sem <- struct{}{}:
		}

		raw, ok, err := c.broker.BlockingPop(ctx, kind.QueueKey(), blockingPopTimeout)
		if err != nil {
			<-c.sem
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("blocking pop failed", "kind", kind, "error", err)
			time.Sleep(dispatchPacing)
			continue
		}
		if !ok {
			<-c.sem
			time.Sleep(dispatchPacing)
			continue
		}

		go func(payload string) {
			defer func() { <-c.sem }()
			c.process(ctx, kind, payload)
		}(raw)
	}
}

func (c *Consumer) process(ctx context.Context, kind Kind, payload string) {
	switch kind {
	case KindChat:
		c.handleChat(ctx, payload)
	case KindEmbed:
		c.handleEmbed(ctx, payload)
	case KindIndex:
		c.handleIndex(ctx, payload)
	default:
		c.logger.Warn("unknown job kind", "kind", kind)
	}
}

func (c *Consumer) markProcessing(ctx context.Context, jobID string, kind Kind) {
	result := newResult(jobID, kind, StatusProcessing)
	if marshaled, err := result.Marshal(); err == nil {
		_ = c.broker.Set(ctx, StatusKey(jobID), marshaled, c.cfg.ResultTTL)
	}
}

// markCompleted records a Completed status with payload as the
// result's JSON body.
func (c *Consumer) markCompleted(ctx context.Context, jobID string, kind Kind, payload any) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		c.markFailed(ctx, jobID, kind, err)
		return
	}
	result := newResult(jobID, kind, StatusCompleted)
	result.Output = encoded
	if marshaled, err := result.Marshal(); err == nil {
		_ = c.broker.Set(ctx, StatusKey(jobID), marshaled, c.cfg.ResultTTL)
	}
}

func (c *Consumer) markFailed(ctx context.Context, jobID string, kind Kind, cause error) {
	result := newResult(jobID, kind, StatusFailed)
	result.Error = cause.Error()
	if marshaled, err := result.Marshal(); err == nil {
		_ = c.broker.Set(ctx, StatusKey(jobID), marshaled, c.cfg.ResultTTL)
	}
}

func (c *Consumer) handleChat(ctx context.Context, payload string) {
	var j ChatJob
	if err := json.Unmarshal([]byte(payload), &j); err != nil {
		c.logger.Error("decode chat job failed", "error", err)
		return
	}
	jobID := j.JobID.String()
	c.markProcessing(ctx, jobID, KindChat)

	conv, err := c.loadConversation(ctx, j.ConversationID)
	if err != nil {
		c.markFailed(ctx, jobID, KindChat, err)
		return
	}

	answer, err := c.agent.Chat(ctx, j.Message, conv.Messages)
	if err != nil {
		// The user's turn is intentionally not persisted on failure:
		// a failed job should not leave a dangling unanswered turn in
		// the conversation history that a retry would then duplicate.
		c.markFailed(ctx, jobID, KindChat, err)
		return
	}

	conv.Append(rag.RoleUser, j.Message)
	conv.Append(rag.RoleAssistant, answer)
	if err := c.saveConversation(ctx, j.ConversationID, conv); err != nil {
		c.logger.Warn("failed to persist conversation", "conversation_id", j.ConversationID, "error", err)
	}

	c.markCompleted(ctx, jobID, KindChat, chatResult{
		Response:       answer,
		ConversationID: j.ConversationID,
	})
}

// chatResult is the JSON body recorded in a completed chat job's
// status record.
type chatResult struct {
	Response       string    `json:"response"`
	ConversationID uuid.UUID `json:"conversationId"`
}

func (c *Consumer) handleEmbed(ctx context.Context, payload string) {
	var j EmbedJob
	if err := json.Unmarshal([]byte(payload), &j); err != nil {
		c.logger.Error("decode embed job failed", "error", err)
		return
	}
	jobID := j.JobID.String()
	c.markProcessing(ctx, jobID, KindEmbed)

	chunksCreated, err := c.chunkEmbedUpsert(ctx, j.DocumentID, j.Content)
	if err != nil {
		c.markFailed(ctx, jobID, KindEmbed, err)
		return
	}
	c.markCompleted(ctx, jobID, KindEmbed, embedResult{
		DocumentID:    j.DocumentID,
		ChunksCreated: chunksCreated,
	})
}

// embedResult is the JSON body recorded in a completed embed job's
// status record.
type embedResult struct {
	DocumentID    uuid.UUID `json:"documentId"`
	ChunksCreated int       `json:"chunksCreated"`
}

func (c *Consumer) handleIndex(ctx context.Context, payload string) {
	var j IndexJob
	if err := json.Unmarshal([]byte(payload), &j); err != nil {
		c.logger.Error("decode index job failed", "error", err)
		return
	}
	jobID := j.JobID.String()
	c.markProcessing(ctx, jobID, KindIndex)

	if err := c.ragSvc.DeleteDocument(ctx, j.DocumentID); err != nil {
		c.markFailed(ctx, jobID, KindIndex, err)
		return
	}
	c.markCompleted(ctx, jobID, KindIndex, indexResult{
		DocumentID: j.DocumentID,
		Indexed:    true,
		Action:     "cleared_vectors",
	})
}

// indexResult is the JSON body recorded in a completed index job's
// status record.
type indexResult struct {
	DocumentID uuid.UUID `json:"documentId"`
	Indexed    bool      `json:"indexed"`
	Action     string    `json:"action"`
}

// chunkEmbedUpsert chunks content with the consumer's configured
// chunk size, embeds the pieces, and upserts them into the vector
// store. It returns the number of chunks created. If content produces
// no chunks this is a no-op, and the Embed job completes with
// chunksCreated: 0.
func (c *Consumer) chunkEmbedUpsert(ctx context.Context, documentID uuid.UUID, content string) (int, error) {
	pieces := c.chunker.Chunk(content, c.cfg.ChunkSize)
	if len(pieces) == 0 {
		return 0, nil
	}
	chunks := make([]rag.Chunk, len(pieces))
	texts := make([]string, len(pieces))
	for i, p := range pieces {
		chunks[i] = rag.Chunk{ID: uuid.New(), DocumentID: documentID, Index: i, Content: p}
		texts[i] = p
	}
	vectors, err := c.embed.Embed(ctx, texts)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.KindExternalService, "embedding failed", err)
	}
	embeddings := make([]rag.Embedding, len(chunks))
	for i, ch := range chunks {
		embeddings[i] = rag.Embedding{ChunkID: ch.ID, DocumentID: ch.DocumentID, Vector: vectors[i]}
	}
	if err := c.vectors.Upsert(ctx, embeddings, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (c *Consumer) loadConversation(ctx context.Context, id uuid.UUID) (rag.Conversation, error) {
	raw, ok, err := c.broker.Get(ctx, ConversationKey(id.String()))
	if err != nil {
		return rag.Conversation{}, apperrors.Wrap(apperrors.KindInternal, "failed to load conversation", err)
	}
	if !ok {
		return rag.Conversation{ID: id}, nil
	}
	var conv rag.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		return rag.Conversation{}, apperrors.Wrap(apperrors.KindInternal, "failed to decode conversation", err)
	}
	return conv, nil
}

func (c *Consumer) saveConversation(ctx context.Context, id uuid.UUID, conv rag.Conversation) error {
	conv.ID = id
	encoded, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	return c.broker.Set(ctx, ConversationKey(id.String()), string(encoded), c.cfg.ConversationTTL)
}
