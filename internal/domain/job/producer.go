package job

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Producer enqueues jobs and records their initial Pending status.
type Producer struct {
	broker    Broker
	resultTTL time.Duration
}

// NewProducer constructs a Producer. resultTTL bounds how long a job's
// status record survives in the broker; a non-positive value falls
// back to DefaultResultTTL.
func NewProducer(broker Broker, resultTTL time.Duration) *Producer {
	if resultTTL <= 0 {
		resultTTL = DefaultResultTTL
	}
	return &Producer{broker: broker, resultTTL: resultTTL}
}

// EnqueueChat enqueues a ChatJob and returns its job ID.
func (p *Producer) EnqueueChat(ctx context.Context, conversationID uuid.UUID, message string) (uuid.UUID, error) {
	jobID := uuid.New()
	j := ChatJob{JobID: jobID, ConversationID: conversationID, Message: message}
	if err := p.enqueue(ctx, KindChat, jobID, j); err != nil {
		return uuid.Nil, err
	}
	return jobID, nil
}

// EnqueueEmbed enqueues an EmbedJob and returns its job ID.
func (p *Producer) EnqueueEmbed(ctx context.Context, documentID uuid.UUID, content string) (uuid.UUID, error) {
	jobID := uuid.New()
	j := EmbedJob{JobID: jobID, DocumentID: documentID, Content: content}
	if err := p.enqueue(ctx, KindEmbed, jobID, j); err != nil {
		return uuid.Nil, err
	}
	return jobID, nil
}

// EnqueueIndex enqueues an IndexJob that clears a document's vectors
// from the vector store.
func (p *Producer) EnqueueIndex(ctx context.Context, documentID uuid.UUID) (uuid.UUID, error) {
	jobID := uuid.New()
	j := IndexJob{JobID: jobID, DocumentID: documentID}
	if err := p.enqueue(ctx, KindIndex, jobID, j); err != nil {
		return uuid.Nil, err
	}
	return jobID, nil
}

func (p *Producer) enqueue(ctx context.Context, kind Kind, jobID uuid.UUID, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := p.broker.Push(ctx, kind.QueueKey(), string(encoded)); err != nil {
		return err
	}
	result := newResult(jobID.String(), kind, StatusPending)
	marshaled, err := result.Marshal()
	if err != nil {
		return err
	}
	return p.broker.Set(ctx, StatusKey(jobID.String()), marshaled, p.resultTTL)
}

// Status fetches the current Result for a job.
func (p *Producer) Status(ctx context.Context, jobID uuid.UUID) (Result, bool, error) {
	raw, ok, err := p.broker.Get(ctx, StatusKey(jobID.String()))
	if err != nil || !ok {
		return Result{}, ok, err
	}
	result, err := UnmarshalResult(raw)
	return result, true, err
}
