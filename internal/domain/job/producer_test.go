package job_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/ragchat/internal/domain/job"
	"github.com/yanqian/ragchat/internal/infra/broker"
)

func TestProducer_EnqueueChatWritesPendingStatus(t *testing.T) {
	b := broker.NewMemoryBroker()
	p := job.NewProducer(b, time.Hour)

	convID := uuid.New()
	jobID, err := p.EnqueueChat(context.Background(), convID, "hello")
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, jobID)

	result, ok, err := p.Status(context.Background(), jobID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, jobID.String(), result.JobID)
	require.Equal(t, job.KindChat, result.Kind)
	require.Equal(t, job.StatusPending, result.Status)

	raw, ok, err := b.BlockingPop(context.Background(), job.KindChat.QueueKey(), 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, raw, convID.String())
}

func TestProducer_EnqueueIndexAndEmbed(t *testing.T) {
	b := broker.NewMemoryBroker()
	p := job.NewProducer(b, time.Hour)

	indexID, err := p.EnqueueIndex(context.Background(), uuid.New())
	require.NoError(t, err)

	result, ok, err := p.Status(context.Background(), indexID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, job.KindIndex, result.Kind)

	docID := uuid.New()
	embedID, err := p.EnqueueEmbed(context.Background(), docID, "more content")
	require.NoError(t, err)

	result, ok, err = p.Status(context.Background(), embedID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, job.KindEmbed, result.Kind)
}

func TestProducer_StatusUnknownJobReturnsNotFound(t *testing.T) {
	b := broker.NewMemoryBroker()
	p := job.NewProducer(b, time.Hour)

	_, ok, err := p.Status(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, ok)
}
