package job_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/ragchat/internal/domain/job"
	"github.com/yanqian/ragchat/internal/domain/rag"
	"github.com/yanqian/ragchat/internal/infra/broker"
	"github.com/yanqian/ragchat/internal/infra/embedding"
	"github.com/yanqian/ragchat/internal/infra/llm/echo"
	"github.com/yanqian/ragchat/internal/infra/vectorstore"
)

func newTestConsumer(t *testing.T, b job.Broker) *job.Consumer {
	t.Helper()
	logger := testLogger()

	vectors := vectorstore.NewMemoryVectorStore()
	embedder := embedding.NewDeterministicEmbedder(8)
	chunker := rag.NewParagraphChunker()

	ragCfg := rag.Config{ChunkSize: 1000, TopK: 5}
	ragSvc := rag.NewRAGService(ragCfg, vectors, embedder, logger)
	tool := rag.NewKnowledgeBaseTool(ragSvc, 5, "no results")
	agent := rag.NewChatAgent(rag.AgentConfig{ExecutionTimeout: 5 * time.Second}, echo.New(), tool, logger)

	cfg := job.ConsumerConfig{Concurrency: 2, ChunkSize: 1000, ResultTTL: time.Hour, ConversationTTL: time.Hour}
	return job.NewConsumer(cfg, b, agent, ragSvc, chunker, embedder, vectors, logger)
}

func TestConsumer_ProcessesIndexJobToCompletion(t *testing.T) {
	b := broker.NewMemoryBroker()
	producer := job.NewProducer(b, time.Hour)
	consumer := newTestConsumer(t, b)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go consumer.Run(ctx)

	docID := uuid.New()
	jobID, err := producer.EnqueueIndex(context.Background(), docID)
	require.NoError(t, err)

	result := waitForTerminal(t, producer, jobID)
	require.Equal(t, job.StatusCompleted, result.Status)
	require.Contains(t, string(result.Output), "cleared_vectors")
	require.Contains(t, string(result.Output), docID.String())
}

func TestConsumer_ProcessesChatJobToCompletion(t *testing.T) {
	b := broker.NewMemoryBroker()
	producer := job.NewProducer(b, time.Hour)
	consumer := newTestConsumer(t, b)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go consumer.Run(ctx)

	convID := uuid.New()
	jobID, err := producer.EnqueueChat(context.Background(), convID, "hello")
	require.NoError(t, err)

	result := waitForTerminal(t, producer, jobID)
	require.Equal(t, job.StatusCompleted, result.Status)
	require.Contains(t, string(result.Output), "hello")
	require.Contains(t, string(result.Output), convID.String())
}

func TestConsumer_FailsChatJobOnEmptyMessage(t *testing.T) {
	b := broker.NewMemoryBroker()
	producer := job.NewProducer(b, time.Hour)
	consumer := newTestConsumer(t, b)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	go consumer.Run(ctx)

	convID := uuid.New()
	jobID, err := producer.EnqueueChat(context.Background(), convID, "   ")
	require.NoError(t, err)

	result := waitForTerminal(t, producer, jobID)
	require.Equal(t, job.StatusFailed, result.Status)
	require.NotEmpty(t, result.Error)
}

func waitForTerminal(t *testing.T, producer *job.Producer, jobID uuid.UUID) job.Result {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		result, ok, err := producer.Status(context.Background(), jobID)
		require.NoError(t, err)
		if ok && (result.Status == job.StatusCompleted || result.Status == job.StatusFailed) {
			return result
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not reach a terminal status in time")
	return job.Result{}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
