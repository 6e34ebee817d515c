package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ragchat/internal/domain/job"
	"github.com/yanqian/ragchat/internal/domain/rag"
	"github.com/yanqian/ragchat/internal/infra/broker"
	"github.com/yanqian/ragchat/internal/infra/config"
	"github.com/yanqian/ragchat/internal/infra/docstore"
	"github.com/yanqian/ragchat/internal/infra/embedding"
	"github.com/yanqian/ragchat/internal/infra/llm/chatgpt"
	"github.com/yanqian/ragchat/internal/infra/llm/echo"
	"github.com/yanqian/ragchat/internal/infra/vectorstore"
	httpif "github.com/yanqian/ragchat/internal/interface/http"
)

// Dependencies bundles the constructed adapters shared by the API and
// worker binaries.
type Dependencies struct {
	Broker      job.Broker
	DocStore    rag.DocumentStore
	VectorStore rag.VectorStore
	Embedder    rag.EmbeddingService
	LLM         rag.LlmService
	Chunker     rag.Chunker
	Agent       *rag.ChatAgent
	DocService  *rag.DocumentService
	RAGService  *rag.RAGService
	Producer    *job.Producer
}

// BuildDependencies constructs every adapter both cmd/api and
// cmd/worker need, wired according to cfg.
func BuildDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	jobBroker, err := newBroker(ctx, cfg)
	if err != nil {
		return nil, err
	}

	docStore, err := newDocStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	vecStore, err := newVectorStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	chatClient, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil && !cfg.LLM.Deterministic {
		return nil, fmt.Errorf("bootstrap: build chatgpt client: %w", err)
	}

	var embedder rag.EmbeddingService
	if cfg.LLM.Deterministic || chatClient == nil {
		embedder = embedding.NewDeterministicEmbedder(cfg.VectorStore.Dimensions)
	} else {
		embedder = embedding.NewOpenAIEmbedder(chatClient, cfg.LLM.EmbeddingModel)
	}

	var llmSvc rag.LlmService
	if cfg.LLM.Deterministic || chatClient == nil {
		llmSvc = echo.New()
	} else {
		llmSvc = chatgpt.NewLLM(chatClient, cfg.LLM.Model, cfg.LLM.Temperature)
	}

	ragCfg := rag.Config{
		ChunkSize:        cfg.Ingest.ChunkSize,
		TopK:             cfg.Ingest.TopK,
		MaxContentBytes:  int64(cfg.Ingest.MaxContentBytes),
		MaxHistoryTokens: cfg.Agent.MaxHistoryTokens,
	}
	chunker := rag.NewParagraphChunker()
	docService := rag.NewDocumentService(ragCfg, docStore, vecStore, embedder, chunker, logger)
	ragService := rag.NewRAGService(ragCfg, vecStore, embedder, logger)
	tool := rag.NewKnowledgeBaseTool(ragService, cfg.Ingest.TopK, cfg.Agent.NoResultsReply)

	agentCfg := rag.AgentConfig{
		Preamble:         cfg.Agent.Preamble,
		MaxHistoryTokens: cfg.Agent.MaxHistoryTokens,
		MaxToolTurns:     cfg.Agent.MaxToolTurns,
		ExecutionTimeout: cfg.Agent.ExecutionTimeout,
	}
	agent := rag.NewChatAgent(agentCfg, llmSvc, tool, logger)

	return &Dependencies{
		Broker:      jobBroker,
		DocStore:    docStore,
		VectorStore: vecStore,
		Embedder:    embedder,
		LLM:         llmSvc,
		Chunker:     chunker,
		Agent:       agent,
		DocService:  docService,
		RAGService:  ragService,
		Producer:    job.NewProducer(jobBroker, time.Duration(cfg.Worker.ResultTTLSeconds)*time.Second),
	}, nil
}

// BuildConsumer wires the job.Consumer on top of already-constructed
// Dependencies.
func BuildConsumer(cfg *config.Config, deps *Dependencies, logger *slog.Logger) *job.Consumer {
	return job.NewConsumer(
		job.ConsumerConfig{
			Concurrency:     cfg.Worker.Concurrency,
			ChunkSize:       cfg.Ingest.ChunkSize,
			ResultTTL:       time.Duration(cfg.Worker.ResultTTLSeconds) * time.Second,
			ConversationTTL: time.Duration(cfg.Worker.ConversationTTLSeconds) * time.Second,
		},
		deps.Broker,
		deps.Agent,
		deps.RAGService,
		deps.Chunker,
		deps.Embedder,
		deps.VectorStore,
		logger,
	)
}

func newBroker(ctx context.Context, cfg *config.Config) (job.Broker, error) {
	if cfg.Broker.InMemory {
		return broker.NewMemoryBroker(), nil
	}
	client, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.Broker.Addr}})
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect broker: %w", err)
	}
	return broker.NewValkeyBroker(client), nil
}

func newDocStore(ctx context.Context, cfg *config.Config) (rag.DocumentStore, error) {
	if !cfg.Postgres.Enabled {
		return docstore.NewMemoryDocumentStore(), nil
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: parse postgres dsn: %w", err)
	}
	poolCfg.MaxConns = cfg.Postgres.MaxConns
	poolCfg.MinConns = cfg.Postgres.MinConns
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: connect postgres: %w", err)
	}
	return docstore.NewPostgresDocumentStore(pool), nil
}

func newVectorStore(ctx context.Context, cfg *config.Config) (rag.VectorStore, error) {
	switch cfg.VectorStore.Backend {
	case "qdrant":
		store, err := vectorstore.NewQdrantVectorStore(cfg.VectorStore.Addr, cfg.VectorStore.Collection)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: connect qdrant: %w", err)
		}
		if err := store.EnsureCollection(ctx, cfg.VectorStore.Dimensions); err != nil {
			return nil, fmt.Errorf("bootstrap: ensure qdrant collection: %w", err)
		}
		return store, nil
	default:
		return vectorstore.NewMemoryVectorStore(), nil
	}
}

// BuildRouter wires the HTTP router on top of already-constructed
// Dependencies.
func BuildRouter(cfg *config.Config, deps *Dependencies, logger *slog.Logger) *httpif.Handler {
	return httpif.NewHandler(deps.Producer, deps.DocService, deps.RAGService, deps.Broker, logger)
}
