package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the API and
// worker binaries.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	LLM         LLMConfig         `yaml:"llm"`
	Agent       AgentConfig       `yaml:"agent"`
	Broker      BrokerConfig      `yaml:"broker"`
	VectorStore VectorStoreConfig `yaml:"vectorStore"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Worker      WorkerConfig      `yaml:"worker"`
	Ingest      IngestConfig      `yaml:"ingest"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries of POST requests that
// fail with a 5xx status; paths listed in Exclude are not retried.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains ChatGPT/OpenAI-compatible connection settings.
type LLMConfig struct {
	APIKey         string  `yaml:"apiKey"`
	BaseURL        string  `yaml:"baseUrl"`
	Model          string  `yaml:"model"`
	EmbeddingModel string  `yaml:"embeddingModel"`
	Temperature    float32 `yaml:"temperature"`
	Deterministic  bool    `yaml:"deterministic"`
}

// AgentConfig configures chat-agent prompt assembly, loaded from
// configs/prompts.yaml by convention.
type AgentConfig struct {
	Preamble         string        `yaml:"preamble"`
	ToolDescription  string        `yaml:"toolDescription"`
	NoResultsReply   string        `yaml:"noResultsReply"`
	MaxHistoryTokens int           `yaml:"maxHistoryTokens"`
	MaxToolTurns     int           `yaml:"maxToolTurns"`
	ExecutionTimeout time.Duration `yaml:"executionTimeout"`
}

// BrokerConfig contains connection information for the job broker.
type BrokerConfig struct {
	Addr        string `yaml:"addr"`
	InMemory    bool   `yaml:"inMemory"`
	Concurrency int    `yaml:"concurrency"`
}

// VectorStoreConfig selects and configures the vector store backend.
type VectorStoreConfig struct {
	Backend    string `yaml:"backend"` // "memory" or "qdrant"
	Addr       string `yaml:"addr"`
	Collection string `yaml:"collection"`
	Dimensions int    `yaml:"dimensions"`
}

// PostgresConfig contains DSN and pooling settings for document
// metadata storage.
type PostgresConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// WorkerConfig controls the background job-processing binary and the
// TTLs applied to records the worker writes to the broker.
type WorkerConfig struct {
	Concurrency            int `yaml:"concurrency"`
	ConversationTTLSeconds int `yaml:"conversationTtlSeconds"`
	ResultTTLSeconds       int `yaml:"resultTtlSeconds"`
}

// IngestConfig bounds document ingestion.
type IngestConfig struct {
	ChunkSize       int `yaml:"chunkSize"`
	TopK            int `yaml:"topK"`
	MaxContentBytes int `yaml:"maxContentBytes"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/agent.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/agent.yaml"); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat("configs/prompts.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/prompts.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_READ_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.ReadTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_WRITE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.WriteTimeout = parsed
		}
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitAndTrim(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("LLM_DETERMINISTIC"); v != "" {
		cfg.LLM.Deterministic = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("AGENT_MAX_HISTORY_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxHistoryTokens = parsed
		}
	}
	if v := os.Getenv("AGENT_MAX_TOOL_TURNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxToolTurns = parsed
		}
	}
	if v := os.Getenv("AGENT_EXECUTION_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Agent.ExecutionTimeout = parsed
		}
	}
	if v := os.Getenv("BROKER_ADDR"); v != "" {
		cfg.Broker.Addr = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Broker.Addr = v
	}
	if v := os.Getenv("BROKER_IN_MEMORY"); v != "" {
		cfg.Broker.InMemory = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("BROKER_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Broker.Concurrency = parsed
		}
	}
	if v := os.Getenv("VECTORSTORE_BACKEND"); v != "" {
		cfg.VectorStore.Backend = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" {
		cfg.VectorStore.Addr = v
	}
	if v := os.Getenv("VECTORSTORE_COLLECTION"); v != "" {
		cfg.VectorStore.Collection = v
	}
	if v := os.Getenv("VECTORSTORE_DIMENSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.VectorStore.Dimensions = parsed
		}
	}
	if v := os.Getenv("POSTGRES_ENABLED"); v != "" {
		cfg.Postgres.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("WORKER_CONCURRENCY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Worker.Concurrency = parsed
		}
	}
	if v := os.Getenv("WORKER_CONVERSATION_TTL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Worker.ConversationTTLSeconds = parsed
		}
	}
	if v := os.Getenv("WORKER_RESULT_TTL_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Worker.ResultTTLSeconds = parsed
		}
	}
	if v := os.Getenv("INGEST_CHUNK_SIZE"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.ChunkSize = parsed
		}
	}
	if v := os.Getenv("INGEST_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.TopK = parsed
		}
	}
	if v := os.Getenv("INGEST_MAX_CONTENT_BYTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.MaxContentBytes = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8080",
			AllowedOrigins: []string{"*"},
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/documents",
				},
			},
		},
		LLM: LLMConfig{
			Model:          "gpt-4o-mini",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.2,
		},
		Agent: AgentConfig{
			Preamble:         "You are a helpful assistant that answers questions using the provided knowledge base tool whenever it might contain relevant information.",
			ToolDescription:  "Searches the knowledge base for passages relevant to a query.",
			NoResultsReply:   "No relevant information was found in the knowledge base.",
			MaxHistoryTokens: 1500,
			MaxToolTurns:     3,
			ExecutionTimeout: 30 * time.Second,
		},
		Broker: BrokerConfig{
			Addr:        "127.0.0.1:6379",
			InMemory:    false,
			Concurrency: 4,
		},
		VectorStore: VectorStoreConfig{
			Backend:    "memory",
			Collection: "documents",
			Dimensions: 1536,
		},
		Postgres: PostgresConfig{
			Enabled:  false,
			MaxConns: 10,
			MinConns: 2,
		},
		Worker: WorkerConfig{
			Concurrency:            4,
			ConversationTTLSeconds: 86400,
			ResultTTLSeconds:       86400,
		},
		Ingest: IngestConfig{
			ChunkSize:       1000,
			TopK:            5,
			MaxContentBytes: 5 << 20,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if !c.LLM.Deterministic && strings.TrimSpace(c.LLM.APIKey) == "" {
		return errors.New("llm.apiKey cannot be empty unless llm.deterministic is set")
	}
	if c.Agent.MaxHistoryTokens < 0 {
		return errors.New("agent.maxHistoryTokens cannot be negative")
	}
	if c.Agent.MaxToolTurns <= 0 {
		return errors.New("agent.maxToolTurns must be positive")
	}
	if c.Agent.ExecutionTimeout <= 0 {
		return errors.New("agent.executionTimeout must be positive")
	}
	if !c.Broker.InMemory && strings.TrimSpace(c.Broker.Addr) == "" {
		return errors.New("broker.addr cannot be empty unless broker.inMemory is set")
	}
	if c.Broker.Concurrency <= 0 {
		return errors.New("broker.concurrency must be positive")
	}
	switch c.VectorStore.Backend {
	case "memory":
	case "qdrant":
		if strings.TrimSpace(c.VectorStore.Addr) == "" {
			return errors.New("vectorStore.addr cannot be empty when backend is qdrant")
		}
	default:
		return fmt.Errorf("vectorStore.backend %q is not supported", c.VectorStore.Backend)
	}
	if c.VectorStore.Dimensions <= 0 {
		return errors.New("vectorStore.dimensions must be positive")
	}
	if c.Postgres.Enabled && strings.TrimSpace(c.Postgres.DSN) == "" {
		return errors.New("postgres.dsn cannot be empty when postgres is enabled")
	}
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be positive")
	}
	if c.Worker.ConversationTTLSeconds <= 0 {
		return errors.New("worker.conversationTtlSeconds must be positive")
	}
	if c.Worker.ResultTTLSeconds <= 0 {
		return errors.New("worker.resultTtlSeconds must be positive")
	}
	if c.Ingest.ChunkSize <= 0 {
		return errors.New("ingest.chunkSize must be positive")
	}
	if c.Ingest.TopK <= 0 {
		return errors.New("ingest.topK must be positive")
	}
	if c.Ingest.MaxContentBytes <= 0 {
		return errors.New("ingest.maxContentBytes must be positive")
	}
	return nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var result []string
	for _, part := range parts {
		val := strings.TrimSpace(part)
		if val != "" {
			result = append(result, val)
		}
	}
	return result
}
