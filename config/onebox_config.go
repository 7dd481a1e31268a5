package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// generateWorkerID creates a unique worker ID using hostname and PID
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "worker"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	MongoDBURL  string `env:"MONGODB_URL"`
	MongoDBName string `env:"MONGODB_DATABASE" envDefault:"onebox"`
	RedisURL    string `env:"REDIS_URL"`

	// Neo4j
	Neo4jURL      string `env:"NEO4J_URL"`
	Neo4jUsername string `env:"NEO4J_USERNAME" envDefault:"neo4j"`
	Neo4jPassword string `env:"NEO4J_PASSWORD"`

	// OpenAI
	OpenAIAPIKey          string  `env:"OPENAI_API_KEY"`
	LLMModel              string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMTimeoutSec         int     `env:"LLM_TIMEOUT_SEC" envDefault:"30"`
	ClassifyMaxTokens     int     `env:"LLM_CLASSIFY_MAX_TOKENS" envDefault:"20"`
	ClassifyTemperature   float32 `env:"LLM_CLASSIFY_TEMPERATURE" envDefault:"0.1"`
	ClassifyBodyLimit     int     `env:"LLM_CLASSIFY_BODY_LIMIT" envDefault:"1500"`
	ReplyMaxTokens        int     `env:"LLM_REPLY_MAX_TOKENS" envDefault:"300"`
	ReplyTemperature      float32 `env:"LLM_REPLY_TEMPERATURE" envDefault:"0.7"`
	EmbeddingProvider     string  `env:"EMBEDDING_PROVIDER" envDefault:"local"`
	EmbeddingModel        string  `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingDimensions   int     `env:"EMBEDDING_DIMENSIONS" envDefault:"384"`
	EmbeddingCacheTTLMin  int     `env:"EMBEDDING_CACHE_TTL_MIN" envDefault:"60"`
	EmbeddingCacheEntries int     `env:"EMBEDDING_CACHE_MAX_ENTRIES" envDefault:"5000"`

	// Notifier
	SlackWebhookURL      string `env:"SLACK_WEBHOOK_URL"`
	AutomationWebhookURL string `env:"AUTOMATION_WEBHOOK_URL"`
	NotifyTimeoutSec     int    `env:"NOTIFY_TIMEOUT_SEC" envDefault:"10"`
	NotifyInline         bool   `env:"NOTIFY_INLINE" envDefault:"true"`
	DashboardURL         string `env:"DASHBOARD_URL" envDefault:"http://localhost:4000"`

	// Reply suggestions
	VectorStore         string  `env:"VECTOR_STORE" envDefault:"sqlite"`
	VectorDBPath        string  `env:"VECTOR_DB_PATH" envDefault:"./reply_vector_db/templates.db"`
	TemplatesFile       string  `env:"TEMPLATES_FILE"`
	SimilarityThreshold float64 `env:"RAG_SIMILARITY_THRESHOLD" envDefault:"0.4"`

	// Reply signature
	UserName     string `env:"USER_NAME" envDefault:"Your Name"`
	UserEmail    string `env:"USER_EMAIL"`
	UserPhone    string `env:"USER_PHONE"`
	UserCalendar string `env:"USER_CALENDAR"`
	UserRole     string `env:"USER_ROLE"`
	UserCompany  string `env:"USER_COMPANY"`
	UserLocation string `env:"USER_LOCATION"`

	// Worker
	WorkerID        string `env:"WORKER_ID"`
	WorkerMax       int    `env:"WORKER_MAX" envDefault:"8"`
	WorkerBatchSize int    `env:"WORKER_BATCH_SIZE" envDefault:"10"`
	WorkerQueueSize int    `env:"WORKER_QUEUE_SIZE" envDefault:"256"`

	// Consumer (Redis Stream)
	StreamGroup       string `env:"STREAM_GROUP" envDefault:"onebox"`
	ConsumerBatchSize int    `env:"CONSUMER_BATCH_SIZE" envDefault:"50"`
	ConsumerBlockMS   int    `env:"CONSUMER_BLOCK_MS" envDefault:"5000"`

	// HTTP
	RateLimitPerMin int `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.WorkerID == "" {
		cfg.WorkerID = generateWorkerID()
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.EmbeddingProvider {
	case "local":
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("EMBEDDING_PROVIDER=openai requires OPENAI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q", c.EmbeddingProvider)
	}

	switch c.VectorStore {
	case "sqlite", "memory":
	case "pgvector":
		if c.DatabaseURL == "" {
			return fmt.Errorf("VECTOR_STORE=pgvector requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown VECTOR_STORE %q", c.VectorStore)
	}

	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("RAG_SIMILARITY_THRESHOLD must be within [0,1], got %v", c.SimilarityThreshold)
	}
	return nil
}

// LLMEnabled reports whether an LLM credential is configured.
func (c *Config) LLMEnabled() bool {
	return c.OpenAIAPIKey != ""
}

// LLMTimeout returns the per-call LLM deadline.
func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

// NotifyTimeout returns the per-channel notification deadline.
func (c *Config) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutSec) * time.Second
}

// EmbeddingCacheTTL returns how long computed embeddings stay cached.
func (c *Config) EmbeddingCacheTTL() time.Duration {
	return time.Duration(c.EmbeddingCacheTTLMin) * time.Minute
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
