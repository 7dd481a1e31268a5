package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/18vikastg/onebox/adapter/out/graph"
	"github.com/18vikastg/onebox/adapter/out/messaging"
	"github.com/18vikastg/onebox/adapter/out/mongodb"
	"github.com/18vikastg/onebox/adapter/out/persistence"
	"github.com/18vikastg/onebox/config"
	"github.com/18vikastg/onebox/core/agent/llm"
	"github.com/18vikastg/onebox/core/agent/rag"
	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/core/service/classification"
	"github.com/18vikastg/onebox/core/service/notification"
	"github.com/18vikastg/onebox/infra/database"
	"github.com/18vikastg/onebox/internal/stream"
	"github.com/18vikastg/onebox/pkg/cache"
	"github.com/18vikastg/onebox/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies holds every wired component. Optional backends are nil when
// their URL is unset or the connection failed.
type Dependencies struct {
	Config *config.Config
	Log    zerolog.Logger

	Postgres *pgxpool.Pool
	SQLDB    *sqlx.DB
	SQLite   *sqlx.DB
	Redis    *redis.Client
	MongoDB  *mongo.Client
	Neo4j    neo4j.DriverWithContext

	LLMClient *llm.Client
	Notifier  *notification.Notifier

	Classifier *classification.Orchestrator
	Replies    *rag.ReplyEngine

	Events   *messaging.EventPublisher
	Stream   *stream.RedisStream
	Producer *stream.Producer

	Counter out.ClassificationCounter
	Senders out.SenderRanking

	closers []func()
}

func (d *Dependencies) onClose(fn func()) {
	d.closers = append(d.closers, fn)
}

// Close releases connections in reverse order of acquisition.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
}

// NewDependencies connects configured backends and wires services. The returned
// cleanup is deps.Close.
func NewDependencies(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg, Log: log}
	fail := func(err error) (*Dependencies, func(), error) {
		deps.Close()
		return nil, nil, err
	}

	// Postgres: result sink over sqlx, pgvector template store over pgxpool.
	if cfg.DatabaseURL != "" {
		sqlDB, err := database.NewSQLX(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Postgres (sqlx) connection failed: %v", err)
		} else {
			deps.SQLDB = sqlDB
			deps.onClose(func() { sqlDB.Close() })
			logger.Info("Postgres (sqlx) connected")
		}

		if cfg.VectorStore == "pgvector" {
			pool, err := database.NewPostgres(ctx, cfg.DatabaseURL, nil)
			if err != nil {
				return fail(fmt.Errorf("pgvector store: %w", err))
			}
			deps.Postgres = pool
			deps.onClose(pool.Close)
		}
	}

	if cfg.RedisURL != "" {
		client, err := database.NewRedis(ctx, cfg.RedisURL, nil)
		if err != nil {
			logger.Warn("Redis connection failed: %v", err)
		} else {
			deps.Redis = client
			deps.onClose(func() { client.Close() })
			logger.Info("Redis connected")
		}
	}

	var mongoDB *mongo.Database
	if cfg.MongoDBURL != "" {
		client, db, err := database.NewMongo(ctx, cfg.MongoDBURL, cfg.MongoDBName)
		if err != nil {
			logger.Warn("MongoDB connection failed: %v", err)
		} else {
			deps.MongoDB = client
			mongoDB = db
			deps.onClose(func() { _ = client.Disconnect(context.Background()) })
			logger.Info("MongoDB connected (db=%s)", cfg.MongoDBName)
		}
	}

	if cfg.Neo4jURL != "" {
		driver, err := database.NewNeo4j(ctx, cfg.Neo4jURL, cfg.Neo4jUsername, cfg.Neo4jPassword)
		if err != nil {
			logger.Warn("Neo4j connection failed: %v", err)
		} else {
			deps.Neo4j = driver
			deps.onClose(func() { _ = driver.Close(context.Background()) })
			logger.Info("Neo4j connected")
		}
	}

	if cfg.LLMEnabled() {
		deps.LLMClient = llm.NewClientWithConfig(llm.ClientConfig{
			APIKey:              cfg.OpenAIAPIKey,
			Model:               cfg.LLMModel,
			EmbeddingModel:      cfg.EmbeddingModel,
			Timeout:             cfg.LLMTimeout(),
			ClassifyMaxTokens:   cfg.ClassifyMaxTokens,
			ClassifyTemperature: cfg.ClassifyTemperature,
			ClassifyBodyLimit:   cfg.ClassifyBodyLimit,
			ReplyMaxTokens:      cfg.ReplyMaxTokens,
			ReplyTemperature:    cfg.ReplyTemperature,
		})
		logger.Info("LLM client configured (model=%s)", cfg.LLMModel)
	} else {
		logger.Warn("OPENAI_API_KEY not set: rule-only classification, template-only replies")
	}

	deps.Notifier = notification.NewNotifier(notification.Config{
		SlackWebhookURL:      cfg.SlackWebhookURL,
		AutomationWebhookURL: cfg.AutomationWebhookURL,
		DashboardURL:         cfg.DashboardURL,
		Timeout:              cfg.NotifyTimeout(),
	})

	if deps.Redis != nil {
		deps.Events = messaging.NewEventPublisher(deps.Redis)
		deps.Stream = stream.NewRedisStream(deps.Redis, cfg.StreamGroup, log)
		deps.Producer = stream.NewProducer(deps.Stream)
	}

	sinks, err := deps.resultSinks(ctx, mongoDB)
	if err != nil {
		return fail(err)
	}
	deps.Classifier = classification.NewOrchestrator(
		classification.NewRuleMatcher(),
		classification.NewLLMClassifier(labelClassifier(deps.LLMClient)),
		deps.Notifier,
		classification.NewFanoutSink(sinks...),
		classification.OrchestratorConfig{NotifyInline: cfg.NotifyInline},
	)

	replies, err := deps.replyEngine(ctx)
	if err != nil {
		return fail(err)
	}
	deps.Replies = replies

	return deps, deps.Close, nil
}

// resultSinks builds one sink per connected backend and prepares its schema.
func (d *Dependencies) resultSinks(ctx context.Context, mongoDB *mongo.Database) ([]out.ResultSink, error) {
	var sinks []out.ResultSink

	if d.SQLDB != nil {
		pg := persistence.NewClassificationPostgresSink(d.SQLDB)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("postgres sink schema: %w", err)
		}
		sinks = append(sinks, pg)
		d.Counter = pg
	}
	if mongoDB != nil {
		mg := mongodb.NewClassificationSink(mongoDB)
		if err := mg.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("MongoDB index creation failed")
		}
		sinks = append(sinks, mg)
		if d.Counter == nil {
			d.Counter = mg
		}
	}
	if d.Neo4j != nil {
		gs := graph.NewSenderGraphSink(d.Neo4j, "")
		if err := gs.EnsureIndexes(ctx); err != nil {
			logger.WithError(err).Warn("Neo4j constraint creation failed")
		}
		sinks = append(sinks, gs)
		d.Senders = gs
	}
	if d.Events != nil {
		sinks = append(sinks, d.Events)
	}

	names := make([]string, 0, len(sinks))
	for _, s := range sinks {
		names = append(names, s.Name())
	}
	logger.Info("Result sinks: %v", names)
	return sinks, nil
}

// replyEngine builds the embedder, template store and index, and seeds the library.
func (d *Dependencies) replyEngine(ctx context.Context) (*rag.ReplyEngine, error) {
	cfg := d.Config

	embedder, err := rag.NewEmbedder(rag.EmbedderConfig{
		Provider:   cfg.EmbeddingProvider,
		Dimensions: cfg.EmbeddingDimensions,
		Model:      cfg.EmbeddingModel,
		Client:     d.LLMClient,
	})
	if err != nil {
		return nil, fmt.Errorf("embedder: %w", err)
	}

	cacheCfg := &rag.EmbeddingCacheConfig{
		MaxSize: cfg.EmbeddingCacheEntries,
		TTL:     cfg.EmbeddingCacheTTL(),
		Prefix:  "emb:" + embedder.Name() + ":",
	}
	if d.Redis != nil {
		cacheCfg.Shared = cache.NewRedisCache(d.Redis, "onebox:")
	}
	embedder = rag.NewCachedEmbedder(embedder, rag.NewEmbeddingCache(cacheCfg))

	store, err := d.templateStore(ctx, embedder.Dimensions())
	if err != nil {
		return nil, err
	}
	index := rag.NewTemplateIndex(store, embedder)

	library := rag.BuiltinTemplates()
	if cfg.TemplatesFile != "" {
		extra, err := rag.LoadTemplatesFile(cfg.TemplatesFile)
		if err != nil {
			return nil, fmt.Errorf("templates file: %w", err)
		}
		library = append(library, extra...)
		logger.Info("Loaded %d templates from %s", len(extra), cfg.TemplatesFile)
	}
	added, err := index.Seed(ctx, library)
	if errors.Is(err, rag.ErrEmbedderMismatch) {
		return nil, fmt.Errorf("seed template index (restore the previous EMBEDDING_* settings or rebuild the %s store): %w",
			cfg.VectorStore, err)
	}
	if err != nil {
		return nil, fmt.Errorf("seed template index: %w", err)
	}
	logger.Info("Template index ready (store=%s, embedder=%s, seeded=%d)", cfg.VectorStore, embedder.Name(), added)

	threshold := cfg.SimilarityThreshold
	return rag.NewReplyEngine(index, replySynthesizer(d.LLMClient), rag.EngineConfig{
		Threshold: &threshold,
		User: domain.UserContext{
			Name:         cfg.UserName,
			Email:        cfg.UserEmail,
			Phone:        cfg.UserPhone,
			CalendarLink: cfg.UserCalendar,
			CurrentRole:  cfg.UserRole,
			Company:      cfg.UserCompany,
			Location:     cfg.UserLocation,
		},
	}), nil
}

func (d *Dependencies) templateStore(ctx context.Context, dims int) (out.TemplateVectorStore, error) {
	switch d.Config.VectorStore {
	case "memory":
		return rag.NewMemoryStore(), nil
	case "pgvector":
		s := persistence.NewTemplatePgVectorStore(d.Postgres, dims)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("pgvector schema: %w", err)
		}
		return s, nil
	default:
		db, err := database.OpenSQLite(ctx, d.Config.VectorDBPath)
		if err != nil {
			return nil, err
		}
		d.SQLite = db
		d.onClose(func() { db.Close() })
		s := persistence.NewTemplateSQLiteStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("sqlite schema: %w", err)
		}
		return s, nil
	}
}

// labelClassifier and replySynthesizer keep a nil client from becoming a non-nil interface.
func labelClassifier(c *llm.Client) out.LabelClassifier {
	if c == nil {
		return nil
	}
	return c
}

func replySynthesizer(c *llm.Client) out.ReplySynthesizer {
	if c == nil {
		return nil
	}
	return c
}
