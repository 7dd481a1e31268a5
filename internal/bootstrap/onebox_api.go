package bootstrap

import (
	"context"
	"strings"
	"time"

	"github.com/18vikastg/onebox/adapter/in/http"
	"github.com/18vikastg/onebox/config"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/infra/middleware"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewAPI builds the Fiber app over deps.
func NewAPI(cfg *config.Config, deps *Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             4 * 1024 * 1024,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          90 * time.Second,
	})

	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-Request-ID",
	}))

	http.NewHealthHandler(deps.HealthChecks()).Register(app)

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))

	var jobs out.JobProducer
	if deps.Producer != nil {
		jobs = deps.Producer
	}
	http.NewClassifyHandler(deps.Classifier, jobs, !cfg.NotifyInline).Register(api)
	http.NewReplyHandler(deps.Replies).Register(api)
	http.NewNotificationHandler(deps.Notifier).Register(api)

	var usage http.UsageReporter
	if deps.LLMClient != nil {
		usage = deps.LLMClient.Usage()
	}
	http.NewStatsHandler(deps.Counter, deps.Senders, usage).Register(api)

	return app
}

// HealthChecks returns a ping per connected backend.
func (d *Dependencies) HealthChecks() map[string]http.HealthCheck {
	checks := map[string]http.HealthCheck{}
	if d.SQLDB != nil {
		checks["postgres"] = d.SQLDB.PingContext
	}
	if d.Postgres != nil {
		checks["pgvector"] = d.Postgres.Ping
	}
	if d.SQLite != nil {
		checks["sqlite"] = d.SQLite.PingContext
	}
	if d.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() }
	}
	if d.MongoDB != nil {
		checks["mongodb"] = func(ctx context.Context) error { return d.MongoDB.Ping(ctx, nil) }
	}
	if d.Neo4j != nil {
		checks["neo4j"] = d.Neo4j.VerifyConnectivity
	}
	return checks
}
