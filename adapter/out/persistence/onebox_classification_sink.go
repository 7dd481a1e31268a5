package persistence

import (
	"context"
	"fmt"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// =============================================================================
// Classification Result Sink (Postgres)
// =============================================================================

const classificationSchema = `
CREATE TABLE IF NOT EXISTS classification_results (
	id            TEXT PRIMARY KEY,
	message_id    TEXT NOT NULL DEFAULT '',
	account       TEXT NOT NULL DEFAULT '',
	subject       TEXT NOT NULL DEFAULT '',
	sender        TEXT NOT NULL DEFAULT '',
	category      TEXT NOT NULL,
	method        TEXT NOT NULL,
	confidence    DOUBLE PRECISION NOT NULL,
	latency_ms    BIGINT NOT NULL,
	signals       TEXT[] NOT NULL DEFAULT '{}',
	error         TEXT NOT NULL DEFAULT '',
	classified_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_classification_results_category ON classification_results (category, classified_at DESC);
`

// ClassificationPostgresSink writes classification records to Postgres.
type ClassificationPostgresSink struct {
	db *sqlx.DB
}

func NewClassificationPostgresSink(db *sqlx.DB) *ClassificationPostgresSink {
	return &ClassificationPostgresSink{db: db}
}

func (s *ClassificationPostgresSink) Name() string { return "postgres" }

// EnsureSchema creates the results table.
func (s *ClassificationPostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, classificationSchema); err != nil {
		return fmt.Errorf("failed to create classification_results: %w", err)
	}
	return nil
}

// Save upserts the record; reclassifying a message overwrites the earlier result.
func (s *ClassificationPostgresSink) Save(ctx context.Context, rec *domain.ClassificationRecord) error {
	if rec == nil || rec.Message == nil || rec.Result == nil {
		return fmt.Errorf("incomplete classification record")
	}
	msg, res := rec.Message, rec.Result

	query := `
		INSERT INTO classification_results (
			id, message_id, account, subject, sender, category, method,
			confidence, latency_ms, signals, error, classified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			method = EXCLUDED.method,
			confidence = EXCLUDED.confidence,
			latency_ms = EXCLUDED.latency_ms,
			signals = EXCLUDED.signals,
			error = EXCLUDED.error,
			classified_at = EXCLUDED.classified_at
	`

	signals := res.Signals
	if signals == nil {
		signals = []string{}
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID, msg.ID, msg.Account, msg.Subject, msg.Sender,
		string(res.Category), string(res.Method), res.Confidence, res.LatencyMs,
		pq.Array(signals), res.Error, res.ClassifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}
	return nil
}

// CountByCategory returns how many stored results fall in each category.
func (s *ClassificationPostgresSink) CountByCategory(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Category string `db:"category"`
		Count    int    `db:"count"`
	}
	query := `SELECT category, COUNT(*) AS count FROM classification_results GROUP BY category`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to count classifications: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Category] = r.Count
	}
	return counts, nil
}

var (
	_ out.ResultSink            = (*ClassificationPostgresSink)(nil)
	_ out.ClassificationCounter = (*ClassificationPostgresSink)(nil)
)
