// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/vecmath"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
)

// =============================================================================
// SQLite Template Store
// =============================================================================

const sqliteTemplateSchema = `
CREATE TABLE IF NOT EXISTS reply_templates (
	id              TEXT PRIMARY KEY,
	scenario_id     TEXT NOT NULL,
	document        TEXT NOT NULL,
	embedding       TEXT NOT NULL,
	pattern_text    TEXT NOT NULL,
	context         TEXT NOT NULL DEFAULT '',
	template_body   TEXT NOT NULL,
	category        TEXT NOT NULL DEFAULT '',
	urgency         TEXT NOT NULL DEFAULT 'medium',
	base_confidence REAL NOT NULL DEFAULT 0,
	created_at      INTEGER NOT NULL
)`

const sqliteTemplateMetaSchema = `
CREATE TABLE IF NOT EXISTS reply_template_meta (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	embedder   TEXT NOT NULL,
	dimensions INTEGER NOT NULL
)`

// TemplateSQLiteStore persists the reply template library in a single SQLite file
// and scores candidates in process.
type TemplateSQLiteStore struct {
	db *sqlx.DB
}

// NewTemplateSQLiteStore wraps an open SQLite handle. Call EnsureSchema before use.
func NewTemplateSQLiteStore(db *sqlx.DB) *TemplateSQLiteStore {
	return &TemplateSQLiteStore{db: db}
}

// EnsureSchema creates the template and signature tables if they do not exist.
func (s *TemplateSQLiteStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{sqliteTemplateSchema, sqliteTemplateMetaSchema} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create template schema: %w", err)
		}
	}
	return nil
}

// templateRow represents the database row.
type templateRow struct {
	ID             string  `db:"id"`
	ScenarioID     string  `db:"scenario_id"`
	Document       string  `db:"document"`
	Embedding      string  `db:"embedding"`
	PatternText    string  `db:"pattern_text"`
	Context        string  `db:"context"`
	TemplateBody   string  `db:"template_body"`
	Category       string  `db:"category"`
	Urgency        string  `db:"urgency"`
	BaseConfidence float64 `db:"base_confidence"`
	CreatedAt      int64   `db:"created_at"`
}

func toTemplateRow(r out.TemplateVectorRecord) (templateRow, error) {
	emb, err := json.Marshal(r.Embedding)
	if err != nil {
		return templateRow{}, err
	}
	return templateRow{
		ID:             r.ID,
		ScenarioID:     r.Entry.ScenarioID,
		Document:       r.Document,
		Embedding:      string(emb),
		PatternText:    r.Entry.PatternText,
		Context:        r.Entry.Context,
		TemplateBody:   r.Entry.TemplateBody,
		Category:       r.Entry.Category,
		Urgency:        string(r.Entry.Urgency),
		BaseConfidence: r.Entry.BaseConfidence,
		CreatedAt:      r.CreatedAt.UnixMilli(),
	}, nil
}

func (r *templateRow) toRecord() (out.TemplateVectorRecord, error) {
	var emb []float32
	if err := json.Unmarshal([]byte(r.Embedding), &emb); err != nil {
		return out.TemplateVectorRecord{}, fmt.Errorf("decode embedding for %s: %w", r.ID, err)
	}
	return out.TemplateVectorRecord{
		ID:        r.ID,
		Document:  r.Document,
		Embedding: emb,
		Entry: domain.ReplyTemplateEntry{
			ScenarioID:     r.ScenarioID,
			PatternText:    r.PatternText,
			Context:        r.Context,
			TemplateBody:   r.TemplateBody,
			Category:       r.Category,
			Urgency:        domain.Urgency(r.Urgency),
			BaseConfidence: r.BaseConfidence,
		},
		CreatedAt: time.UnixMilli(r.CreatedAt).UTC(),
	}, nil
}

// Upsert writes all records in one transaction.
func (s *TemplateSQLiteStore) Upsert(ctx context.Context, records []out.TemplateVectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reply_templates (
			id, scenario_id, document, embedding, pattern_text, context,
			template_body, category, urgency, base_confidence, created_at
		) VALUES (
			:id, :scenario_id, :document, :embedding, :pattern_text, :context,
			:template_body, :category, :urgency, :base_confidence, :created_at
		)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			embedding = excluded.embedding,
			pattern_text = excluded.pattern_text,
			context = excluded.context,
			template_body = excluded.template_body,
			category = excluded.category,
			urgency = excluded.urgency,
			base_confidence = excluded.base_confidence`

	for _, r := range records {
		row, err := toTemplateRow(r)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
			return fmt.Errorf("failed to upsert template %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// Query loads every stored embedding and ranks by cosine distance.
func (s *TemplateSQLiteStore) Query(ctx context.Context, embedding []float32, k int) ([]out.TemplateVectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	var rows []templateRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT * FROM reply_templates`); err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	hits := make([]out.TemplateVectorHit, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].toRecord()
		if err != nil {
			return nil, err
		}
		dist, err := vecmath.CosineDistance(embedding, rec.Embedding)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", rec.ID, err)
		}
		hits = append(hits, out.TemplateVectorHit{Record: rec, Distance: dist})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *TemplateSQLiteStore) Has(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, `SELECT 1 FROM reply_templates WHERE id = ?`, id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up template: %w", err)
	}
	return true, nil
}

func (s *TemplateSQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM reply_templates`); err != nil {
		return 0, fmt.Errorf("failed to count templates: %w", err)
	}
	return n, nil
}

func (s *TemplateSQLiteStore) Signature(ctx context.Context) (*out.IndexSignature, error) {
	var sig out.IndexSignature
	err := s.db.QueryRowxContext(ctx, `SELECT embedder, dimensions FROM reply_template_meta WHERE id = 1`).
		Scan(&sig.Embedder, &sig.Dimensions)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index signature: %w", err)
	}
	return &sig, nil
}

func (s *TemplateSQLiteStore) SetSignature(ctx context.Context, sig out.IndexSignature) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reply_template_meta (id, embedder, dimensions) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET embedder = excluded.embedder, dimensions = excluded.dimensions`,
		sig.Embedder, sig.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to write index signature: %w", err)
	}
	return nil
}

var _ out.TemplateVectorStore = (*TemplateSQLiteStore)(nil)
