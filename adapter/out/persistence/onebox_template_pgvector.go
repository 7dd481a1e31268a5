package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// =============================================================================
// pgvector Template Store
// =============================================================================

// TemplatePgVectorStore keeps reply templates in Postgres and lets pgvector rank them.
type TemplatePgVectorStore struct {
	db   *pgxpool.Pool
	dims int
}

func NewTemplatePgVectorStore(db *pgxpool.Pool, dims int) *TemplatePgVectorStore {
	return &TemplatePgVectorStore{db: db, dims: dims}
}

// EnsureSchema creates the extension and table sized to the embedder's dimensions.
func (s *TemplatePgVectorStore) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS reply_templates (
				id          TEXT PRIMARY KEY,
				scenario_id TEXT NOT NULL,
				document    TEXT NOT NULL,
				embedding   vector(%d) NOT NULL,
				entry       JSONB NOT NULL,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`, s.dims),
		`CREATE TABLE IF NOT EXISTS reply_template_meta (
			id         SMALLINT PRIMARY KEY CHECK (id = 1),
			embedder   TEXT NOT NULL,
			dimensions INTEGER NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare pgvector schema: %w", err)
		}
	}
	return nil
}

func (s *TemplatePgVectorStore) Upsert(ctx context.Context, records []out.TemplateVectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO reply_templates (id, scenario_id, document, embedding, entry, created_at)
		VALUES ($1, $2, $3, $4::vector, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			document = EXCLUDED.document,
			embedding = EXCLUDED.embedding,
			entry = EXCLUDED.entry
	`

	batch := &pgx.Batch{}
	for _, r := range records {
		entry, err := json.Marshal(r.Entry)
		if err != nil {
			return err
		}
		batch.Queue(query, r.ID, r.Entry.ScenarioID, r.Document, pgVector(r.Embedding), string(entry), r.CreatedAt)
	}

	br := s.db.SendBatch(ctx, batch)
	defer br.Close()
	for range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to upsert template: %w", err)
		}
	}
	return nil
}

// Query orders by the cosine distance operator <=>.
func (s *TemplatePgVectorStore) Query(ctx context.Context, embedding []float32, k int) ([]out.TemplateVectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, document, entry, created_at, embedding <=> $1::vector AS distance
		FROM reply_templates
		ORDER BY distance, id
		LIMIT $2
	`, pgVector(embedding), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var hits []out.TemplateVectorHit
	for rows.Next() {
		var (
			h         out.TemplateVectorHit
			entry     []byte
			createdAt time.Time
		)
		if err := rows.Scan(&h.Record.ID, &h.Record.Document, &entry, &createdAt, &h.Distance); err != nil {
			return nil, err
		}
		var e domain.ReplyTemplateEntry
		if err := json.Unmarshal(entry, &e); err != nil {
			return nil, fmt.Errorf("decode template %s: %w", h.Record.ID, err)
		}
		h.Record.Entry = e
		h.Record.CreatedAt = createdAt
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (s *TemplatePgVectorStore) Has(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reply_templates WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *TemplatePgVectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM reply_templates`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *TemplatePgVectorStore) Signature(ctx context.Context) (*out.IndexSignature, error) {
	var sig out.IndexSignature
	err := s.db.QueryRow(ctx, `SELECT embedder, dimensions FROM reply_template_meta WHERE id = 1`).
		Scan(&sig.Embedder, &sig.Dimensions)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read index signature: %w", err)
	}
	return &sig, nil
}

func (s *TemplatePgVectorStore) SetSignature(ctx context.Context, sig out.IndexSignature) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO reply_template_meta (id, embedder, dimensions) VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET embedder = EXCLUDED.embedder, dimensions = EXCLUDED.dimensions`,
		sig.Embedder, sig.Dimensions)
	if err != nil {
		return fmt.Errorf("failed to write index signature: %w", err)
	}
	return nil
}

// pgVector converts a float32 slice to the pgvector text format.
func pgVector(v []float32) string {
	if len(v) == 0 {
		return "[0]"
	}

	buf := make([]byte, 0, len(v)*13+2)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendFloat(buf, float64(f), 'f', 6, 32)
	}
	buf = append(buf, ']')
	return string(buf)
}

var _ out.TemplateVectorStore = (*TemplatePgVectorStore)(nil)
