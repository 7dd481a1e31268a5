package out

import (
	"context"
	"time"

	"github.com/18vikastg/onebox/core/domain"
)

// TemplateVectorStore persists template embeddings and answers nearest-neighbour queries.
// Implementations: in-memory, SQLite file, pgvector.
type TemplateVectorStore interface {
	// Upsert inserts or replaces records by ID.
	Upsert(ctx context.Context, records []TemplateVectorRecord) error
	// Query returns up to k hits ordered by ascending cosine distance.
	Query(ctx context.Context, embedding []float32, k int) ([]TemplateVectorHit, error)
	// Has reports whether a record with the given ID exists.
	Has(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
	// Signature returns the embedder recorded for the stored vectors, or nil if none is recorded.
	Signature(ctx context.Context) (*IndexSignature, error)
	SetSignature(ctx context.Context, sig IndexSignature) error
}

// IndexSignature identifies the embedder that produced the stored vectors.
type IndexSignature struct {
	Embedder   string `json:"embedder"`
	Dimensions int    `json:"dimensions"`
}

// TemplateVectorRecord is one stored template.
type TemplateVectorRecord struct {
	ID        string
	Document  string
	Embedding []float32
	Entry     domain.ReplyTemplateEntry
	CreatedAt time.Time
}

// TemplateVectorHit is a record with its cosine distance to the query, in [0,2].
type TemplateVectorHit struct {
	Record   TemplateVectorRecord
	Distance float64
}
