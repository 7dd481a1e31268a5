package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/18vikastg/onebox/core/agent/rag"
	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newSQLiteStore(t *testing.T) (*TemplateSQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "templates.db")
	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewTemplateSQLiteStore(db)
	require.NoError(t, store.EnsureSchema(context.Background()))
	return store, path
}

func record(id string, emb []float32) out.TemplateVectorRecord {
	return out.TemplateVectorRecord{
		ID:        "template_" + id,
		Document:  id + " pattern",
		Embedding: emb,
		Entry: domain.ReplyTemplateEntry{
			ScenarioID:     id,
			PatternText:    id + " pattern",
			TemplateBody:   "Hi\n{name}",
			Category:       "general",
			Urgency:        domain.UrgencyLow,
			BaseConfidence: 0.6,
		},
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestTemplateSQLiteStore_UpsertQuery(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, []out.TemplateVectorRecord{
		record("east", []float32{1, 0}),
		record("north", []float32{0, 1}),
		record("northeast", []float32{1, 1}),
	}))

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	hits, err := store.Query(ctx, []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "template_east", hits[0].Record.ID)
	assert.Equal(t, "template_northeast", hits[1].Record.ID)
	assert.Less(t, hits[0].Distance, hits[1].Distance)

	got := hits[0].Record
	assert.Equal(t, "east", got.Entry.ScenarioID)
	assert.Equal(t, domain.UrgencyLow, got.Entry.Urgency)
	assert.Equal(t, "Hi\n{name}", got.Entry.TemplateBody)
	assert.Equal(t, []float32{1, 0}, got.Embedding)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}

func TestTemplateSQLiteStore_HasAndReplace(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	has, err := store.Has(ctx, "template_east")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.Upsert(ctx, []out.TemplateVectorRecord{record("east", []float32{1, 0})}))
	updated := record("east", []float32{0, 1})
	updated.Entry.Category = "updated"
	require.NoError(t, store.Upsert(ctx, []out.TemplateVectorRecord{updated}))

	has, err = store.Has(ctx, "template_east")
	require.NoError(t, err)
	assert.True(t, has)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	hits, err := store.Query(ctx, []float32{0, 1}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "updated", hits[0].Record.Entry.Category)
	assert.InDelta(t, 0, hits[0].Distance, 1e-9)
}

func TestTemplateSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	store, path := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []out.TemplateVectorRecord{record("east", []float32{1, 0})}))

	db, err := sqlx.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	reopened := NewTemplateSQLiteStore(db)
	require.NoError(t, reopened.EnsureSchema(ctx))
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTemplateSQLiteStore_DimensionMismatch(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()
	require.NoError(t, store.Upsert(ctx, []out.TemplateVectorRecord{record("east", []float32{1, 0})}))

	_, err := store.Query(ctx, []float32{1, 0, 0}, 1)
	assert.Error(t, err)
}

func TestTemplateSQLiteStore_Signature(t *testing.T) {
	store, _ := newSQLiteStore(t)
	ctx := context.Background()

	sig, err := store.Signature(ctx)
	require.NoError(t, err)
	assert.Nil(t, sig)

	require.NoError(t, store.SetSignature(ctx, out.IndexSignature{Embedder: "local-hash", Dimensions: 384}))
	require.NoError(t, store.SetSignature(ctx, out.IndexSignature{Embedder: "local-hash", Dimensions: 256}))

	sig, err = store.Signature(ctx)
	require.NoError(t, err)
	require.NotNil(t, sig)
	assert.Equal(t, out.IndexSignature{Embedder: "local-hash", Dimensions: 256}, *sig)
}

func TestTemplateSQLiteStore_ReopenWithOtherEmbedder(t *testing.T) {
	store, path := newSQLiteStore(t)
	ctx := context.Background()

	added, err := rag.NewTemplateIndex(store, rag.NewHashEmbedder(384)).Seed(ctx, rag.BuiltinTemplates())
	require.NoError(t, err)
	require.Equal(t, 16, added)

	reopen := func(dims int) *rag.TemplateIndex {
		db, err := sqlx.Open("sqlite", path)
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		s := NewTemplateSQLiteStore(db)
		require.NoError(t, s.EnsureSchema(ctx))
		return rag.NewTemplateIndex(s, rag.NewHashEmbedder(dims))
	}

	_, err = reopen(256).Seed(ctx, rag.BuiltinTemplates())
	assert.ErrorIs(t, err, rag.ErrEmbedderMismatch)

	same := reopen(384)
	added, err = same.Seed(ctx, rag.BuiltinTemplates())
	require.NoError(t, err)
	assert.Zero(t, added)
	matches, err := same.Query(ctx, "could you do a code review of my pull request", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "code_review_request", matches[0].Entry.ScenarioID)
}

func TestPgVector(t *testing.T) {
	assert.Equal(t, "[0]", pgVector(nil))
	assert.Equal(t, "[1.000000,-0.500000]", pgVector([]float32{1, -0.5}))
}
