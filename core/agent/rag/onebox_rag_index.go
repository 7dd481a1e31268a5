package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/logger"
	"github.com/18vikastg/onebox/pkg/vecmath"
)

const templateIDPrefix = "template_"

var (
	ErrDuplicateScenario = errors.New("scenario already indexed")
	ErrInvalidTemplate   = errors.New("invalid reply template")
	// ErrEmbedderMismatch means the stored vectors came from another embedder.
	ErrEmbedderMismatch = errors.New("template index was built with a different embedder")
)

// TemplateIndex embeds reply templates and answers similarity queries over them.
type TemplateIndex struct {
	store    out.TemplateVectorStore
	embedder out.Embedder
	now      func() time.Time

	mu    sync.Mutex
	bound bool
}

func NewTemplateIndex(store out.TemplateVectorStore, embedder out.Embedder) *TemplateIndex {
	return &TemplateIndex{store: store, embedder: embedder, now: time.Now}
}

// TemplateID is the storage key for a scenario.
func TemplateID(scenarioID string) string {
	return templateIDPrefix + scenarioID
}

// Add validates, embeds, and stores entries. A scenario already present in the
// store or repeated within entries is rejected and nothing is written.
func (ix *TemplateIndex) Add(ctx context.Context, entries []domain.ReplyTemplateEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ix.bind(ctx); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(entries))
	for i := range entries {
		if err := ValidateEntry(&entries[i]); err != nil {
			return err
		}
		id := entries[i].ScenarioID
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateScenario, id)
		}
		seen[id] = struct{}{}

		exists, err := ix.store.Has(ctx, TemplateID(id))
		if err != nil {
			return fmt.Errorf("check scenario %s: %w", id, err)
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrDuplicateScenario, id)
		}
	}

	return ix.write(ctx, entries)
}

// Seed adds entries whose scenario is not yet stored and returns how many were written.
// It fails with ErrEmbedderMismatch when the store was built by a different embedder.
func (ix *TemplateIndex) Seed(ctx context.Context, entries []domain.ReplyTemplateEntry) (int, error) {
	if err := ix.bind(ctx); err != nil {
		return 0, err
	}
	pending := make([]domain.ReplyTemplateEntry, 0, len(entries))
	for i := range entries {
		if err := ValidateEntry(&entries[i]); err != nil {
			return 0, err
		}
		exists, err := ix.store.Has(ctx, TemplateID(entries[i].ScenarioID))
		if err != nil {
			return 0, err
		}
		if !exists {
			pending = append(pending, entries[i])
		}
	}
	if len(pending) == 0 {
		return 0, nil
	}
	if err := ix.write(ctx, pending); err != nil {
		return 0, err
	}
	logger.WithFields(map[string]any{
		"added":    len(pending),
		"skipped":  len(entries) - len(pending),
		"embedder": ix.embedder.Name(),
	}).Info("[TemplateIndex] seeded templates")
	return len(pending), nil
}

// Query returns up to k matches ordered by descending similarity.
func (ix *TemplateIndex) Query(ctx context.Context, text string, k int) ([]domain.SimilarityMatch, error) {
	if err := ix.bind(ctx); err != nil {
		return nil, err
	}
	embedding, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := ix.store.Query(ctx, embedding, k)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}

	matches := make([]domain.SimilarityMatch, 0, len(hits))
	for _, h := range hits {
		matches = append(matches, domain.SimilarityMatch{
			Entry:      h.Record.Entry,
			Similarity: vecmath.SimilarityFromDistance(h.Distance),
		})
	}
	return matches, nil
}

func (ix *TemplateIndex) Count(ctx context.Context) (int, error) {
	return ix.store.Count(ctx)
}

// EmbedderName identifies the embedding backend.
func (ix *TemplateIndex) EmbedderName() string {
	return ix.embedder.Name()
}

// bind checks the store's recorded embedder against ours, recording ours on an
// empty store. Vectors from another embedder are never mixed or compared.
func (ix *TemplateIndex) bind(ctx context.Context) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.bound {
		return nil
	}

	want := out.IndexSignature{Embedder: ix.embedder.Name(), Dimensions: ix.embedder.Dimensions()}
	got, err := ix.store.Signature(ctx)
	if err != nil {
		return fmt.Errorf("read index signature: %w", err)
	}

	switch {
	case got == nil:
		n, err := ix.store.Count(ctx)
		if err != nil {
			return fmt.Errorf("count templates: %w", err)
		}
		if n > 0 {
			return fmt.Errorf("%w: %d stored templates have no recorded embedder, configured %s/%d",
				ErrEmbedderMismatch, n, want.Embedder, want.Dimensions)
		}
		if err := ix.store.SetSignature(ctx, want); err != nil {
			return err
		}
	case *got != want:
		return fmt.Errorf("%w: stored %s/%d, configured %s/%d",
			ErrEmbedderMismatch, got.Embedder, got.Dimensions, want.Embedder, want.Dimensions)
	}

	ix.bound = true
	return nil
}

func (ix *TemplateIndex) write(ctx context.Context, entries []domain.ReplyTemplateEntry) error {
	docs := make([]string, len(entries))
	for i := range entries {
		docs[i] = entries[i].EmbeddingText()
	}
	embeddings, err := ix.embedder.EmbedBatch(ctx, docs)
	if err != nil {
		return fmt.Errorf("embed templates: %w", err)
	}
	if len(embeddings) != len(entries) {
		return fmt.Errorf("embed templates: got %d vectors for %d entries", len(embeddings), len(entries))
	}

	now := ix.now().UTC()
	records := make([]out.TemplateVectorRecord, len(entries))
	for i := range entries {
		records[i] = out.TemplateVectorRecord{
			ID:        TemplateID(entries[i].ScenarioID),
			Document:  docs[i],
			Embedding: embeddings[i],
			Entry:     entries[i],
			CreatedAt: now,
		}
	}
	return ix.store.Upsert(ctx, records)
}

// ValidateEntry checks required fields and placeholders, and fills the urgency default.
func ValidateEntry(e *domain.ReplyTemplateEntry) error {
	if strings.TrimSpace(e.ScenarioID) == "" {
		return fmt.Errorf("%w: scenario_id is required", ErrInvalidTemplate)
	}
	if strings.TrimSpace(e.PatternText) == "" {
		return fmt.Errorf("%w: pattern is required for %s", ErrInvalidTemplate, e.ScenarioID)
	}
	switch e.Urgency {
	case "":
		e.Urgency = domain.UrgencyMedium
	case domain.UrgencyLow, domain.UrgencyMedium, domain.UrgencyHigh:
	default:
		return fmt.Errorf("%w: urgency %q for %s", ErrInvalidTemplate, e.Urgency, e.ScenarioID)
	}
	if e.BaseConfidence < 0 || e.BaseConfidence > 1 {
		return fmt.Errorf("%w: confidence %v for %s", ErrInvalidTemplate, e.BaseConfidence, e.ScenarioID)
	}
	if err := CheckPlaceholders(e.TemplateBody); err != nil {
		return fmt.Errorf("%s: %w", e.ScenarioID, err)
	}
	return nil
}
