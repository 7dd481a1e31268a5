package rag

import (
	"context"
	"sort"
	"sync"

	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/vecmath"
)

// MemoryStore is a process-local TemplateVectorStore. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]out.TemplateVectorRecord
	sig     *out.IndexSignature
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]out.TemplateVectorRecord)}
}

func (s *MemoryStore) Upsert(_ context.Context, records []out.TemplateVectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		r.Embedding = append([]float32(nil), r.Embedding...)
		s.records[r.ID] = r
	}
	return nil
}

// Query scans every record; the library is small enough that an ANN index is not needed.
func (s *MemoryStore) Query(ctx context.Context, embedding []float32, k int) ([]out.TemplateVectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	hits := make([]out.TemplateVectorHit, 0, len(s.records))
	for _, r := range s.records {
		dist, err := vecmath.CosineDistance(embedding, r.Embedding)
		if err != nil {
			s.mu.RUnlock()
			return nil, err
		}
		hits = append(hits, out.TemplateVectorHit{Record: r, Distance: dist})
	}
	s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	SortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *MemoryStore) Has(_ context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[id]
	return ok, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryStore) Signature(_ context.Context) (*out.IndexSignature, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.sig == nil {
		return nil, nil
	}
	sig := *s.sig
	return &sig, nil
}

func (s *MemoryStore) SetSignature(_ context.Context, sig out.IndexSignature) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sig = &sig
	return nil
}

// SortHits orders hits by ascending distance, breaking ties by ID.
func SortHits(hits []out.TemplateVectorHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})
}
