package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/logger"

	"github.com/goccy/go-json"
)

// =============================================================================
// Embedding Cache
// =============================================================================

// EmbeddingCache keeps recently computed embeddings in memory, optionally
// backed by a shared cache (Redis) so several processes reuse the same vectors.
type EmbeddingCache struct {
	cache   map[string]*cachedEmbedding
	mu      sync.RWMutex
	maxSize int
	ttl     time.Duration
	shared  out.Cache
	prefix  string
	now     func() time.Time

	hits   int64
	misses int64
}

type cachedEmbedding struct {
	embedding []float32
	createdAt time.Time
}

// EmbeddingCacheConfig configures the embedding cache.
type EmbeddingCacheConfig struct {
	MaxSize int
	TTL     time.Duration
	// Shared is an optional second level. Keys are namespaced by Prefix.
	Shared out.Cache
	Prefix string
}

func DefaultEmbeddingCacheConfig() *EmbeddingCacheConfig {
	return &EmbeddingCacheConfig{
		MaxSize: 5000,
		TTL:     time.Hour,
		Prefix:  "emb:",
	}
}

func NewEmbeddingCache(config *EmbeddingCacheConfig) *EmbeddingCache {
	if config == nil {
		config = DefaultEmbeddingCacheConfig()
	}
	if config.MaxSize <= 0 {
		config.MaxSize = 5000
	}
	if config.TTL <= 0 {
		config.TTL = time.Hour
	}
	return &EmbeddingCache{
		cache:   make(map[string]*cachedEmbedding),
		maxSize: config.MaxSize,
		ttl:     config.TTL,
		shared:  config.Shared,
		prefix:  config.Prefix,
		now:     time.Now,
	}
}

// Get retrieves an embedding, consulting the shared level on a local miss.
func (c *EmbeddingCache) Get(ctx context.Context, text string) ([]float32, bool) {
	key := c.hashText(text)

	c.mu.Lock()
	entry, ok := c.cache[key]
	if ok && c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.cache, key)
		ok = false
	}
	if ok {
		c.hits++
		c.mu.Unlock()
		return entry.embedding, true
	}
	c.mu.Unlock()

	if emb, found := c.getShared(ctx, key); found {
		c.store(key, emb)
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return emb, true
	}

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	return nil, false
}

// Set stores an embedding locally and, when configured, in the shared level.
func (c *EmbeddingCache) Set(ctx context.Context, text string, embedding []float32) {
	key := c.hashText(text)
	c.store(key, embedding)

	if c.shared == nil {
		return
	}
	data, err := json.Marshal(embedding)
	if err != nil {
		return
	}
	if err := c.shared.Set(ctx, c.prefix+key, data, c.ttl); err != nil {
		logger.WithError(err).Debug("[EmbeddingCache] shared set failed")
	}
}

// Len returns the number of locally cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

// Stats returns cache statistics.
func (c *EmbeddingCache) Stats() (hits, misses int64, hitRate float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	hits = c.hits
	misses = c.misses
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return
}

func (c *EmbeddingCache) store(key string, embedding []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.cache[key]; !exists && len(c.cache) >= c.maxSize {
		c.evictOldest()
	}
	c.cache[key] = &cachedEmbedding{embedding: embedding, createdAt: c.now()}
}

func (c *EmbeddingCache) getShared(ctx context.Context, key string) ([]float32, bool) {
	if c.shared == nil {
		return nil, false
	}
	data, err := c.shared.Get(ctx, c.prefix+key)
	if err != nil || len(data) == 0 {
		return nil, false
	}
	var emb []float32
	if err := json.Unmarshal(data, &emb); err != nil {
		return nil, false
	}
	return emb, true
}

func (c *EmbeddingCache) hashText(text string) string {
	hash := sha256.Sum256([]byte(text))
	return hex.EncodeToString(hash[:16])
}

// evictOldest drops the oldest entry. Caller holds the lock.
func (c *EmbeddingCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time

	for key, entry := range c.cache {
		if oldestKey == "" || entry.createdAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = entry.createdAt
		}
	}
	if oldestKey != "" {
		delete(c.cache, oldestKey)
	}
}

// =============================================================================
// Cached Embedder
// =============================================================================

// CachedEmbedder wraps an embedder with an EmbeddingCache.
type CachedEmbedder struct {
	out.Embedder
	cache *EmbeddingCache
}

func NewCachedEmbedder(embedder out.Embedder, cache *EmbeddingCache) *CachedEmbedder {
	if cache == nil {
		cache = NewEmbeddingCache(nil)
	}
	return &CachedEmbedder{Embedder: embedder, cache: cache}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if embedding, ok := e.cache.Get(ctx, text); ok {
		return embedding, nil
	}

	embedding, err := e.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Set(ctx, text, embedding)
	return embedding, nil
}

// EmbedBatch embeds only the texts missing from the cache.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var uncachedIndices []int
	var uncachedTexts []string

	for i, text := range texts {
		if embedding, ok := e.cache.Get(ctx, text); ok {
			results[i] = embedding
		} else {
			uncachedIndices = append(uncachedIndices, i)
			uncachedTexts = append(uncachedTexts, text)
		}
	}

	if len(uncachedTexts) > 0 {
		embeddings, err := e.Embedder.EmbedBatch(ctx, uncachedTexts)
		if err != nil {
			return nil, err
		}
		for i, embedding := range embeddings {
			results[uncachedIndices[i]] = embedding
			e.cache.Set(ctx, uncachedTexts[i], embedding)
		}
	}

	return results, nil
}

func (e *CachedEmbedder) CacheStats() (hits, misses int64, hitRate float64) {
	return e.cache.Stats()
}
