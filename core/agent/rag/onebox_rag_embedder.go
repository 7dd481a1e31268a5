// Package rag provides the reply template index and the reply suggestion engine.
package rag

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/18vikastg/onebox/core/agent/llm"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/vecmath"
)

// Embedding providers.
const (
	ProviderLocal  = "local"
	ProviderOpenAI = "openai"

	DefaultLocalDimensions = 384
	bigramWeight           = 0.5
)

var ErrNoEmbeddingClient = errors.New("openai embedder requires an llm client")

// EmbedderConfig selects and sizes the embedder.
type EmbedderConfig struct {
	Provider string
	// Dimensions sizes the local embedder only.
	Dimensions int
	Model      string
	Client     *llm.Client
}

// NewEmbedder builds the configured embedder.
func NewEmbedder(cfg EmbedderConfig) (out.Embedder, error) {
	switch cfg.Provider {
	case "", ProviderLocal:
		return NewHashEmbedder(cfg.Dimensions), nil
	case ProviderOpenAI:
		if cfg.Client == nil {
			return nil, ErrNoEmbeddingClient
		}
		return NewOpenAIEmbedder(cfg.Client, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// =============================================================================
// Local hashing embedder
// =============================================================================

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {},
	"by": {}, "for": {}, "from": {}, "has": {}, "have": {}, "i": {}, "if": {}, "in": {},
	"is": {}, "it": {}, "its": {}, "me": {}, "my": {}, "of": {}, "on": {}, "or": {},
	"our": {}, "so": {}, "that": {}, "the": {}, "this": {}, "to": {}, "was": {}, "we": {},
	"were": {}, "what": {}, "when": {}, "which": {}, "will": {}, "with": {}, "you": {}, "your": {},
}

// HashEmbedder is a deterministic bag-of-words embedder that needs no network.
// Unigrams and adjacent bigrams are hashed into a fixed number of buckets and
// the result is L2 normalised.
type HashEmbedder struct {
	dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = DefaultLocalDimensions
	}
	return &HashEmbedder{dims: dims}
}

func (e *HashEmbedder) Name() string    { return "local-hash" }
func (e *HashEmbedder) Dimensions() int { return e.dims }

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

func (e *HashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *HashEmbedder) vector(text string) []float32 {
	v := make([]float32, e.dims)
	tokens := tokenize(text)
	for i, tok := range tokens {
		v[e.bucket(tok)]++
		if i > 0 {
			v[e.bucket(tokens[i-1]+" "+tok)] += bigramWeight
		}
	}
	return vecmath.Normalize(v)
}

func (e *HashEmbedder) bucket(token string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(e.dims))
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) < 2 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// =============================================================================
// OpenAI embedder
// =============================================================================

// OpenAIEmbedder calls the embeddings endpoint through the shared llm client.
type OpenAIEmbedder struct {
	client *llm.Client
	model  string
	dims   int
}

// NewOpenAIEmbedder sizes the embedder by model; the endpoint returns full-length vectors.
func NewOpenAIEmbedder(client *llm.Client, model string) *OpenAIEmbedder {
	dims := 1536
	if model == "text-embedding-3-large" {
		dims = 3072
	}
	return &OpenAIEmbedder{client: client, model: model, dims: dims}
}

func (e *OpenAIEmbedder) Name() string    { return "openai:" + e.model }
func (e *OpenAIEmbedder) Dimensions() int { return e.dims }

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.client.Embedding(ctx, text)
}

func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.client.EmbeddingBatch(ctx, texts)
}
