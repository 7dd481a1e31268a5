package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/logger"
	"github.com/18vikastg/onebox/pkg/metrics"
)

const (
	DefaultTopK      = 5
	DefaultThreshold = 0.4
	exemplarCount    = 2

	defaultUserConfidence = 0.7
	defaultUserCategory   = "custom"
)

// ErrNoSimilarContexts is reported when the index holds no templates.
var ErrNoSimilarContexts = errors.New("no similar contexts")

// EngineConfig configures the reply engine.
type EngineConfig struct {
	TopK int
	// Threshold is the similarity the best match must exceed for LLM drafting.
	// Nil selects DefaultThreshold; an explicit 0 is kept.
	Threshold *float64
	User      domain.UserContext
}

// ReplyEngine suggests replies from the template index, drafting with the LLM
// when the best match is close enough and a synthesizer is available.
type ReplyEngine struct {
	index     *TemplateIndex
	synth     out.ReplySynthesizer
	renderer  *Renderer
	cfg       EngineConfig
	threshold float64
	now       func() time.Time
}

// NewReplyEngine wires the engine. synth may be nil, which disables the RAG path.
func NewReplyEngine(index *TemplateIndex, synth out.ReplySynthesizer, cfg EngineConfig) *ReplyEngine {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	threshold := DefaultThreshold
	if cfg.Threshold != nil {
		threshold = *cfg.Threshold
	}
	return &ReplyEngine{
		index:     index,
		synth:     synth,
		renderer:  NewRenderer(cfg.User),
		cfg:       cfg,
		threshold: threshold,
		now:       time.Now,
	}
}

func (e *ReplyEngine) LLMEnabled() bool {
	return e.synth != nil
}

// Suggest never returns nil; callers branch on Success.
func (e *ReplyEngine) Suggest(ctx context.Context, req *domain.ReplyRequest) *domain.ReplySuggestion {
	start := e.now()
	s := e.suggest(ctx, req)
	s.GeneratedAt = e.now().UTC()
	metrics.ObserveReplySuggestion(string(s.Method), e.now().Sub(start))
	return s
}

func (e *ReplyEngine) suggest(ctx context.Context, req *domain.ReplyRequest) *domain.ReplySuggestion {
	if req == nil {
		return failedSuggestion("empty request")
	}

	query := strings.TrimSpace(req.Subject + " " + req.Body)
	matches, err := e.index.Query(ctx, query, e.cfg.TopK)
	if err != nil {
		logger.WithError(err).Warn("[ReplyEngine] template query failed")
		return failedSuggestion(err.Error())
	}
	if len(matches) == 0 {
		return failedSuggestion(ErrNoSimilarContexts.Error())
	}

	best := matches[0]
	s := &domain.ReplySuggestion{
		Success:    true,
		Confidence: best.Similarity,
		Similarity: best.Similarity,
		ScenarioID: best.Entry.ScenarioID,
	}

	if e.synth != nil && best.Similarity > e.threshold {
		exemplars := matches
		if len(exemplars) > exemplarCount {
			exemplars = exemplars[:exemplarCount]
		}
		text, err := e.synth.SynthesizeReply(ctx, req, exemplars, e.cfg.User)
		if err == nil && strings.TrimSpace(text) != "" {
			s.SuggestionText = text
			s.Method = domain.ReplyMethodRAG
			return s
		}
		logger.WithError(err).WithField("scenario", best.Entry.ScenarioID).
			Warn("[ReplyEngine] synthesis failed, using template")
	}

	s.SuggestionText = e.renderer.Render(best.Entry.TemplateBody)
	s.Method = domain.ReplyMethodTemplate
	return s
}

func failedSuggestion(msg string) *domain.ReplySuggestion {
	return &domain.ReplySuggestion{
		Success: false,
		Method:  domain.ReplyMethodFailed,
		Error:   msg,
	}
}

func (e *ReplyEngine) AddTemplates(ctx context.Context, entries []domain.ReplyTemplateEntry) error {
	return e.index.Add(ctx, entries)
}

// AddUserTemplate registers a custom scenario with medium urgency and 0.7 confidence.
func (e *ReplyEngine) AddUserTemplate(ctx context.Context, scenario, pattern, reply, category string) error {
	if category == "" {
		category = defaultUserCategory
	}
	return e.index.Add(ctx, []domain.ReplyTemplateEntry{{
		ScenarioID:     scenario,
		PatternText:    pattern,
		Context:        fmt.Sprintf("User-defined template for %s", scenario),
		TemplateBody:   reply,
		Category:       category,
		Urgency:        domain.UrgencyMedium,
		BaseConfidence: defaultUserConfidence,
	}})
}

func (e *ReplyEngine) Stats(ctx context.Context) (*domain.TemplateLibraryStats, error) {
	n, err := e.index.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.TemplateLibraryStats{
		TotalTemplates:    n,
		LLMEnabled:        e.LLMEnabled(),
		EmbeddingProvider: e.index.EmbedderName(),
		UserContext:       e.cfg.User,
	}, nil
}
