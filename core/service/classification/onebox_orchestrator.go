package classification

import (
	"context"
	"fmt"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/logger"
	"github.com/18vikastg/onebox/pkg/metrics"

	"github.com/google/uuid"
)

// batchProgressEvery controls how often batch progress is logged.
const batchProgressEvery = 10

// OrchestratorConfig controls side effects of classification.
type OrchestratorConfig struct {
	// NotifyInline sends lead alerts from Classify for Interested results.
	NotifyInline bool
}

// Orchestrator runs the rule tier then the LLM tier for each message.
type Orchestrator struct {
	rules    *RuleMatcher
	llm      *LLMClassifier
	notifier out.Notifier
	sink     out.ResultSink
	config   OrchestratorConfig
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator. notifier and sink may be nil.
func NewOrchestrator(rules *RuleMatcher, llm *LLMClassifier, notifier out.Notifier, sink out.ResultSink, config OrchestratorConfig) *Orchestrator {
	if rules == nil {
		rules = NewRuleMatcher()
	}
	if llm == nil {
		llm = NewLLMClassifier(nil)
	}
	return &Orchestrator{
		rules:    rules,
		llm:      llm,
		notifier: notifier,
		sink:     sink,
		config:   config,
		now:      time.Now,
	}
}

// LLMEnabled reports whether the fallback tier is active.
func (o *Orchestrator) LLMEnabled() bool {
	return o.llm.Enabled()
}

// Classify runs one rule pass and at most one LLM call. It always returns a result.
func (o *Orchestrator) Classify(ctx context.Context, msg *domain.NormalizedMessage) *domain.ClassificationResult {
	start := o.now()

	result := &domain.ClassificationResult{}
	if match, ok := o.rules.Match(msg); ok {
		result.Category = match.Category
		result.Confidence = domain.RuleConfidence
		result.Method = domain.MethodRule
		result.Signals = []string{match.Signal}
	} else {
		cat, confidence, cause := o.llm.Classify(ctx, msg)
		result.Category = cat
		result.Confidence = confidence
		result.Method = domain.MethodLLM
		if cat == domain.CategoryUncategorized {
			result.Method = domain.MethodFailed
			if cause != nil {
				result.Error = cause.Error()
			}
		}
	}

	end := o.now()
	result.ClassifiedAt = end
	result.LatencyMs = end.Sub(start).Milliseconds()
	metrics.ObserveClassification(string(result.Category), string(result.Method), end.Sub(start))

	logger.WithContext(ctx).WithFields(map[string]any{
		"category":   result.Category,
		"method":     result.Method,
		"latency_ms": result.LatencyMs,
	}).Debug("[Orchestrator] classified")

	if o.config.NotifyInline {
		o.NotifyIfInterested(ctx, msg, result)
	}
	return result
}

// NotifyIfInterested sends lead alerts for Interested results. Failures are logged, never returned.
// Returns nil when nothing was attempted.
func (o *Orchestrator) NotifyIfInterested(ctx context.Context, msg *domain.NormalizedMessage, result *domain.ClassificationResult) *domain.NotifyOutcome {
	if o.notifier == nil || result == nil || result.Category != domain.CategoryInterested {
		return nil
	}

	outcome := o.notifier.Notify(ctx, &domain.LeadNotification{Message: msg, Result: result})
	if !outcome.Complete() {
		logger.WithContext(ctx).WithFields(map[string]any{
			"chat_sent":    outcome.ChatSent,
			"webhook_sent": outcome.WebhookSent,
		}).Warn("[Orchestrator] lead notification incomplete")
	}
	return &outcome
}

// ClassifyAndStore classifies msg and hands the record to the configured sink.
func (o *Orchestrator) ClassifyAndStore(ctx context.Context, msg *domain.NormalizedMessage) *domain.ClassificationRecord {
	rec := &domain.ClassificationRecord{
		ID:      uuid.NewString(),
		Message: msg,
		Result:  o.Classify(ctx, msg),
	}
	o.store(ctx, rec)
	return rec
}

// ClassifyBatch classifies each message independently. A failing item yields a Failed
// record and does not stop the batch.
func (o *Orchestrator) ClassifyBatch(ctx context.Context, msgs []*domain.NormalizedMessage) ([]*domain.ClassificationRecord, domain.BatchStats) {
	records := make([]*domain.ClassificationRecord, 0, len(msgs))
	var stats domain.BatchStats

	for i, msg := range msgs {
		rec := &domain.ClassificationRecord{ID: uuid.NewString(), Message: msg}
		rec.Result = o.classifyIsolated(ctx, msg)
		o.store(ctx, rec)

		records = append(records, rec)
		stats.Record(rec.Result)

		if (i+1)%batchProgressEvery == 0 {
			logger.Info("[Orchestrator] batch progress: %d/%d", i+1, len(msgs))
		}
	}

	logger.WithFields(map[string]any{
		"total":      stats.Total,
		"rule":       stats.Rule,
		"llm":        stats.LLM,
		"failed":     stats.Failed,
		"interested": stats.Interested,
	}).Info("[Orchestrator] batch complete")
	return records, stats
}

func (o *Orchestrator) classifyIsolated(ctx context.Context, msg *domain.NormalizedMessage) (result *domain.ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Orchestrator] classification panic: %v", r)
			result = domain.FailedResult(fmt.Errorf("classification panic: %v", r), time.Now())
		}
	}()

	if err := msg.Validate(); err != nil {
		return domain.FailedResult(err, time.Now())
	}
	return o.Classify(ctx, msg)
}

func (o *Orchestrator) store(ctx context.Context, rec *domain.ClassificationRecord) {
	if o.sink == nil {
		return
	}
	if err := o.sink.Save(ctx, rec); err != nil {
		logger.WithContext(ctx).WithError(err).Warn("[Orchestrator] sink %s failed for %s", o.sink.Name(), rec.ID)
	}
}
