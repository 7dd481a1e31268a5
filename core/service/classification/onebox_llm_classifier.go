package classification

import (
	"context"
	"errors"
	"fmt"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/pkg/logger"
)

var (
	ErrLLMDisabled  = errors.New("llm classifier disabled: no credential configured")
	ErrInvalidLabel = errors.New("llm returned an unrecognised label")
)

// LLMClassifier is the fallback tier. It never fails past its boundary:
// every failure collapses to (Uncategorized, 0) with the cause returned for bookkeeping.
type LLMClassifier struct {
	client out.LabelClassifier
}

// NewLLMClassifier wraps a label client. A nil client disables the tier.
func NewLLMClassifier(client out.LabelClassifier) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Enabled reports whether a model is configured.
func (c *LLMClassifier) Enabled() bool {
	return c != nil && c.client != nil
}

// Classify returns a label with the LLM confidence, or Uncategorized with 0 and the cause.
func (c *LLMClassifier) Classify(ctx context.Context, msg *domain.NormalizedMessage) (cat domain.Category, confidence float64, cause error) {
	if !c.Enabled() {
		return domain.CategoryUncategorized, 0, ErrLLMDisabled
	}

	defer func() {
		if r := recover(); r != nil {
			cat, confidence = domain.CategoryUncategorized, 0
			cause = fmt.Errorf("llm classifier panic: %v", r)
			logger.Error("[LLMClassifier] recovered: %v", r)
		}
	}()

	answer, err := c.client.ClassifyLabel(ctx, msg)
	if err != nil {
		logger.WithError(err).Warn("[LLMClassifier] completion failed")
		return domain.CategoryUncategorized, 0, err
	}

	label, ok := domain.ParseCategory(answer)
	if !ok {
		logger.WithField("answer", answer).Warn("[LLMClassifier] invalid label")
		return domain.CategoryUncategorized, 0, fmt.Errorf("%w: %q", ErrInvalidLabel, answer)
	}

	logger.WithField("category", label).Debug("[LLMClassifier] classified")
	return label, domain.LLMConfidence, nil
}
