// Package in defines inbound ports (use cases) for the application.
package in

import (
	"context"

	"github.com/18vikastg/onebox/core/domain"
)

// ClassificationService classifies messages and triggers lead alerts.
type ClassificationService interface {
	Classify(ctx context.Context, msg *domain.NormalizedMessage) *domain.ClassificationResult
	ClassifyAndStore(ctx context.Context, msg *domain.NormalizedMessage) *domain.ClassificationRecord
	ClassifyBatch(ctx context.Context, msgs []*domain.NormalizedMessage) ([]*domain.ClassificationRecord, domain.BatchStats)
	NotifyIfInterested(ctx context.Context, msg *domain.NormalizedMessage, result *domain.ClassificationResult) *domain.NotifyOutcome
}

// ReplyService suggests replies and manages the template library.
type ReplyService interface {
	Suggest(ctx context.Context, req *domain.ReplyRequest) *domain.ReplySuggestion
	AddTemplates(ctx context.Context, entries []domain.ReplyTemplateEntry) error
	AddUserTemplate(ctx context.Context, scenario, pattern, reply, category string) error
	Stats(ctx context.Context) (*domain.TemplateLibraryStats, error)
}
