package out

import (
	"context"

	"github.com/18vikastg/onebox/core/domain"
)

// JobProducer enqueues work for the worker.
type JobProducer interface {
	PublishClassify(ctx context.Context, msg *domain.NormalizedMessage) (string, error)
	PublishClassifyBatch(ctx context.Context, msgs []domain.NormalizedMessage) (string, error)
	PublishSuggestReply(ctx context.Context, msg *domain.NormalizedMessage) (string, error)
}

// EventPublisher emits domain events for downstream consumers.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType string, payload any) error
}
