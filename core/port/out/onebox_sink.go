package out

import (
	"context"

	"github.com/18vikastg/onebox/core/domain"
)

// ResultSink stores or forwards classification records.
// Implementations: Postgres, MongoDB, Neo4j, Redis stream events.
type ResultSink interface {
	Name() string
	Save(ctx context.Context, rec *domain.ClassificationRecord) error
}

// Notifier delivers lead alerts for Interested messages.
type Notifier interface {
	Notify(ctx context.Context, n *domain.LeadNotification) domain.NotifyOutcome
}

// ClassificationCounter reports stored results per category.
type ClassificationCounter interface {
	CountByCategory(ctx context.Context) (map[string]int, error)
}

// SenderRanking ranks senders by how often they land in a category.
type SenderRanking interface {
	TopSenders(ctx context.Context, category string, limit int) ([]SenderCount, error)
}

// SenderCount is one row of a sender ranking.
type SenderCount struct {
	Address string `json:"address"`
	Count   int64  `json:"count"`
}
