// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	StreamEmailEvents    = "email:events"
	EventEmailClassified = "email.classified"

	// defaultMaxLen caps the event stream; older entries are trimmed approximately.
	defaultMaxLen = 100000
)

// Event is the envelope written to the events stream.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher writes domain events to a Redis stream. It also acts as a
// result sink that announces every classification record.
type EventPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	now    func() time.Time
}

func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{
		client: client,
		stream: StreamEmailEvents,
		maxLen: defaultMaxLen,
		now:    time.Now,
	}
}

func (p *EventPublisher) PublishEvent(ctx context.Context, eventType string, payload any) error {
	evt := &Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Payload:    payload,
		OccurredAt: p.now().UTC(),
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		ID:     "*",
		Values: map[string]any{
			"type": eventType,
			"data": string(data),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.stream, err)
	}
	return nil
}

func (p *EventPublisher) Name() string { return "redis-events" }

// Save publishes an email.classified event for the record.
func (p *EventPublisher) Save(ctx context.Context, rec *domain.ClassificationRecord) error {
	return p.PublishEvent(ctx, EventEmailClassified, rec)
}

var (
	_ out.EventPublisher = (*EventPublisher)(nil)
	_ out.ResultSink     = (*EventPublisher)(nil)
)
