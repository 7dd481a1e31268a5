package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/18vikastg/onebox/adapter/in/worker"
	"github.com/18vikastg/onebox/core/domain"
	"github.com/18vikastg/onebox/core/port/out"

	"github.com/google/uuid"
)

type Producer struct {
	stream *RedisStream
}

func NewProducer(stream *RedisStream) *Producer {
	return &Producer{stream: stream}
}

type Job struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

func (p *Producer) PublishClassify(ctx context.Context, msg *domain.NormalizedMessage) (string, error) {
	return p.publishMessageJob(ctx, worker.JobEmailClassify, worker.ClassifyPayload{Message: *msg})
}

func (p *Producer) PublishClassifyBatch(ctx context.Context, msgs []domain.NormalizedMessage) (string, error) {
	return p.publishMessageJob(ctx, worker.JobEmailClassifyBatch, worker.ClassifyBatchPayload{Messages: msgs})
}

func (p *Producer) PublishSuggestReply(ctx context.Context, msg *domain.NormalizedMessage) (string, error) {
	return p.publishMessageJob(ctx, worker.JobEmailSuggestReply, worker.SuggestReplyPayload{Message: *msg})
}

func (p *Producer) publishMessageJob(ctx context.Context, jobType string, payload any) (string, error) {
	m, err := worker.PayloadMap(payload)
	if err != nil {
		return "", fmt.Errorf("encode %s payload: %w", jobType, err)
	}
	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Payload:   m,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := p.stream.Publish(ctx, StreamEmailJobs, job); err != nil {
		return "", fmt.Errorf("publish %s: %w", jobType, err)
	}
	return job.ID, nil
}

var _ out.JobProducer = (*Producer)(nil)
