package stream

import (
	"context"
	"sync"

	"github.com/18vikastg/onebox/adapter/in/worker"

	"github.com/goccy/go-json"
)

// Submitter accepts decoded jobs; satisfied by worker.Pool.
type Submitter interface {
	Submit(msg *worker.Message) bool
}

type Consumer struct {
	stream *RedisStream
	sink   Submitter
	name   string
	cfg    ConsumeConfig
	wg     sync.WaitGroup
}

func NewConsumer(stream *RedisStream, sink Submitter, name string, cfg ConsumeConfig) *Consumer {
	return &Consumer{
		stream: stream,
		sink:   sink,
		name:   name,
		cfg:    cfg,
	}
}

// Start creates the consumer group and reads email:jobs until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.stream.CreateGroup(ctx, StreamEmailJobs); err != nil {
		return err
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.stream.Consume(ctx, StreamEmailJobs, c.name, c.cfg, c.handle)
	}()
	return nil
}

// Wait blocks until the read loop has exited.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

func (c *Consumer) handle(id string, data []byte) error {
	msg, err := DecodeJob(data)
	if err != nil {
		c.stream.log.Error().Err(err).Str("id", id).Msg("failed to unmarshal job")
		// Malformed entries are acked so they do not block the group.
		return nil
	}
	if !c.sink.Submit(msg) {
		return errPoolUnavailable
	}
	return nil
}

// DecodeJob converts a stream entry into a worker message.
func DecodeJob(data []byte) (*worker.Message, error) {
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}
	return &worker.Message{
		ID:        job.ID,
		Type:      job.Type,
		Payload:   job.Payload,
		CreatedAt: job.CreatedAt,
	}, nil
}
