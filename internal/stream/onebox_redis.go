package stream

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	StreamEmailJobs   = "email:jobs"
	StreamEmailEvents = "email:events"
)

// ConsumeConfig tunes XREADGROUP polling.
type ConsumeConfig struct {
	Count int64
	Block time.Duration
	// ClaimIdle reclaims messages left pending by a dead consumer for at least this long. Zero disables.
	ClaimIdle time.Duration
}

type RedisStream struct {
	client *redis.Client
	group  string
	log    zerolog.Logger
}

func NewRedisStream(client *redis.Client, group string, log zerolog.Logger) *RedisStream {
	return &RedisStream{
		client: client,
		group:  group,
		log:    log.With().Str("component", "redis_stream").Logger(),
	}
}

func (s *RedisStream) CreateGroup(ctx context.Context, stream string) error {
	err := s.client.XGroupCreateMkStream(ctx, stream, s.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (s *RedisStream) Publish(ctx context.Context, stream string, data any) (string, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{"data": string(jsonData)},
	}).Result()
}

// Consume blocks until ctx is done, calling handler for each entry and acking on success.
func (s *RedisStream) Consume(ctx context.Context, stream, consumer string, cfg ConsumeConfig, handler func(id string, data []byte) error) {
	if cfg.Count <= 0 {
		cfg.Count = 10
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if cfg.ClaimIdle > 0 {
			s.claimStale(ctx, stream, consumer, cfg, handler)
		}

		streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    s.group,
			Consumer: consumer,
			Streams:  []string{stream, ">"},
			Count:    cfg.Count,
			Block:    cfg.Block,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
				s.log.Error().Err(err).Str("stream", stream).Msg("stream read error")
				time.Sleep(time.Second)
			}
			continue
		}

		for _, st := range streams {
			s.handle(ctx, st.Stream, st.Messages, handler)
		}
	}
}

func (s *RedisStream) claimStale(ctx context.Context, stream, consumer string, cfg ConsumeConfig, handler func(id string, data []byte) error) {
	msgs, _, err := s.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   stream,
		Group:    s.group,
		Consumer: consumer,
		MinIdle:  cfg.ClaimIdle,
		Start:    "0-0",
		Count:    cfg.Count,
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn().Err(err).Str("stream", stream).Msg("autoclaim failed")
		}
		return
	}
	if len(msgs) > 0 {
		s.log.Info().Int("count", len(msgs)).Str("stream", stream).Msg("reclaimed pending messages")
		s.handle(ctx, stream, msgs, handler)
	}
}

func (s *RedisStream) handle(ctx context.Context, stream string, msgs []redis.XMessage, handler func(id string, data []byte) error) {
	for _, msg := range msgs {
		data, ok := msg.Values["data"].(string)
		if !ok {
			s.log.Warn().Str("id", msg.ID).Msg("stream entry without data field, acking")
			_ = s.Ack(ctx, stream, msg.ID)
			continue
		}

		if err := handler(msg.ID, []byte(data)); err != nil {
			s.log.Error().Err(err).Str("id", msg.ID).Msg("handler error")
			continue
		}

		if err := s.Ack(ctx, stream, msg.ID); err != nil {
			s.log.Error().Err(err).Str("id", msg.ID).Msg("ack failed")
		}
	}
}

func (s *RedisStream) Ack(ctx context.Context, stream, id string) error {
	return s.client.XAck(ctx, stream, s.group, id).Err()
}

func (s *RedisStream) Pending(ctx context.Context, stream string) (int64, error) {
	info, err := s.client.XPending(ctx, stream, s.group).Result()
	if err != nil {
		return 0, err
	}
	return info.Count, nil
}

var errPoolUnavailable = errors.New("worker pool is not accepting jobs")
