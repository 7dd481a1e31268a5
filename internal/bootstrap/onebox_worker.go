package bootstrap

import (
	"context"
	"time"

	"github.com/18vikastg/onebox/adapter/in/worker"
	"github.com/18vikastg/onebox/config"
	"github.com/18vikastg/onebox/core/port/out"
	"github.com/18vikastg/onebox/internal/stream"

	"github.com/rs/zerolog"
)

// Worker consumes email jobs from the Redis stream and runs them on the pool.
type Worker struct {
	pool     *worker.Pool
	consumer *stream.Consumer
	log      zerolog.Logger
}

// NewWorker wires the job handler, pool and stream consumer. Without Redis the
// pool runs idle.
func NewWorker(cfg *config.Config, deps *Dependencies) *Worker {
	log := deps.Log.With().Str("component", "worker").Str("worker_id", cfg.WorkerID).Logger()

	var events out.EventPublisher
	if deps.Events != nil {
		events = deps.Events
	}
	handler := worker.NewHandler(deps.Classifier, deps.Replies, events)

	poolCfg := worker.DefaultPoolConfig()
	if cfg.WorkerMax > 0 {
		poolCfg.MaxWorkers = cfg.WorkerMax
	}
	if cfg.WorkerBatchSize > 0 {
		poolCfg.BatchSize = cfg.WorkerBatchSize
	}
	if cfg.WorkerQueueSize > 0 {
		poolCfg.WorkerChanSize = cfg.WorkerQueueSize
	}

	w := &Worker{
		pool: worker.NewPool(handler, poolCfg, log),
		log:  log,
	}

	if deps.Stream != nil {
		w.consumer = stream.NewConsumer(deps.Stream, w.pool, cfg.WorkerID, stream.ConsumeConfig{
			Count:     int64(cfg.ConsumerBatchSize),
			Block:     time.Duration(cfg.ConsumerBlockMS) * time.Millisecond,
			ClaimIdle: 5 * time.Minute,
		})
	} else {
		log.Warn().Msg("Redis not available, worker will only process direct submissions")
	}
	return w
}

// Start launches the pool and, when configured, the stream consumer.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.pool.Start(); err != nil {
		return err
	}
	if w.consumer != nil {
		if err := w.consumer.Start(ctx); err != nil {
			w.pool.Stop()
			return err
		}
		w.log.Info().Str("stream", stream.StreamEmailJobs).Msg("stream consumer started")
	}
	return nil
}

// Stop waits for the consumer loop (ctx must already be cancelled) and drains the pool.
func (w *Worker) Stop() {
	if w.consumer != nil {
		w.consumer.Wait()
	}
	w.pool.Stop()
}
