package queue

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/feichai0017/resume-screener/pkg/logger"
)

// LocalQueue runs pipelines on a bounded in-process worker pool,
// replacing fire-and-forget goroutines with something whose in-flight
// and failed counts can be observed. Used when no redis is configured.
type LocalQueue struct {
	pool    *ants.Pool
	handler Handler
	failed  atomic.Int64
	logger  logger.Logger
}

var _ Queue = (*LocalQueue)(nil)

func NewLocalQueue(concurrency int, handler Handler, log logger.Logger) (*LocalQueue, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	if handler == nil {
		return nil, fmt.Errorf("local queue requires a handler")
	}

	pool, err := ants.NewPool(concurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &LocalQueue{
		pool:    pool,
		handler: handler,
		logger:  log,
	}, nil
}

// Enqueue implements Queue.Enqueue. The task runs detached from the
// caller's context: ingest returns before any stage executes.
func (q *LocalQueue) Enqueue(ctx context.Context, task *Task) error {
	err := q.pool.Submit(func() {
		if err := q.handler(context.Background(), task); err != nil {
			q.failed.Add(1)
			q.logger.Error("Pipeline run failed",
				logger.String("recordId", task.RecordID),
				logger.Error(err),
			)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to submit task: %w", err)
	}

	q.logger.Info("Pipeline task submitted",
		logger.String("recordId", task.RecordID),
	)
	return nil
}

// Stats implements Queue.Stats
func (q *LocalQueue) Stats(ctx context.Context) (*Stats, error) {
	return &Stats{
		Pending:  q.pool.Waiting(),
		InFlight: q.pool.Running(),
		Failed:   int(q.failed.Load()),
	}, nil
}

func (q *LocalQueue) Close() error {
	q.pool.Release()
	return nil
}
