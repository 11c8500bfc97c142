package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

const defaultQueueName = "default"

// AsynqQueue schedules pipeline tasks through redis; cmd/worker
// consumes them. Tasks are enqueued with MaxRetry(0) and without a task
// id: no automatic stage retries, no dedup of repeated schedulings.
type AsynqQueue struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	logger    logger.Logger
}

var _ Queue = (*AsynqQueue)(nil)

func NewAsynqQueue(c cfg.QueueConfig, log logger.Logger) (*AsynqQueue, error) {
	if c.RedisAddr == "" {
		return nil, fmt.Errorf("asynq queue requires a redis address")
	}

	redisOpt := asynq.RedisClientOpt{
		Addr: c.RedisAddr,
		DB:   c.RedisDB,
	}

	return &AsynqQueue{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		logger:    log,
	}, nil
}

// Enqueue implements Queue.Enqueue
func (q *AsynqQueue) Enqueue(ctx context.Context, task *Task) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	t := asynq.NewTask(TaskTypeResumePipeline, payload,
		asynq.Queue(defaultQueueName),
		asynq.MaxRetry(0),
	)

	info, err := q.client.EnqueueContext(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	q.logger.Info("Pipeline task enqueued",
		logger.String("recordId", task.RecordID),
		logger.String("taskId", info.ID),
	)
	return nil
}

// Stats implements Queue.Stats
func (q *AsynqQueue) Stats(ctx context.Context) (*Stats, error) {
	info, err := q.inspector.GetQueueInfo(defaultQueueName)
	if err != nil {
		return nil, fmt.Errorf("failed to get queue info: %w", err)
	}

	return &Stats{
		Pending:  info.Pending,
		InFlight: info.Active,
		Failed:   info.Failed,
	}, nil
}

func (q *AsynqQueue) Close() error {
	return q.client.Close()
}
