package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/queue"
)

// ResumeWorker consumes pipeline tasks from redis and runs them through
// the configured handler. One worker process can serve many API nodes.
type ResumeWorker struct {
	BaseWorker
	handler queue.Handler
}

func NewResumeWorker(cfg *Config, handler queue.Handler, logger logger.Logger) (*ResumeWorker, error) {
	if handler == nil {
		return nil, fmt.Errorf("resume worker requires a handler")
	}

	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues:      cfg.Queues,
		},
	)

	w := &ResumeWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   logger,
			stopChan: make(chan struct{}),
		},
		handler: handler,
	}

	w.registerHandlers()
	return w, nil
}

func (w *ResumeWorker) registerHandlers() {
	w.mux.HandleFunc(queue.TaskTypeResumePipeline, w.handleResumePipeline)
}

func (w *ResumeWorker) handleResumePipeline(ctx context.Context, t *asynq.Task) error {
	var task queue.Task
	if err := json.Unmarshal(t.Payload(), &task); err != nil {
		w.logger.Error("Failed to unmarshal task",
			logger.String("payload", string(t.Payload())),
			logger.Error(err),
		)
		return fmt.Errorf("failed to unmarshal task: %w", err)
	}

	if task.RecordID == "" || task.StoragePath == "" {
		return fmt.Errorf("invalid task data: missing required fields")
	}

	w.logger.Info("Processing pipeline task",
		logger.String("recordId", task.RecordID),
		logger.String("filename", task.Filename),
	)

	return w.handler(ctx, &task)
}

func (w *ResumeWorker) Start(ctx context.Context) error {
	go func() {
		if err := w.server.Run(w.mux); err != nil {
			w.logger.Error("Worker server stopped", logger.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		w.Stop()
	}()

	return nil
}
