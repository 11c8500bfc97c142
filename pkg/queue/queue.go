package queue

import (
	"context"
	"time"
)

// TaskTypeResumePipeline identifies a pipeline run for one record.
const TaskTypeResumePipeline = "resume:pipeline"

// Task is one unit of pipeline work. Tasks are deliberately not
// deduplicated: scheduling the same record twice runs two pipelines,
// and the store's stage guard makes them converge.
type Task struct {
	RecordID    string    `json:"recordId"`
	StoragePath string    `json:"storagePath"`
	Filename    string    `json:"filename"`
	EnqueuedAt  time.Time `json:"enqueuedAt"`
}

// Stats exposes coarse queue counts for operability. Per-record
// outcomes live on the records themselves.
type Stats struct {
	Pending  int `json:"pending"`
	InFlight int `json:"inFlight"`
	Failed   int `json:"failed"`
}

// Handler runs the pipeline for one task. A non-nil return is recorded
// in queue stats only; pipeline failures are captured on the record and
// never retried.
type Handler func(ctx context.Context, task *Task) error

// Queue schedules pipeline runs without blocking the caller.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	Stats(ctx context.Context) (*Stats, error)
	Close() error
}
