package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/resume-screener/pkg/logger"
)

func TestLocalQueueRunsTasks(t *testing.T) {
	var handled atomic.Int64
	var wg sync.WaitGroup

	q, err := NewLocalQueue(2, func(ctx context.Context, task *Task) error {
		defer wg.Done()
		handled.Add(1)
		return nil
	}, logger.NewNop())
	require.NoError(t, err)
	defer q.Close()

	for i := 0; i < 5; i++ {
		wg.Add(1)
		require.NoError(t, q.Enqueue(context.Background(), &Task{RecordID: "r", EnqueuedAt: time.Now()}))
	}
	wg.Wait()

	assert.Equal(t, int64(5), handled.Load())
}

func TestLocalQueueCountsFailures(t *testing.T) {
	var wg sync.WaitGroup

	q, err := NewLocalQueue(1, func(ctx context.Context, task *Task) error {
		defer wg.Done()
		if task.Filename == "bad.pdf" {
			return errors.New("pipeline failed")
		}
		return nil
	}, logger.NewNop())
	require.NoError(t, err)
	defer q.Close()

	for _, name := range []string{"ok.pdf", "bad.pdf", "bad.pdf"} {
		wg.Add(1)
		require.NoError(t, q.Enqueue(context.Background(), &Task{RecordID: "r", Filename: name}))
	}
	wg.Wait()

	stats, err := q.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Failed)
	assert.Equal(t, 0, stats.Pending)
}

func TestLocalQueueRequiresHandler(t *testing.T) {
	_, err := NewLocalQueue(1, nil, logger.NewNop())
	assert.Error(t, err)
}

func TestLocalQueueRejectsAfterClose(t *testing.T) {
	q, err := NewLocalQueue(1, func(ctx context.Context, task *Task) error { return nil }, logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, q.Close())
	assert.Error(t, q.Enqueue(context.Background(), &Task{RecordID: "r"}))
}
