package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/store"
)

const (
	recordKeyPrefix = "resume:"
	// WATCH-based merge is retried when another writer commits first;
	// the last writer of each field-set wins.
	maxTxRetries = 5
)

// RecordStore keeps records as JSON values in redis, shared between the
// server and worker binaries.
type RecordStore struct {
	client *redis.Client
	logger logger.Logger
}

var _ store.RecordStore = (*RecordStore)(nil)

func NewRecordStore(c cfg.StoreConfig, log logger.Logger) (*RecordStore, error) {
	if c.RedisAddr == "" {
		return nil, fmt.Errorf("redis store requires an address")
	}

	client := redis.NewClient(&redis.Options{
		Addr: c.RedisAddr,
		DB:   c.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RecordStore{client: client, logger: log}, nil
}

func recordKey(id string) string {
	return recordKeyPrefix + id
}

// Create implements store.RecordStore.Create
func (s *RecordStore) Create(ctx context.Context, r *models.Resume) (string, error) {
	r.ID = uuid.New().String()

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	if err := s.client.Set(ctx, recordKey(r.ID), data, 0).Err(); err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return r.ID, nil
}

// Apply implements store.RecordStore.Apply
func (s *RecordStore) Apply(ctx context.Context, id string, p store.Patch) error {
	key := recordKey(id)

	merge := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return store.ErrNotFound
			}
			return fmt.Errorf("failed to read record: %w", err)
		}

		var r models.Resume
		if err := json.Unmarshal(data, &r); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		store.Merge(&r, p)

		updated, err := json.Marshal(&r)
		if err != nil {
			return fmt.Errorf("failed to marshal record: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < maxTxRetries; attempt++ {
		err = s.client.Watch(ctx, merge, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("failed to apply patch after retries: %w", err)
}

// Get implements store.RecordStore.Get
func (s *RecordStore) Get(ctx context.Context, id string) (*models.Resume, error) {
	data, err := s.client.Get(ctx, recordKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var r models.Resume
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &r, nil
}

func (s *RecordStore) Close() error {
	return s.client.Close()
}
