package index

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

// RedisIndex keeps vector entries in redis so the server and worker
// binaries share one index. Search scans the index keyspace and scores
// in-process; fine at resume-screening scale.
type RedisIndex struct {
	client    *redis.Client
	name      string
	embedder  Embedder
	dimension int
	metric    string
	logger    logger.Logger
}

var _ Index = (*RedisIndex)(nil)

func NewRedisIndex(c cfg.IndexConfig, embedder Embedder, log logger.Logger) (*RedisIndex, error) {
	if c.RedisAddr == "" {
		return nil, fmt.Errorf("redis index requires an address")
	}

	client := redis.NewClient(&redis.Options{
		Addr: c.RedisAddr,
		DB:   c.RedisDB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisIndex{
		client:    client,
		name:      c.Name,
		embedder:  embedder,
		dimension: c.Dimension,
		metric:    c.Metric,
		logger:    log,
	}, nil
}

func (r *RedisIndex) key(id string) string {
	return "idx:" + r.name + ":" + id
}

func (r *RedisIndex) pattern() string {
	return "idx:" + r.name + ":*"
}

// Upsert implements Index.Upsert
func (r *RedisIndex) Upsert(ctx context.Context, id, text string, metadata map[string]string) error {
	vec, err := embed(ctx, r.embedder, text, r.dimension, r.metric)
	if err != nil {
		return err
	}

	data, err := marshalEntry(&entry{ID: id, Vector: vec, Metadata: metadata})
	if err != nil {
		return err
	}

	if err := r.client.Set(ctx, r.key(id), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to upsert index entry: %w", err)
	}
	return nil
}

// Search implements Index.Search
func (r *RedisIndex) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	queryVec, err := embed(ctx, r.embedder, query, r.dimension, r.metric)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	iter := r.client.Scan(ctx, 0, r.pattern(), 0).Iterator()
	for iter.Next(ctx) {
		data, err := r.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			// Entry evicted between scan and read; skip it.
			continue
		}
		e, err := unmarshalEntry(data)
		if err != nil {
			return nil, err
		}
		if len(e.Vector) == 0 {
			continue
		}
		hits = append(hits, Hit{
			ID:       e.ID,
			Metadata: e.Metadata,
			Score:    dotProduct(queryVec, e.Vector),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	return rank(hits, topK), nil
}

func (r *RedisIndex) Close() error {
	return r.client.Close()
}
