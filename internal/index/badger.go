package index

import (
	"context"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/pkg/logger"
)

// BadgerIndex is an embedded similarity index: vectors live in their
// own BadgerDB, one entry per record identifier. Good for the
// single-binary deployment; the redis index covers the shared one.
type BadgerIndex struct {
	db        *badger.DB
	embedder  Embedder
	name      string
	dimension int
	metric    string
	logger    logger.Logger
}

var _ Index = (*BadgerIndex)(nil)

func NewBadgerIndex(c cfg.IndexConfig, embedder Embedder, log logger.Logger) (*BadgerIndex, error) {
	if err := os.MkdirAll(c.BadgerDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	opts := badger.DefaultOptions(c.BadgerDir)
	opts.Logger = nil
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open index: %w", err)
	}

	return &BadgerIndex{
		db:        db,
		embedder:  embedder,
		name:      c.Name,
		dimension: c.Dimension,
		metric:    c.Metric,
		logger:    log,
	}, nil
}

func (b *BadgerIndex) key(id string) []byte {
	return []byte("idx:" + b.name + ":" + id)
}

func (b *BadgerIndex) prefix() []byte {
	return []byte("idx:" + b.name + ":")
}

// Upsert implements Index.Upsert
func (b *BadgerIndex) Upsert(ctx context.Context, id, text string, metadata map[string]string) error {
	vec, err := embed(ctx, b.embedder, text, b.dimension, b.metric)
	if err != nil {
		return err
	}

	data, err := marshalEntry(&entry{ID: id, Vector: vec, Metadata: metadata})
	if err != nil {
		return err
	}

	err = b.db.Update(func(tx *badger.Txn) error {
		return tx.Set(b.key(id), data)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert index entry: %w", err)
	}
	return nil
}

// Search implements Index.Search
func (b *BadgerIndex) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	queryVec, err := embed(ctx, b.embedder, query, b.dimension, b.metric)
	if err != nil {
		return nil, err
	}

	var hits []Hit
	err = b.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.prefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var e *entry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				e, err = unmarshalEntry(val)
				return err
			})
			if err != nil {
				return err
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
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	return rank(hits, topK), nil
}

func (b *BadgerIndex) Close() error {
	return b.db.Close()
}
