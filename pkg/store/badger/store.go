package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/google/uuid"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/store"
)

const (
	recordKeyPrefix = "resume:"
	// Apply retries read-modify-write on transaction conflict; the last
	// writer of each field-set wins.
	maxConflictRetries = 5
)

// RecordStore is an embedded BadgerDB-backed record store. Single
// process only; the redis backend covers the server+worker deployment.
type RecordStore struct {
	db     *badger.DB
	logger logger.Logger
}

var _ store.RecordStore = (*RecordStore)(nil)

// badgerLoggerAdapter routes badger's internal logging to ours.
type badgerLoggerAdapter struct {
	logger logger.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...interface{}) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...interface{}) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...interface{}) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...interface{}) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func NewRecordStore(c cfg.StoreConfig, log logger.Logger) (*RecordStore, error) {
	db, err := open(c.BadgerDir, log)
	if err != nil {
		return nil, err
	}
	return &RecordStore{db: db, logger: log}, nil
}

// Open opens a BadgerDB at dir, creating the directory if needed.
// Shared with the badger vector index.
func open(dir string, log logger.Logger) (*badger.DB, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLoggerAdapter{logger: log}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return db, nil
}

func recordKey(id string) []byte {
	return []byte(recordKeyPrefix + id)
}

// Create implements store.RecordStore.Create
func (s *RecordStore) Create(ctx context.Context, r *models.Resume) (string, error) {
	r.ID = uuid.New().String()

	data, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	err = s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(recordKey(r.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to insert record: %w", err)
	}
	return r.ID, nil
}

// Apply implements store.RecordStore.Apply
func (s *RecordStore) Apply(ctx context.Context, id string, p store.Patch) error {
	var err error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		err = s.applyOnce(id, p)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("failed to apply patch after retries: %w", err)
}

func (s *RecordStore) applyOnce(id string, p store.Patch) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	item, err := tx.Get(recordKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to read record: %w", err)
	}

	var r models.Resume
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &r)
	}); err != nil {
		return fmt.Errorf("failed to unmarshal record: %w", err)
	}

	store.Merge(&r, p)

	data, err := json.Marshal(&r)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := tx.Set(recordKey(id), data); err != nil {
		return err
	}
	return tx.Commit()
}

// Get implements store.RecordStore.Get
func (s *RecordStore) Get(ctx context.Context, id string) (*models.Resume, error) {
	var r models.Resume
	err := s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(recordKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return store.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &r)
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return &r, nil
}

func (s *RecordStore) Close() error {
	return s.db.Close()
}
