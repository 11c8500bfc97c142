package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/internal/index"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/queue"
	"github.com/feichai0017/resume-screener/pkg/store"
	badgerstore "github.com/feichai0017/resume-screener/pkg/store/badger"
)

type testExtractor struct {
	text        string
	shouldError bool
}

func (m *testExtractor) Extract(ctx context.Context, storagePath string) (string, error) {
	if m.shouldError {
		return "", errors.New("failed to parse pdf")
	}
	return m.text, nil
}

type testEnricher struct {
	metadata    *models.ResumeMetadata
	shouldError bool
}

func (m *testEnricher) ExtractMetadata(ctx context.Context, text string) (*models.ResumeMetadata, error) {
	if m.shouldError {
		return nil, errors.New("reasoning service call failed")
	}
	if m.metadata != nil {
		return m.metadata, nil
	}
	return &models.ResumeMetadata{}, nil
}

type testIndex struct {
	upserts     map[string]string
	shouldError bool
}

func (m *testIndex) Upsert(ctx context.Context, id, text string, metadata map[string]string) error {
	if m.shouldError {
		return errors.New("embedding failed")
	}
	if m.upserts == nil {
		m.upserts = make(map[string]string)
	}
	m.upserts[id] = text
	return nil
}

func (m *testIndex) Search(ctx context.Context, query string, topK int) ([]index.Hit, error) {
	return nil, nil
}

func (m *testIndex) Close() error { return nil }

func setupTestStore(t *testing.T) store.RecordStore {
	s, err := badgerstore.NewRecordStore(cfg.StoreConfig{BadgerDir: t.TempDir()}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createRecord(t *testing.T, s store.RecordStore) *queue.Task {
	id, err := s.Create(context.Background(), &models.Resume{
		Filename:    "cv.pdf",
		StoragePath: "1700000000_cv.pdf",
		Stage:       models.StageCreated,
		Status:      true,
		UploadedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	return &queue.Task{
		RecordID:    id,
		StoragePath: "1700000000_cv.pdf",
		Filename:    "cv.pdf",
		EnqueuedAt:  time.Now().UTC(),
	}
}

func TestRunAdvancesThroughAllStages(t *testing.T) {
	s := setupTestStore(t)
	task := createRecord(t, s)

	idx := &testIndex{}
	meta := &models.ResumeMetadata{Name: "Ada", Skills: []string{"go"}}
	p := New(s, &testExtractor{text: "extracted text"}, &testEnricher{metadata: meta}, idx, logger.NewNop())

	require.NoError(t, p.Run(context.Background(), task))

	got, err := s.Get(context.Background(), task.RecordID)
	require.NoError(t, err)
	assert.Equal(t, models.StageIndexed, got.Stage)
	assert.True(t, got.Status)
	assert.Empty(t, got.Reason)
	assert.Equal(t, "extracted text", got.Text)
	require.NotNil(t, got.Metadata)
	assert.Equal(t, "Ada", got.Metadata.Name)
	assert.Equal(t, "extracted text", idx.upserts[task.RecordID])
}

func TestRunExtractionFailureFreezesRecord(t *testing.T) {
	s := setupTestStore(t)
	task := createRecord(t, s)

	idx := &testIndex{}
	p := New(s, &testExtractor{shouldError: true}, &testEnricher{}, idx, logger.NewNop())

	err := p.Run(context.Background(), task)
	assert.Error(t, err)

	got, getErr := s.Get(context.Background(), task.RecordID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StageCreated, got.Stage)
	assert.False(t, got.Status)
	assert.Contains(t, got.Reason, "failed to parse pdf")
	assert.Empty(t, idx.upserts)
}

func TestRunMasksEnrichmentFailure(t *testing.T) {
	s := setupTestStore(t)
	task := createRecord(t, s)

	p := New(s, &testExtractor{text: "extracted text"}, &testEnricher{shouldError: true}, &testIndex{}, logger.NewNop())

	require.NoError(t, p.Run(context.Background(), task))

	got, err := s.Get(context.Background(), task.RecordID)
	require.NoError(t, err)
	assert.Equal(t, models.StageIndexed, got.Stage)
	assert.True(t, got.Status)
	require.NotNil(t, got.Metadata)
	assert.Empty(t, got.Metadata.Name)
}

func TestRunIndexFailureKeepsEarlierStages(t *testing.T) {
	s := setupTestStore(t)
	task := createRecord(t, s)

	p := New(s, &testExtractor{text: "extracted text"}, &testEnricher{}, &testIndex{shouldError: true}, logger.NewNop())

	err := p.Run(context.Background(), task)
	assert.Error(t, err)

	got, getErr := s.Get(context.Background(), task.RecordID)
	require.NoError(t, getErr)
	assert.Equal(t, models.StageMetadataExtracted, got.Stage)
	assert.False(t, got.Status)
	assert.Contains(t, got.Reason, "embedding failed")
	assert.Equal(t, "extracted text", got.Text)
}

func TestDuplicateRunConverges(t *testing.T) {
	s := setupTestStore(t)
	task := createRecord(t, s)

	p := New(s, &testExtractor{text: "extracted text"}, &testEnricher{}, &testIndex{}, logger.NewNop())
	require.NoError(t, p.Run(context.Background(), task))

	// a replay that fails at extraction flips status but cannot move the
	// record back to an earlier stage
	replay := New(s, &testExtractor{shouldError: true}, &testEnricher{}, &testIndex{}, logger.NewNop())
	assert.Error(t, replay.Run(context.Background(), task))

	got, err := s.Get(context.Background(), task.RecordID)
	require.NoError(t, err)
	assert.Equal(t, models.StageIndexed, got.Stage)
	assert.False(t, got.Status)

	// a clean replay restores status and leaves the stage terminal
	require.NoError(t, p.Run(context.Background(), task))
	got, err = s.Get(context.Background(), task.RecordID)
	require.NoError(t, err)
	assert.Equal(t, models.StageIndexed, got.Stage)
	assert.True(t, got.Status)
	assert.Empty(t, got.Reason)
}
