package badger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/store"
)

func setupTestStore(t *testing.T) *RecordStore {
	s, err := NewRecordStore(cfg.StoreConfig{BadgerDir: t.TempDir()}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestRecord() *models.Resume {
	return &models.Resume{
		Filename:    "cv.pdf",
		StoragePath: "1700000000_cv.pdf",
		Stage:       models.StageCreated,
		Status:      true,
		UploadedAt:  time.Now().UTC(),
	}
}

func TestCreateAssignsID(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, newTestRecord())
	require.NoError(t, err)

	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "cv.pdf", got.Filename)
	assert.Equal(t, models.StageCreated, got.Stage)
	assert.True(t, got.Status)
}

func TestGetMissingRecord(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get(context.Background(), uuid.New().String())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApplyMergesFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, newTestRecord())
	require.NoError(t, err)

	text := "ten years of Go"
	stage := models.StageTextExtracted
	require.NoError(t, s.Apply(ctx, id, store.Patch{Text: &text, Stage: &stage}))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, text, got.Text)
	assert.Equal(t, models.StageTextExtracted, got.Stage)
	// untouched fields survive the patch
	assert.Equal(t, "cv.pdf", got.Filename)
	assert.True(t, got.Status)
}

func TestApplyMissingRecord(t *testing.T) {
	s := setupTestStore(t)

	status := false
	err := s.Apply(context.Background(), uuid.New().String(), store.Patch{Status: &status})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestApplyNeverRegressesStage(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, newTestRecord())
	require.NoError(t, err)

	indexed := models.StageIndexed
	require.NoError(t, s.Apply(ctx, id, store.Patch{Stage: &indexed}))

	// a duplicate pipeline run replaying an earlier stage must not move
	// the record backwards
	earlier := models.StageTextExtracted
	text := "replayed text"
	require.NoError(t, s.Apply(ctx, id, store.Patch{Stage: &earlier, Text: &text}))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.StageIndexed, got.Stage)
	assert.Equal(t, text, got.Text)
}

func TestApplyFailureFields(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, newTestRecord())
	require.NoError(t, err)

	status := false
	reason := "failed to parse pdf"
	require.NoError(t, s.Apply(ctx, id, store.Patch{Status: &status, Reason: &reason}))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, got.Status)
	assert.Equal(t, reason, got.Reason)
	assert.Equal(t, models.StageCreated, got.Stage)
}
