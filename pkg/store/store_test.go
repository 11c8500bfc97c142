package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feichai0017/resume-screener/internal/models"
)

func TestMergeAppliesOnlySetFields(t *testing.T) {
	r := &models.Resume{
		Filename: "cv.pdf",
		Text:     "original",
		Stage:    models.StageTextExtracted,
		Status:   true,
	}

	meta := &models.ResumeMetadata{Name: "Ada"}
	Merge(r, Patch{Metadata: meta})

	assert.Equal(t, "original", r.Text)
	assert.Equal(t, meta, r.Metadata)
	assert.Equal(t, models.StageTextExtracted, r.Stage)
	assert.True(t, r.Status)
}

func TestMergeStageGuard(t *testing.T) {
	r := &models.Resume{Stage: models.StageIndexed}

	earlier := models.StageCreated
	Merge(r, Patch{Stage: &earlier})
	assert.Equal(t, models.StageIndexed, r.Stage)

	same := models.StageIndexed
	Merge(r, Patch{Stage: &same})
	assert.Equal(t, models.StageIndexed, r.Stage)
}

func TestMergeUnknownStageNeverBlocks(t *testing.T) {
	r := &models.Resume{Stage: models.Stage("corrupt")}

	next := models.StageCreated
	Merge(r, Patch{Stage: &next})
	assert.Equal(t, models.StageCreated, r.Stage)
}
