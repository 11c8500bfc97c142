package store

import (
	"context"
	"errors"

	"github.com/feichai0017/resume-screener/internal/models"
)

var (
	// ErrNotFound indicates that no record exists for the identifier.
	ErrNotFound = errors.New("record not found")
)

// Patch is a partial update. Nil fields are left untouched, so each
// pipeline stage commits only the fields it owns and concurrent stages
// resolve last-write-wins per field-set.
type Patch struct {
	Text     *string
	Metadata *models.ResumeMetadata
	Stage    *models.Stage
	Status   *bool
	Reason   *string
}

// RecordStore is durable keyed persistence for resume records.
type RecordStore interface {
	// Create inserts the record and returns the store-assigned identifier.
	Create(ctx context.Context, r *models.Resume) (string, error)
	// Apply merges a patch into an existing record.
	Apply(ctx context.Context, id string, p Patch) error
	// Get fetches a record by identifier.
	Get(ctx context.Context, id string) (*models.Resume, error)
	Close() error
}

// Merge applies p to r in place. The stage field is guarded: a patch
// can never move a record to an earlier stage, so duplicate pipeline
// runs converge instead of regressing.
func Merge(r *models.Resume, p Patch) {
	if p.Text != nil {
		r.Text = *p.Text
	}
	if p.Metadata != nil {
		r.Metadata = p.Metadata
	}
	if p.Stage != nil && p.Stage.Ordinal() >= r.Stage.Ordinal() {
		r.Stage = *p.Stage
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
	if p.Reason != nil {
		r.Reason = *p.Reason
	}
}
