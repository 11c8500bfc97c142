package resume

import (
	"context"
	"mime/multipart"

	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/queue"
)

// ResumeProcessor is the application surface behind the HTTP handlers.
type ResumeProcessor interface {
	// Upload validates and stores the document, creates its record and
	// schedules a pipeline run. It returns before any stage executes.
	Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*models.UploadResult, error)
	// Lookup returns the caller-facing view of one record.
	Lookup(ctx context.Context, id string) (*models.ResumeDetail, error)
	// Search ranks indexed resumes against a free-text description.
	Search(ctx context.Context, req *models.SearchRequest) ([]models.SearchHit, error)
	// PipelineStats reports coarse queue counts.
	PipelineStats(ctx context.Context) (*queue.Stats, error)
}
