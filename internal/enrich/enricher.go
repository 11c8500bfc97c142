package enrich

import (
	"context"

	"github.com/feichai0017/resume-screener/internal/models"
)

// Enricher converts extracted plain text into structured resume fields
// via an external reasoning service.
//
// The contract is best-effort: when the service answers with something
// that cannot be mapped onto the schema, implementations return an
// empty ResumeMetadata and a nil error. Callers cannot distinguish
// "nothing found" from "malformed response"; that masking is part of
// the pipeline's behavior.
type Enricher interface {
	ExtractMetadata(ctx context.Context, text string) (*models.ResumeMetadata, error)
}
