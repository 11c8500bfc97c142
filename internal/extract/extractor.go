package extract

import (
	"context"
)

// Extractor converts a stored document into plain text. The returned
// text may be empty when the document contains none; failures never
// carry partial results.
type Extractor interface {
	Extract(ctx context.Context, storagePath string) (string, error)
}
