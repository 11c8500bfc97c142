package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	cfg "github.com/feichai0017/resume-screener/config"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/storage/local"
	"github.com/feichai0017/resume-screener/pkg/storage/minio"
	"github.com/feichai0017/resume-screener/pkg/storage/s3"
)

// ErrNotFound is returned by Get when the key does not resolve to a
// stored document.
var ErrNotFound = local.ErrNotFound

// Storage is the raw-document store: write-once by the gatekeeper,
// read-once by the extraction stage.
type Storage interface {
	// Store writes the document under key and returns the storage path.
	Store(ctx context.Context, reader io.Reader, key string) (string, error)
	// Get opens the document at key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the document. Used as the compensating action when
	// record creation fails after a successful write.
	Delete(ctx context.Context, key string) error
}

// NewStorage builds the backend selected by configuration.
func NewStorage(c cfg.StorageConfig, log logger.Logger) (Storage, error) {
	switch c.Backend {
	case "local", "":
		return local.NewLocalStorage(c.Local, log)
	case "minio":
		return minio.NewMinioStorage(c.Minio, log)
	case "s3":
		return s3.NewS3Storage(c.S3, log)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", c.Backend)
	}
}

// IsNotFound reports whether err means the document does not exist,
// regardless of the backend that produced it.
func IsNotFound(err error) bool {
	return errors.Is(err, local.ErrNotFound) ||
		minio.IsNotFound(err) ||
		s3.IsNotFound(err)
}
