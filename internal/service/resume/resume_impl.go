package resume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/feichai0017/resume-screener/internal/errs"
	"github.com/feichai0017/resume-screener/internal/index"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/queue"
	"github.com/feichai0017/resume-screener/pkg/storage"
	"github.com/feichai0017/resume-screener/pkg/store"
)

const defaultTopK = 5

type ResumeService struct {
	storage storage.Storage
	store   store.RecordStore
	index   index.Index
	queue   queue.Queue
	logger  logger.Logger
	config  *ServiceConfig
}

type ServiceConfig struct {
	MaxFileSize  int64
	AllowedTypes []string
}

var _ ResumeProcessor = (*ResumeService)(nil)

func NewService(
	stg storage.Storage,
	recordStore store.RecordStore,
	idx index.Index,
	q queue.Queue,
	log logger.Logger,
	cfg *ServiceConfig,
) ResumeProcessor {
	if cfg == nil {
		cfg = &ServiceConfig{
			MaxFileSize:  5 * 1024 * 1024, // 5MB
			AllowedTypes: []string{".pdf"},
		}
	}

	return &ResumeService{
		storage: stg,
		store:   recordStore,
		index:   idx,
		queue:   q,
		logger:  log,
		config:  cfg,
	}
}

// Upload implements ResumeProcessor.Upload
func (s *ResumeService) Upload(
	ctx context.Context,
	file multipart.File,
	header *multipart.FileHeader,
) (*models.UploadResult, error) {
	s.logger.Info("Starting resume upload",
		logger.String("filename", header.Filename),
		logger.Int64("size", header.Size),
	)

	if err := s.validateFile(header); err != nil {
		return nil, err
	}

	// Read through a capped reader so the declared size cannot lie about
	// the actual payload.
	content, err := io.ReadAll(io.LimitReader(file, s.config.MaxFileSize+1))
	if err != nil {
		return nil, errs.E(errs.KindStorageFailure, "failed to read uploaded file", err)
	}
	if int64(len(content)) > s.config.MaxFileSize {
		return nil, errs.Ef(errs.KindInvalidInput,
			"file size exceeds maximum limit of %d bytes", s.config.MaxFileSize)
	}

	// Timestamp prefix keeps repeated uploads of the same filename from
	// overwriting each other. The prefixed name is the record's display
	// name from here on.
	storedName := fmt.Sprintf("%d_%s", time.Now().Unix(), header.Filename)

	storagePath, err := s.storage.Store(ctx, bytes.NewReader(content), storedName)
	if err != nil {
		s.logger.Error("Failed to store resume",
			logger.String("filename", header.Filename),
			logger.Error(err),
		)
		return nil, errs.E(errs.KindStorageFailure, "failed to store file", err)
	}

	record := &models.Resume{
		Filename:    storedName,
		StoragePath: storagePath,
		Stage:       models.StageCreated,
		Status:      true,
		UploadedAt:  time.Now().UTC(),
	}

	id, err := s.store.Create(ctx, record)
	if err != nil {
		// Compensate: a record that was never created must not leave an
		// orphaned document behind.
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Error("Failed to delete orphaned document",
				logger.String("storagePath", storagePath),
				logger.Error(delErr),
			)
		}
		return nil, errs.E(errs.KindStorageFailure, "failed to create record", err)
	}

	task := &queue.Task{
		RecordID:    id,
		StoragePath: storagePath,
		Filename:    storedName,
		EnqueuedAt:  time.Now().UTC(),
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		// The record survives at its initial stage; a later scheduling of
		// the same record picks up where this one never started.
		s.logger.Error("Failed to enqueue pipeline task",
			logger.String("recordId", id),
			logger.Error(err),
		)
		return nil, errs.E(errs.KindServiceUnavailable, "failed to schedule processing", err)
	}

	s.logger.Info("Resume upload accepted",
		logger.String("recordId", id),
		logger.String("filename", storedName),
	)

	return &models.UploadResult{ID: id, Filename: storedName}, nil
}

// Lookup implements ResumeProcessor.Lookup
func (s *ResumeService) Lookup(ctx context.Context, id string) (*models.ResumeDetail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.Ef(errs.KindInvalidInput, "invalid resume id: %s", id)
	}

	record, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errs.Ef(errs.KindNotFound, "resume not found: %s", id)
		}
		return nil, errs.E(errs.KindStorageFailure, "failed to load record", err)
	}

	return &models.ResumeDetail{
		ID:         record.ID,
		Filename:   record.Filename,
		Metadata:   record.Metadata,
		Stage:      record.Stage,
		Status:     record.Status,
		Reason:     record.Reason,
		UploadedAt: record.UploadedAt,
	}, nil
}

// Search implements ResumeProcessor.Search
func (s *ResumeService) Search(ctx context.Context, req *models.SearchRequest) ([]models.SearchHit, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, errs.Ef(errs.KindInvalidInput, "description must not be empty")
	}

	topK := req.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	if s.index == nil {
		return nil, errs.Ef(errs.KindServiceUnavailable, "search index not configured")
	}

	hits, err := s.index.Search(ctx, description, topK)
	if err != nil {
		return nil, errs.E(errs.KindUpstreamFailure, "search failed", err)
	}

	results := make([]models.SearchHit, 0, len(hits))
	for _, h := range hits {
		results = append(results, models.SearchHit{
			ResumeID: h.ID,
			Filename: h.Metadata["filename"],
			Score:    math.Round(h.Score*10000) / 100,
		})
	}

	s.logger.Info("Search completed",
		logger.Int("hits", len(results)),
		logger.Int("topK", topK),
	)
	return results, nil
}

// PipelineStats implements ResumeProcessor.PipelineStats
func (s *ResumeService) PipelineStats(ctx context.Context) (*queue.Stats, error) {
	stats, err := s.queue.Stats(ctx)
	if err != nil {
		return nil, errs.E(errs.KindUpstreamFailure, "failed to read queue stats", err)
	}
	return stats, nil
}

func (s *ResumeService) validateFile(header *multipart.FileHeader) error {
	if header.Size > s.config.MaxFileSize {
		return errs.Ef(errs.KindInvalidInput,
			"file size exceeds maximum limit of %d bytes", s.config.MaxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	for _, t := range s.config.AllowedTypes {
		if t == ext {
			return nil
		}
	}
	return errs.Ef(errs.KindInvalidInput, "unsupported file type: %s", ext)
}
