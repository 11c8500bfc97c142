package pipeline

import (
	"context"
	"fmt"

	"github.com/feichai0017/resume-screener/internal/enrich"
	"github.com/feichai0017/resume-screener/internal/extract"
	"github.com/feichai0017/resume-screener/internal/index"
	"github.com/feichai0017/resume-screener/internal/models"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/queue"
	"github.com/feichai0017/resume-screener/pkg/store"
)

// Pipeline drives one record through extraction, enrichment and
// indexing, committing progress to the record store after each stage.
//
// The stages are not transactional: a later failure never rolls back
// text or metadata already written. A failed record keeps the stage of
// its last completed step, carries status=false and a reason, and is
// never retried automatically.
type Pipeline struct {
	store     store.RecordStore
	extractor extract.Extractor
	enricher  enrich.Enricher
	index     index.Index
	logger    logger.Logger
}

func New(
	recordStore store.RecordStore,
	extractor extract.Extractor,
	enricher enrich.Enricher,
	idx index.Index,
	log logger.Logger,
) *Pipeline {
	return &Pipeline{
		store:     recordStore,
		extractor: extractor,
		enricher:  enricher,
		index:     idx,
		logger:    log,
	}
}

// Run executes the three stages for one task. Errors are captured into
// the record; the returned error only feeds queue failure counts.
func (p *Pipeline) Run(ctx context.Context, task *queue.Task) error {
	log := p.logger.With(
		logger.String("recordId", task.RecordID),
		logger.String("filename", task.Filename),
	)
	log.Info("Pipeline started")

	// Stage 1: extract raw text.
	text, err := p.extractor.Extract(ctx, task.StoragePath)
	if err != nil {
		p.fail(ctx, task.RecordID, err, log)
		return fmt.Errorf("extraction failed: %w", err)
	}

	stage := models.StageTextExtracted
	if err := p.store.Apply(ctx, task.RecordID, store.Patch{
		Text:  &text,
		Stage: &stage,
	}); err != nil {
		return fmt.Errorf("failed to persist extracted text: %w", err)
	}

	// Stage 2: enrichment, fully fault-masked. Any failure here yields
	// empty metadata and the record still advances with status=true.
	metadata, err := p.enricher.ExtractMetadata(ctx, text)
	if err != nil {
		log.Error("Enrichment failed, continuing with empty metadata",
			logger.Error(err),
		)
		metadata = &models.ResumeMetadata{}
	}

	stage = models.StageMetadataExtracted
	if err := p.store.Apply(ctx, task.RecordID, store.Patch{
		Metadata: metadata,
		Stage:    &stage,
	}); err != nil {
		return fmt.Errorf("failed to persist metadata: %w", err)
	}

	// Stage 3: idempotent vector upsert keyed by record identifier.
	err = p.index.Upsert(ctx, task.RecordID, text, map[string]string{
		"filename": task.Filename,
		"filepath": task.StoragePath,
	})
	if err != nil {
		p.fail(ctx, task.RecordID, err, log)
		return fmt.Errorf("indexing failed: %w", err)
	}

	stage = models.StageIndexed
	status := true
	reason := ""
	if err := p.store.Apply(ctx, task.RecordID, store.Patch{
		Stage:  &stage,
		Status: &status,
		Reason: &reason,
	}); err != nil {
		return fmt.Errorf("failed to persist final stage: %w", err)
	}

	log.Info("Pipeline completed")
	return nil
}

// fail freezes the record at its last completed stage. The reason is
// only discoverable through lookup; nothing is surfaced to callers.
func (p *Pipeline) fail(ctx context.Context, recordID string, cause error, log logger.Logger) {
	status := false
	reason := cause.Error()
	if err := p.store.Apply(ctx, recordID, store.Patch{
		Status: &status,
		Reason: &reason,
	}); err != nil {
		log.Error("Failed to record pipeline failure",
			logger.Error(err),
		)
		return
	}
	log.Warn("Pipeline stopped",
		logger.String("reason", reason),
	)
}
