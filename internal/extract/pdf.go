package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/resume-screener/internal/errs"
	"github.com/feichai0017/resume-screener/pkg/logger"
	"github.com/feichai0017/resume-screener/pkg/storage"
)

const maxPageWorkers = 4

// PDFExtractor reads a raw document from storage and extracts its plain
// text, pages in parallel, output in page order.
type PDFExtractor struct {
	storage storage.Storage
	logger  logger.Logger
}

var _ Extractor = (*PDFExtractor)(nil)

func NewPDFExtractor(store storage.Storage, log logger.Logger) *PDFExtractor {
	return &PDFExtractor{
		storage: store,
		logger:  log,
	}
}

// Extract implements Extractor.Extract
func (p *PDFExtractor) Extract(ctx context.Context, storagePath string) (string, error) {
	reader, err := p.storage.Get(ctx, storagePath)
	if err != nil {
		if storage.IsNotFound(err) {
			return "", errs.E(errs.KindNotFound, "document not found", err)
		}
		return "", errs.E(errs.KindStorageFailure, "failed to read document", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", errs.E(errs.KindStorageFailure, "failed to read document", err)
	}

	byteReader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(byteReader, byteReader.Size())
	if err != nil {
		return "", errs.E(errs.KindUpstreamFailure, "failed to parse pdf", err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, numPages)

	g, ctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxPageWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return ctx.Err()
			}

			page := pdfReader.Page(pageNum)
			if page.V.IsNull() {
				return nil
			}

			text, err := page.GetPlainText(nil)
			if err != nil {
				return fmt.Errorf("failed to get text from page %d: %w", pageNum, err)
			}
			pages[pageNum-1] = text
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", errs.E(errs.KindUpstreamFailure, "failed to parse pdf", err)
	}

	return normalizeWhitespace(strings.Join(pages, "\n")), nil
}

var (
	spaceRun   = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlineRun = regexp.MustCompile(`\n+`)
)

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
