package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// FetchErrorPrefix starts the placeholder text of a page that could not be fetched.
const FetchErrorPrefix = domain.FetchErrorPrefix

// ExtractionService turns PDFs and web pages into source documents.
type ExtractionService struct {
	pdf driven.PDFExtractor
	web driven.WebFetcher
	now func() time.Time
}

// NewExtractionService creates a new extraction service.
// Either extractor may be nil when that source type is not used.
func NewExtractionService(pdf driven.PDFExtractor, web driven.WebFetcher) *ExtractionService {
	return &ExtractionService{
		pdf: pdf,
		web: web,
		now: time.Now,
	}
}

// ExtractPDF reads every page of the PDF in r.
func (s *ExtractionService) ExtractPDF(
	ctx context.Context, origin string, r io.ReaderAt, size int64,
) (domain.SourceDocument, error) {
	if s.pdf == nil {
		return domain.SourceDocument{}, fmt.Errorf("%w: no pdf extractor configured", domain.ErrExtraction)
	}

	logger.Debug("extracting pdf %s (%d bytes)", origin, size)
	text, err := s.pdf.Extract(ctx, r, size)
	if err != nil {
		if !errors.Is(err, domain.ErrExtraction) {
			err = fmt.Errorf("%w: %w", domain.ErrExtraction, err)
		}
		return domain.SourceDocument{}, fmt.Errorf("extract %s: %w", origin, err)
	}

	return domain.SourceDocument{
		Origin:      origin,
		Text:        text,
		ExtractedAt: s.now(),
	}, nil
}

// FetchURL fetches url. A failed fetch yields a document whose text is a
// placeholder starting with FetchErrorPrefix.
func (s *ExtractionService) FetchURL(ctx context.Context, url string) domain.SourceDocument {
	doc := domain.SourceDocument{Origin: url}

	var (
		text string
		err  error
	)
	if s.web == nil {
		err = errors.New("no web fetcher configured")
	} else {
		text, err = s.web.Fetch(ctx, url)
	}
	if err != nil {
		logger.Warn("fetch %s: %v", url, err)
		text = FetchErrorPrefix + err.Error()
	}

	doc.Text = text
	doc.ExtractedAt = s.now()
	return doc
}

// FetchURLs fetches each url in order.
func (s *ExtractionService) FetchURLs(ctx context.Context, urls []string) []domain.SourceDocument {
	docs := make([]domain.SourceDocument, 0, len(urls))
	for _, u := range urls {
		docs = append(docs, s.FetchURL(ctx, u))
	}
	return docs
}

// IsFetchError reports whether doc holds a fetch failure placeholder.
func IsFetchError(doc domain.SourceDocument) bool {
	return doc.IsFetchError()
}
