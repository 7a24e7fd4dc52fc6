package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// ExtractionService turns PDFs and web pages into SourceDocuments.
type ExtractionService interface {
	// ExtractPDF reads every page of a PDF. An unreadable file returns an
	// error wrapping domain.ErrExtraction.
	ExtractPDF(ctx context.Context, origin string, r io.ReaderAt, size int64) (domain.SourceDocument, error)

	// FetchURL fetches a web page. Failures never return an error: the
	// document text becomes an explanatory placeholder instead.
	FetchURL(ctx context.Context, url string) domain.SourceDocument

	// FetchURLs fetches each URL in order with FetchURL semantics.
	FetchURLs(ctx context.Context, urls []string) []domain.SourceDocument
}
