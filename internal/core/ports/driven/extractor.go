package driven

import (
	"context"
	"io"
)

// PDFExtractor pulls plain text out of PDF files.
type PDFExtractor interface {
	// Extract returns every page's text in page order, separated by a newline
	// and trimmed. Pages without extractable text contribute an empty string.
	// A file that cannot be opened returns an error wrapping domain.ErrExtraction.
	Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error)
}

// WebFetcher retrieves the visible text of a web page.
type WebFetcher interface {
	// Fetch downloads url and returns its visible text with whitespace collapsed.
	// Network errors, non-2xx statuses and timeouts are returned as errors;
	// callers decide how to degrade.
	Fetch(ctx context.Context, url string) (string, error)
}
