// Package pdf extracts plain text from PDF files.
package pdf

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dslipak/pdf"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.PDFExtractor = (*Normaliser)(nil)

// Normaliser extracts page text from PDF files.
type Normaliser struct{}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract returns the text of every page in page order separated by newlines,
// trimmed. Pages that fail to decode contribute an empty string.
func (n *Normaliser) Extract(ctx context.Context, r io.ReaderAt, size int64) (text string, err error) {
	if r == nil || size <= 0 {
		return "", fmt.Errorf("%w: empty pdf", domain.ErrExtraction)
	}

	// The parser panics on some malformed files rather than returning errors.
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = fmt.Errorf("%w: open pdf: %v", domain.ErrExtraction, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %w", domain.ErrExtraction, err)
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		pages = append(pages, pageText(reader, i))
	}

	return strings.TrimSpace(strings.Join(pages, "\n")), nil
}

// pageText returns the plain text of page i, or "" if it cannot be read.
func pageText(reader *pdf.Reader, i int) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Debug("pdf: page %d unreadable: %v", i, rec)
			text = ""
		}
	}()

	page := reader.Page(i)
	if page.V.IsNull() {
		return ""
	}

	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		if _, ok := fonts[name]; ok {
			continue
		}
		font := page.Font(name)
		fonts[name] = &font
	}

	content, err := page.GetPlainText(fonts)
	if err != nil {
		logger.Debug("pdf: page %d: %v", i, err)
		return ""
	}
	return strings.TrimSpace(content)
}
