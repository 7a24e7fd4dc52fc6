// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// chunkNamespace scopes chunk IDs so they never collide with other SHA1 UUIDs.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("briefly:chunk"))

// Processor splits document text into fixed-size chunks.
//
// Sizes are measured in characters (runes), not bytes, so a chunk never
// ends in the middle of a multi-byte character. Every chunk after the first
// starts with the last Overlap characters of its predecessor; dropping those
// characters and concatenating reconstructs the source text exactly.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// ChunkSize returns the configured chunk size in characters.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in characters.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document text into chunks ordered by ordinal.
func (p *Processor) Process(ctx context.Context, doc domain.SourceDocument) ([]domain.Chunk, error) {
	if doc.Text == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	content := []rune(doc.Text)
	contentLen := len(content)
	step := p.chunkSize - p.overlap

	// Estimate number of chunks
	estimatedChunks := (contentLen / step) + 1
	chunks := make([]domain.Chunk, 0, estimatedChunks)

	for start, ordinal := 0, 0; start < contentLen; start, ordinal = start+step, ordinal+1 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := start + p.chunkSize
		if end > contentLen {
			end = contentLen
		}

		chunks = append(chunks, domain.Chunk{
			ID:      ChunkID(doc.Origin, ordinal),
			Origin:  doc.Origin,
			Ordinal: ordinal,
			Text:    string(content[start:end]),
		})

		// The tail is covered; another step would only repeat overlap.
		if end == contentLen {
			break
		}
	}

	return chunks, nil
}

// ChunkID returns the stable identifier of the chunk at ordinal within origin.
// Identical inputs always produce the same ID, across processes.
func ChunkID(origin string, ordinal int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(origin+"#"+strconv.Itoa(ordinal))).String()
}
