package driving

import (
	"context"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// AnswerRequest is one retrieval-augmented question.
type AnswerRequest struct {
	// Retriever supplies context chunks.
	Retriever Retriever

	// Question is the user's question.
	Question string

	// Memory holds prior turns. It is appended to only on success. May be nil.
	Memory *domain.Conversation

	// Corpus is the full extracted text used by the fallback answer.
	Corpus string

	// K is the number of chunks to retrieve; zero uses the configured default.
	K int
}

// AnswerService answers questions from retrieved context.
type AnswerService interface {
	// Answer runs the context-restricted answer and, when the model reports
	// the context has no answer, exactly one unrestricted fallback.
	Answer(ctx context.Context, req AnswerRequest) (domain.Answer, error)
}

// CompareService produces comparison briefs.
type CompareService interface {
	// Compare makes one LLM call and returns its output unparsed.
	Compare(ctx context.Context, input domain.ComparisonInput) (string, error)
}

// SessionLogService writes session transcripts.
type SessionLogService interface {
	// LogSession writes the transcript once and returns its storage URI.
	LogSession(ctx context.Context, meta domain.SessionMetadata, comparison string, turns []domain.Turn) (string, error)
}
