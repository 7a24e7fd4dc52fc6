package driving

import (
	"context"

	"github.com/custodia-labs/briefly/internal/core/domain"
)

// SourceRequest names the inputs for one session.
type SourceRequest struct {
	// DocumentPath is a local PDF; empty to skip.
	DocumentPath string

	// PrimaryURL is the reference program page; empty to skip.
	PrimaryURL string

	// CompetitorURL is the competitor program page; empty to skip.
	CompetitorURL string
}

// AssistantService drives a sales session end to end.
type AssistantService interface {
	// NewSession creates an empty session with a random id.
	NewSession() *domain.Session

	// LoadSources extracts every requested source into the session.
	// A source already loaded for the same origin is not fetched again.
	LoadSources(ctx context.Context, session *domain.Session, req SourceRequest) error

	// LoadKnowledgeBase loads or builds the index for the session's sources.
	LoadKnowledgeBase(ctx context.Context, session *domain.Session) error

	// Compare generates the comparison brief and stores it on the session.
	Compare(ctx context.Context, session *domain.Session, followUp string) (string, error)

	// Ask answers a question against the session's knowledge base.
	Ask(ctx context.Context, session *domain.Session, question string) (domain.Answer, error)

	// Save writes the session transcript and returns its URI.
	Save(ctx context.Context, session *domain.Session) (string, error)

	// EndSession releases the session's knowledge base.
	EndSession(session *domain.Session)
}

// InterviewService generates and stores interview questions.
type InterviewService interface {
	// Generate asks the LLM for count questions about description.
	Generate(ctx context.Context, description string, count int) ([]string, error)

	// UploadDescription stores the original job description file and returns its URI.
	UploadDescription(ctx context.Context, jobID, filename string, data []byte) (string, error)

	// SaveQuestions appends a role to the job record and writes it back.
	SaveQuestions(ctx context.Context, jobID, description string, questions []string) (*domain.JobRecord, error)

	// GetJob returns the stored job record.
	GetJob(ctx context.Context, jobID string) (*domain.JobRecord, error)
}
