package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
)

// Ensure InterviewService implements the interface.
var _ driving.InterviewService = (*InterviewService)(nil)

// Interview defaults.
const (
	DefaultQuestionCount = 10
	DescriptionPrefix    = "job_descriptions"
	interviewMaxTokens   = 1000
	maxQuestionCount     = 50
)

// InterviewService generates interview questions from job descriptions and
// keeps them per job id.
type InterviewService struct {
	llm     driven.LLMService
	prompts driven.PromptStore
	blobs   driven.BlobStore
	items   driven.ItemStore
}

// NewInterviewService creates a new interview service.
// blobs and items may be nil when uploads or persistence are not used.
func NewInterviewService(
	llm driven.LLMService, prompts driven.PromptStore, blobs driven.BlobStore, items driven.ItemStore,
) *InterviewService {
	return &InterviewService{
		llm:     llm,
		prompts: prompts,
		blobs:   blobs,
		items:   items,
	}
}

// Generate asks for count questions (default 10) and returns one per line.
func (s *InterviewService) Generate(ctx context.Context, description string, count int) ([]string, error) {
	logger.Section("Interview Questions")

	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: empty job description", domain.ErrInvalidInput)
	}
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if count > maxQuestionCount {
		return nil, fmt.Errorf("%w: at most %d questions", domain.ErrInvalidInput, maxQuestionCount)
	}
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	tmpl, err := s.prompts.Load(driven.PromptInterviewQuestions)
	if err != nil {
		return nil, fmt.Errorf("load prompt %s: %w", driven.PromptInterviewQuestions, err)
	}

	out, err := s.llm.Generate(ctx, fmt.Sprintf(tmpl, count, description), driven.GenerateOptions{
		MaxTokens:   interviewMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return nil, domain.NewGenerationError("questions", err)
	}

	var questions []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			questions = append(questions, line)
		}
	}
	logger.Debug("generated %d questions", len(questions))
	return questions, nil
}

// UploadDescription stores the job description file under
// job_descriptions/<jobID><ext>.
func (s *InterviewService) UploadDescription(
	ctx context.Context, jobID, filename string, data []byte,
) (string, error) {
	if err := validateJobID(jobID); err != nil {
		return "", err
	}
	if s.blobs == nil {
		return "", fmt.Errorf("%w: no blob store configured", domain.ErrInvalidInput)
	}

	key := path.Join(DescriptionPrefix, jobID+strings.ToLower(path.Ext(filename)))
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return "", domain.NewStorageWriteError(key, err)
	}
	return s.blobs.URI(key), nil
}

// SaveQuestions appends a role to the job's record, creating the record if
// needed, and writes the whole record back.
func (s *InterviewService) SaveQuestions(
	ctx context.Context, jobID, description string, questions []string,
) (*domain.JobRecord, error) {
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}

	record, err := s.GetJob(ctx, jobID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		record = &domain.JobRecord{JobID: jobID}
	case err != nil:
		return nil, err
	}

	record.Roles = append(record.Roles, domain.JobRole{
		JobDescription: description,
		Questions:      append([]string{}, questions...),
	})

	item, err := recordToItem(record)
	if err != nil {
		return nil, err
	}
	if err := s.items.PutItem(ctx, jobID, item); err != nil {
		return nil, domain.NewStorageWriteError(jobID, err)
	}

	logger.Info("saved %d questions for job %s (%d roles)", len(questions), jobID, len(record.Roles))
	return record, nil
}

// GetJob returns the stored record for jobID.
func (s *InterviewService) GetJob(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	if err := validateJobID(jobID); err != nil {
		return nil, err
	}
	if s.items == nil {
		return nil, fmt.Errorf("%w: no item store configured", domain.ErrInvalidInput)
	}

	item, err := s.items.GetItem(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return itemToRecord(jobID, item)
}

func validateJobID(jobID string) error {
	if strings.TrimSpace(jobID) == "" || strings.ContainsAny(jobID, `/\`) {
		return fmt.Errorf("%w: job id %q", domain.ErrInvalidInput, jobID)
	}
	return nil
}

// Items round-trip through JSON so every store's value types decode the same way.
func itemToRecord(jobID string, item map[string]any) (*domain.JobRecord, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode job %s: %w", jobID, err)
	}
	var record domain.JobRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	record.JobID = jobID
	return &record, nil
}

func recordToItem(record *domain.JobRecord) (map[string]any, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode job %s: %w", record.JobID, err)
	}
	var item map[string]any
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("encode job %s: %w", record.JobID, err)
	}
	return item, nil
}
