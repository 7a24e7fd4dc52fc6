package mcp

import (
	"context"
	"io"
	"time"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
)

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	nextID     int
	sourcesErr error
	kbErr      error
	brief      string
	answer     domain.Answer
	err        error
	uri        string
	ended      []string
}

func (m *mockAssistantService) NewSession() *domain.Session {
	m.nextID++
	id := string(rune('a'+m.nextID-1)) + "0000000"
	return domain.NewSession(id, "test", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
}

func (m *mockAssistantService) LoadSources(_ context.Context, session *domain.Session, req driving.SourceRequest) error {
	if m.sourcesErr != nil {
		return m.sourcesErr
	}
	if req.PrimaryURL != "" {
		session.Primary = &domain.SourceDocument{Origin: req.PrimaryURL, Text: "primary page"}
	}
	if req.CompetitorURL != "" {
		session.Competitor = &domain.SourceDocument{
			Origin: req.CompetitorURL,
			Text:   domain.FetchErrorPrefix + "connection refused",
		}
	}
	return nil
}

func (m *mockAssistantService) LoadKnowledgeBase(_ context.Context, session *domain.Session) error {
	if m.kbErr != nil {
		return m.kbErr
	}
	if session.Primary != nil {
		session.IndexName = domain.IndexName(session.Primary.Origin)
	}
	return nil
}

func (m *mockAssistantService) Compare(_ context.Context, session *domain.Session, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	session.Comparison = m.brief
	return m.brief, nil
}

func (m *mockAssistantService) Ask(_ context.Context, session *domain.Session, question string) (domain.Answer, error) {
	if m.err != nil {
		return domain.Answer{}, m.err
	}
	session.Conversation.Append(question, m.answer.Text)
	return m.answer, nil
}

func (m *mockAssistantService) Save(_ context.Context, session *domain.Session) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if session.Saved {
		return "", domain.ErrAlreadyExists
	}
	session.Saved = true
	return m.uri, nil
}

func (m *mockAssistantService) EndSession(session *domain.Session) {
	m.ended = append(m.ended, session.ID)
}

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	text string
}

func (m *mockExtractionService) ExtractPDF(
	_ context.Context,
	origin string,
	_ io.ReaderAt,
	_ int64,
) (domain.SourceDocument, error) {
	return domain.SourceDocument{Origin: origin, Text: m.text}, nil
}

func (m *mockExtractionService) FetchURL(_ context.Context, url string) domain.SourceDocument {
	return domain.SourceDocument{Origin: url, Text: m.text}
}

func (m *mockExtractionService) FetchURLs(ctx context.Context, urls []string) []domain.SourceDocument {
	out := make([]domain.SourceDocument, len(urls))
	for i, u := range urls {
		out[i] = m.FetchURL(ctx, u)
	}
	return out
}

// mockInterviewService is a mock implementation of driving.InterviewService.
type mockInterviewService struct {
	questions []string
	records   map[string]*domain.JobRecord
	err       error
	gotCount  int
}

func (m *mockInterviewService) Generate(_ context.Context, _ string, count int) ([]string, error) {
	m.gotCount = count
	return m.questions, m.err
}

func (m *mockInterviewService) UploadDescription(_ context.Context, jobID, filename string, _ []byte) (string, error) {
	return "memory://job_descriptions/" + jobID + filename, m.err
}

func (m *mockInterviewService) SaveQuestions(
	_ context.Context,
	jobID, description string,
	questions []string,
) (*domain.JobRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.records == nil {
		m.records = make(map[string]*domain.JobRecord)
	}
	rec, ok := m.records[jobID]
	if !ok {
		rec = &domain.JobRecord{JobID: jobID}
		m.records[jobID] = rec
	}
	rec.Roles = append(rec.Roles, domain.JobRole{JobDescription: description, Questions: questions})
	return rec, nil
}

func (m *mockInterviewService) GetJob(_ context.Context, jobID string) (*domain.JobRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	rec, ok := m.records[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
