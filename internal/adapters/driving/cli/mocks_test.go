package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
)

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	set         map[string]string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if key == "bad.key" {
		return domain.ErrInvalidInput
	}
	if m.set == nil {
		m.set = make(map[string]string)
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"llm.provider", "storage.backend"}
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.Embedding = domain.EmbeddingSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, apiKey string) error {
	m.settings.LLM = domain.LLMSettings{Provider: p, Model: model, APIKey: apiKey}
	return nil
}

func (m *mockSettingsService) Validate() error                 { return m.validateErr }
func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }
func (m *mockSettingsService) ValidateEmbeddingConfig() error  { return nil }
func (m *mockSettingsService) ValidateLLMConfig() error        { return nil }

// mockExtractionService is a mock implementation of driving.ExtractionService.
type mockExtractionService struct {
	pages map[string]string
}

func (m *mockExtractionService) ExtractPDF(
	_ context.Context,
	origin string,
	r io.ReaderAt,
	size int64,
) (domain.SourceDocument, error) {
	buf := make([]byte, size)
	if _, err := r.ReadAt(buf, 0); err != nil && err != io.EOF {
		return domain.SourceDocument{}, err
	}
	return domain.SourceDocument{Origin: origin, Text: string(buf), ExtractedAt: time.Now()}, nil
}

func (m *mockExtractionService) FetchURL(_ context.Context, url string) domain.SourceDocument {
	text, ok := m.pages[url]
	if !ok {
		text = domain.FetchErrorPrefix + "404 Not Found"
	}
	return domain.SourceDocument{Origin: url, Text: text, ExtractedAt: time.Now()}
}

func (m *mockExtractionService) FetchURLs(ctx context.Context, urls []string) []domain.SourceDocument {
	out := make([]domain.SourceDocument, len(urls))
	for i, u := range urls {
		out[i] = m.FetchURL(ctx, u)
	}
	return out
}

// mockHandle is a mock implementation of driving.IndexHandle.
type mockHandle struct {
	docs []domain.SourceDocument
}

func (h *mockHandle) Retrieve(_ context.Context, query string, k int) ([]domain.Chunk, error) {
	var out []domain.Chunk
	for i, d := range h.docs {
		if strings.Contains(strings.ToLower(d.Text), strings.ToLower(query)) {
			out = append(out, domain.Chunk{ID: d.Origin, Origin: d.Origin, Ordinal: i, Text: d.Text})
		}
		if len(out) == k {
			break
		}
	}
	return out, nil
}

func (h *mockHandle) RetrieveScored(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	chunks, err := h.Retrieve(ctx, query, k)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ScoredChunk, len(chunks))
	for i, c := range chunks {
		out[i] = domain.ScoredChunk{Chunk: c, Score: 1}
	}
	return out, nil
}

func (h *mockHandle) Len() int        { return len(h.docs) }
func (h *mockHandle) Dimensions() int { return 3 }
func (h *mockHandle) Model() string   { return "mock-embed" }

// mockIndexService is a mock implementation of driving.IndexService.
type mockIndexService struct {
	persisted map[string]*mockHandle
}

func (m *mockIndexService) Build(_ context.Context, docs []domain.SourceDocument) (driving.IndexHandle, error) {
	if len(docs) == 0 {
		return nil, domain.ErrInvalidInput
	}
	return &mockHandle{docs: docs}, nil
}

func (m *mockIndexService) Persist(_ context.Context, handle driving.IndexHandle, name string) error {
	if m.persisted == nil {
		m.persisted = make(map[string]*mockHandle)
	}
	m.persisted[name] = handle.(*mockHandle)
	return nil
}

func (m *mockIndexService) Load(_ context.Context, name string) (driving.IndexHandle, error) {
	h, ok := m.persisted[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return h, nil
}

func (m *mockIndexService) LoadOrBuild(ctx context.Context, name string, docs []domain.SourceDocument) (driving.IndexHandle, error) {
	if h, err := m.Load(ctx, name); err == nil {
		return h, nil
	}
	h, err := m.Build(ctx, docs)
	if err != nil {
		return nil, err
	}
	return h, m.Persist(ctx, h, name)
}

// mockAssistantService is a mock implementation of driving.AssistantService.
type mockAssistantService struct {
	requests  []driving.SourceRequest
	followUps []string
	questions []string
	saves     int
	ended     int
	kbErr     error
}

func (m *mockAssistantService) NewSession() *domain.Session {
	return domain.NewSession("c0ffee00", "test", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
}

func (m *mockAssistantService) LoadSources(_ context.Context, session *domain.Session, req driving.SourceRequest) error {
	m.requests = append(m.requests, req)
	if req.PrimaryURL != "" {
		session.Primary = &domain.SourceDocument{Origin: req.PrimaryURL, Text: "Fee: INR 2,50,000"}
	}
	if req.CompetitorURL != "" {
		session.Competitor = &domain.SourceDocument{
			Origin: req.CompetitorURL,
			Text:   domain.FetchErrorPrefix + "connection refused",
		}
	}
	return nil
}

func (m *mockAssistantService) LoadKnowledgeBase(_ context.Context, _ *domain.Session) error {
	return m.kbErr
}

func (m *mockAssistantService) Compare(_ context.Context, session *domain.Session, followUp string) (string, error) {
	m.followUps = append(m.followUps, followUp)
	session.Comparison = "BRIEF for " + session.Primary.Origin
	return session.Comparison, nil
}

func (m *mockAssistantService) Ask(_ context.Context, session *domain.Session, question string) (domain.Answer, error) {
	m.questions = append(m.questions, question)
	if strings.Contains(question, "alumni") {
		session.Conversation.Append(question, "Alumni get lifetime access.")
		return domain.Answer{Text: "Alumni get lifetime access.", Fallback: true}, nil
	}
	session.Conversation.Append(question, "The fee is INR 2,50,000.")
	return domain.Answer{Text: "The fee is INR 2,50,000."}, nil
}

func (m *mockAssistantService) Save(_ context.Context, session *domain.Session) (string, error) {
	if session.Saved {
		return "", domain.ErrAlreadyExists
	}
	m.saves++
	session.Saved = true
	return "file:///tmp/logs/2024-05-01/" + session.ID + ".txt", nil
}

func (m *mockAssistantService) EndSession(_ *domain.Session) {
	m.ended++
}

// mockInterviewService is a mock implementation of driving.InterviewService.
type mockInterviewService struct {
	descriptions []string
	uploads      map[string][]byte
	records      map[string]*domain.JobRecord
}

func (m *mockInterviewService) Generate(_ context.Context, description string, count int) ([]string, error) {
	m.descriptions = append(m.descriptions, description)
	out := make([]string, count)
	for i := range out {
		out[i] = string(rune('1'+i)) + ". Question"
	}
	return out, nil
}

func (m *mockInterviewService) UploadDescription(_ context.Context, jobID, filename string, data []byte) (string, error) {
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	key := "job_descriptions/" + jobID + "-" + filename
	m.uploads[key] = data
	return "memory://" + key, nil
}

func (m *mockInterviewService) SaveQuestions(
	_ context.Context,
	jobID, description string,
	questions []string,
) (*domain.JobRecord, error) {
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
	rec, ok := m.records[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return rec, nil
}
