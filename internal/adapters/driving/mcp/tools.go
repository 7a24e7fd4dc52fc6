package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
)

// StartSessionInput is the input schema for the start_session tool.
type StartSessionInput struct {
	DocumentPath  string `json:"document_path,omitempty" jsonschema:"local PDF brochure to load"`
	PrimaryURL    string `json:"primary_url,omitempty" jsonschema:"URL of the program page being pitched"`
	CompetitorURL string `json:"competitor_url,omitempty" jsonschema:"URL of the competitor program page"`
}

// StartSessionOutput is the output schema for the start_session tool.
type StartSessionOutput struct {
	SessionID     string   `json:"session_id"`
	Sources       []string `json:"sources"`
	KnowledgeBase string   `json:"knowledge_base,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// SessionInput identifies a session.
type SessionInput struct {
	SessionID string `json:"session_id" jsonschema:"id returned by start_session"`
}

// CompareInput is the input schema for the compare tool.
type CompareInput struct {
	SessionID string `json:"session_id" jsonschema:"id returned by start_session"`
	FollowUp  string `json:"follow_up,omitempty" jsonschema:"optional request answered after the brief"`
}

// CompareOutput is the output schema for the compare tool.
type CompareOutput struct {
	Brief string `json:"brief"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	SessionID string `json:"session_id" jsonschema:"id returned by start_session"`
	Question  string `json:"question" jsonschema:"the question to answer from the loaded sources"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer   string        `json:"answer"`
	Fallback bool          `json:"fallback"`
	Sources  []ChunkOutput `json:"sources,omitempty"`
}

// ChunkOutput is one retrieved chunk.
type ChunkOutput struct {
	Origin  string `json:"origin"`
	Ordinal int    `json:"ordinal"`
	Text    string `json:"text"`
}

// SaveSessionOutput is the output schema for the save_session tool.
type SaveSessionOutput struct {
	URI string `json:"uri"`
}

// EndSessionOutput is the output schema for the end_session tool.
type EndSessionOutput struct {
	Ended bool `json:"ended"`
}

// ExtractURLInput is the input schema for the extract_url tool.
type ExtractURLInput struct {
	URL string `json:"url" jsonschema:"page to fetch"`
}

// ExtractURLOutput is the output schema for the extract_url tool.
type ExtractURLOutput struct {
	URL        string `json:"url"`
	Text       string `json:"text"`
	FetchError bool   `json:"fetch_error"`
}

// InterviewInput is the input schema for the interview_questions tool.
type InterviewInput struct {
	Description string `json:"description" jsonschema:"the job description text"`
	Count       int    `json:"count,omitempty" jsonschema:"number of questions (default 10)"`
	JobID       string `json:"job_id,omitempty" jsonschema:"when set the questions are saved under this job id"`
}

// InterviewOutput is the output schema for the interview_questions tool.
type InterviewOutput struct {
	Questions []string `json:"questions"`
	Saved     bool     `json:"saved"`
}

// defaultQuestionCount applies when InterviewInput.Count is zero.
const defaultQuestionCount = 10

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_session",
		Description: "Start a sales session: load a brochure, a program page and a competitor page and prepare the knowledge base",
	}, s.handleStartSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "compare",
		Description: "Write a comparison brief of the session's program against its competitor",
	}, s.handleCompare)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the session's loaded sources",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_session",
		Description: "Write the session transcript to storage and return its location",
	}, s.handleSaveSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "end_session",
		Description: "Discard a session and release its knowledge base",
	}, s.handleEndSession)

	if s.ports.Extraction != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "extract_url",
			Description: "Fetch a web page and return its visible text",
		}, s.handleExtractURL)
	}

	if s.ports.Interview != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "interview_questions",
			Description: "Generate interview questions from a job description",
		}, s.handleInterviewQuestions)
	}
}

// handleStartSession handles the start_session tool invocation.
// A knowledge base that cannot be prepared is reported as a warning so the
// session can still produce comparison briefs.
func (s *Server) handleStartSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartSessionInput,
) (*mcp.CallToolResult, StartSessionOutput, error) {
	assistant := s.ports.Assistant
	session := assistant.NewSession()

	req := driving.SourceRequest{
		DocumentPath:  input.DocumentPath,
		PrimaryURL:    input.PrimaryURL,
		CompetitorURL: input.CompetitorURL,
	}
	if err := assistant.LoadSources(ctx, session, req); err != nil {
		return nil, StartSessionOutput{}, fmt.Errorf("loading sources: %w", err)
	}

	output := StartSessionOutput{SessionID: session.ID, Sources: session.Sources()}
	for _, doc := range []*domain.SourceDocument{session.Primary, session.Competitor} {
		if doc != nil && doc.IsFetchError() {
			output.Warnings = append(output.Warnings, doc.Text)
		}
	}

	if err := assistant.LoadKnowledgeBase(ctx, session); err != nil {
		if !errors.Is(err, domain.ErrKnowledgeBaseUnavailable) {
			return nil, StartSessionOutput{}, err
		}
		output.Warnings = append(output.Warnings, err.Error())
	}
	output.KnowledgeBase = session.IndexName

	s.addSession(session)
	return nil, output, nil
}

// handleCompare handles the compare tool invocation.
func (s *Server) handleCompare(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CompareInput,
) (*mcp.CallToolResult, CompareOutput, error) {
	var output CompareOutput
	err := s.withSession(input.SessionID, func(session *domain.Session) error {
		brief, err := s.ports.Assistant.Compare(ctx, session, input.FollowUp)
		output.Brief = brief
		return err
	})
	if err != nil {
		return nil, CompareOutput{}, err
	}
	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	var answer domain.Answer
	err := s.withSession(input.SessionID, func(session *domain.Session) error {
		var err error
		answer, err = s.ports.Assistant.Ask(ctx, session, input.Question)
		return err
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:   answer.Text,
		Fallback: answer.Fallback,
		Sources:  make([]ChunkOutput, len(answer.Chunks)),
	}
	for i, c := range answer.Chunks {
		output.Sources[i] = ChunkOutput{Origin: c.Origin, Ordinal: c.Ordinal, Text: c.Text}
	}
	return nil, output, nil
}

// handleSaveSession handles the save_session tool invocation.
func (s *Server) handleSaveSession(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, SaveSessionOutput, error) {
	var uri string
	err := s.withSession(input.SessionID, func(session *domain.Session) error {
		var err error
		uri, err = s.ports.Assistant.Save(ctx, session)
		return err
	})
	if err != nil {
		return nil, SaveSessionOutput{}, err
	}
	return nil, SaveSessionOutput{URI: uri}, nil
}

// handleEndSession handles the end_session tool invocation.
func (s *Server) handleEndSession(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SessionInput,
) (*mcp.CallToolResult, EndSessionOutput, error) {
	session, ok := s.removeSession(input.SessionID)
	if !ok {
		return nil, EndSessionOutput{}, fmt.Errorf("%w: %q", ErrUnknownSession, input.SessionID)
	}
	s.ports.Assistant.EndSession(session)
	return nil, EndSessionOutput{Ended: true}, nil
}

// handleExtractURL handles the extract_url tool invocation.
func (s *Server) handleExtractURL(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractURLInput,
) (*mcp.CallToolResult, ExtractURLOutput, error) {
	if s.ports.Extraction == nil {
		return nil, ExtractURLOutput{}, fmt.Errorf("%w: extraction", ErrServiceUnavailable)
	}
	if input.URL == "" {
		return nil, ExtractURLOutput{}, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}

	doc := s.ports.Extraction.FetchURL(ctx, input.URL)
	return nil, ExtractURLOutput{
		URL:        doc.Origin,
		Text:       doc.Text,
		FetchError: doc.IsFetchError(),
	}, nil
}

// handleInterviewQuestions handles the interview_questions tool invocation.
func (s *Server) handleInterviewQuestions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input InterviewInput,
) (*mcp.CallToolResult, InterviewOutput, error) {
	if s.ports.Interview == nil {
		return nil, InterviewOutput{}, fmt.Errorf("%w: interview", ErrServiceUnavailable)
	}

	count := input.Count
	if count <= 0 {
		count = defaultQuestionCount
	}

	questions, err := s.ports.Interview.Generate(ctx, input.Description, count)
	if err != nil {
		return nil, InterviewOutput{}, err
	}

	output := InterviewOutput{Questions: questions}
	if input.JobID != "" {
		if _, err := s.ports.Interview.SaveQuestions(ctx, input.JobID, input.Description, questions); err != nil {
			return nil, InterviewOutput{}, fmt.Errorf("saving questions: %w", err)
		}
		output.Saved = true
	}
	return nil, output, nil
}
