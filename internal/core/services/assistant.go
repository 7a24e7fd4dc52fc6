package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
)

// Ensure AssistantService implements the interface.
var _ driving.AssistantService = (*AssistantService)(nil)

// AssistantDeps are the services an AssistantService orchestrates.
type AssistantDeps struct {
	Extraction driving.ExtractionService
	Index      driving.IndexService
	Answers    driving.AnswerService
	Compare    driving.CompareService
	Sessions   driving.SessionLogService
	Prompts    driven.PromptStore
}

// AssistantService runs a sales session: load sources, build or load the
// knowledge base, compare programs, answer questions and save the transcript.
type AssistantService struct {
	deps   AssistantDeps
	device string
	topK   int
	now    func() time.Time

	mu         sync.Mutex
	retrievers map[string]driving.Retriever
}

// NewAssistantService creates a new assistant. topK <= 0 uses the chain default.
func NewAssistantService(deps AssistantDeps, topK int) *AssistantService {
	return &AssistantService{
		deps:       deps,
		device:     runtime.GOOS,
		topK:       topK,
		now:        time.Now,
		retrievers: make(map[string]driving.Retriever),
	}
}

// NewSession creates an empty session.
func (s *AssistantService) NewSession() *domain.Session {
	session := domain.NewSession(NewSessionID(), s.device, s.now())
	logger.Debug("session %s started", session.ID)
	return session
}

// LoadSources extracts the requested sources into session.
func (s *AssistantService) LoadSources(ctx context.Context, session *domain.Session, req driving.SourceRequest) error {
	logger.Section("Load Sources")

	if p := strings.TrimSpace(req.DocumentPath); p != "" && !loaded(session.Document, p) {
		doc, err := s.extractFile(ctx, p)
		if err != nil {
			return err
		}
		session.Document = &doc
		s.resetKnowledgeBase(session)
	}

	if u := strings.TrimSpace(req.PrimaryURL); u != "" && !loaded(session.Primary, u) {
		doc := s.deps.Extraction.FetchURL(ctx, u)
		session.Primary = &doc
		s.resetKnowledgeBase(session)
	}

	if u := strings.TrimSpace(req.CompetitorURL); u != "" && !loaded(session.Competitor, u) {
		doc := s.deps.Extraction.FetchURL(ctx, u)
		session.Competitor = &doc
	}

	return nil
}

func (s *AssistantService) extractFile(ctx context.Context, path string) (domain.SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("%w: open %s: %w", domain.ErrExtraction, path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return domain.SourceDocument{}, fmt.Errorf("%w: stat %s: %w", domain.ErrExtraction, path, err)
	}
	return s.deps.Extraction.ExtractPDF(ctx, path, f, info.Size())
}

func loaded(doc *domain.SourceDocument, origin string) bool {
	return doc != nil && doc.Origin == origin
}

// LoadKnowledgeBase prepares the retriever for session. The primary page
// index is loaded from storage or built and persisted; an uploaded document
// is indexed in memory for this session only.
func (s *AssistantService) LoadKnowledgeBase(ctx context.Context, session *domain.Session) error {
	logger.Section("Knowledge Base")

	var (
		retrievers []driving.ScoredRetriever
		errs       []error
	)

	if session.Primary != nil {
		name := domain.IndexName(session.Primary.Origin)
		handle, err := s.deps.Index.LoadOrBuild(ctx, name, []domain.SourceDocument{*session.Primary})
		if err != nil {
			logger.Warn("knowledge base %s: %v", name, err)
			errs = append(errs, err)
		} else {
			retrievers = append(retrievers, handle)
			session.IndexName = name
		}
	}

	if session.Document != nil {
		handle, err := s.deps.Index.Build(ctx, []domain.SourceDocument{*session.Document})
		if err != nil {
			logger.Warn("document index: %v", err)
			errs = append(errs, err)
		} else {
			retrievers = append(retrievers, handle)
		}
	}

	if len(retrievers) == 0 {
		if len(errs) == 0 {
			return fmt.Errorf("%w: no program page or document loaded", domain.ErrKnowledgeBaseUnavailable)
		}
		return fmt.Errorf("%w: %w", domain.ErrKnowledgeBaseUnavailable, errors.Join(errs...))
	}

	var retriever driving.Retriever = retrievers[0]
	if len(retrievers) > 1 {
		retriever = NewCompositeRetriever(retrievers...)
	}

	s.mu.Lock()
	s.retrievers[session.ID] = retriever
	s.mu.Unlock()
	return nil
}

// Compare generates the comparison brief for the loaded sources.
func (s *AssistantService) Compare(ctx context.Context, session *domain.Session, followUp string) (string, error) {
	input := domain.ComparisonInput{FollowUp: followUp}
	if session.Document != nil {
		input.DocumentText = session.Document.Text
	}
	if session.Primary != nil {
		input.Primary = domain.NamedText{Name: session.Primary.Origin, Text: session.Primary.Text}
	}
	if session.Competitor != nil {
		input.Competitor = domain.NamedText{Name: session.Competitor.Origin, Text: session.Competitor.Text}
	}

	brief, err := s.deps.Compare.Compare(ctx, input)
	if err != nil {
		return "", err
	}
	session.Comparison = brief
	session.Conversation.ResetSystemContext()
	return brief, nil
}

// Ask answers question from the session's knowledge base.
func (s *AssistantService) Ask(ctx context.Context, session *domain.Session, question string) (domain.Answer, error) {
	s.mu.Lock()
	retriever, ok := s.retrievers[session.ID]
	s.mu.Unlock()
	if !ok {
		return domain.Answer{}, fmt.Errorf("%w: load a knowledge base first", domain.ErrKnowledgeBaseUnavailable)
	}

	if !session.Conversation.SystemInjected() && s.deps.Prompts != nil {
		if text, err := s.sessionContext(session); err != nil {
			logger.Warn("session context prompt: %v", err)
		} else if strings.TrimSpace(text) != "" {
			session.Conversation.InjectSystemContext(text)
		}
	}

	return s.deps.Answers.Answer(ctx, driving.AnswerRequest{
		Retriever: retriever,
		Question:  question,
		Memory:    session.Conversation,
		Corpus:    corpus(session),
		K:         s.topK,
	})
}

// sessionContext renders the chat background from the session's sources and
// latest comparison brief. A template without verbs is used as is.
func (s *AssistantService) sessionContext(session *domain.Session) (string, error) {
	tmpl, err := s.deps.Prompts.Load(driven.PromptSessionContext)
	if err != nil {
		return "", err
	}
	if !strings.Contains(tmpl, "%") {
		return tmpl, nil
	}

	comparison := strings.TrimSpace(session.Comparison)
	if comparison == "" {
		comparison = "No comparison generated yet."
	}
	return fmt.Sprintf(tmpl,
		sourceText(session.Primary, "No data extracted from the program page."),
		sourceText(session.Competitor, "No data extracted from the competitor page."),
		sourceText(session.Document, "No content extracted from the uploaded document."),
		comparison,
	), nil
}

func sourceText(doc *domain.SourceDocument, missing string) string {
	if doc == nil || doc.IsEmpty() {
		return missing
	}
	return doc.Text
}

// corpus joins the usable text of the session's own program sources.
func corpus(session *domain.Session) string {
	var parts []string
	for _, doc := range []*domain.SourceDocument{session.Document, session.Primary} {
		if doc != nil && !doc.IsEmpty() && !IsFetchError(*doc) {
			parts = append(parts, doc.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Save writes the transcript once.
func (s *AssistantService) Save(ctx context.Context, session *domain.Session) (string, error) {
	if session.Saved {
		return "", fmt.Errorf("session %s: %w", session.ID, domain.ErrAlreadyExists)
	}

	uri, err := s.deps.Sessions.LogSession(ctx, session.Metadata(), session.Comparison, session.Conversation.Turns())
	if err != nil {
		return "", err
	}
	session.Saved = true
	return uri, nil
}

// EndSession drops the session's retriever.
func (s *AssistantService) EndSession(session *domain.Session) {
	s.resetKnowledgeBase(session)
	logger.Debug("session %s ended", session.ID)
}

func (s *AssistantService) resetKnowledgeBase(session *domain.Session) {
	s.mu.Lock()
	delete(s.retrievers, session.ID)
	s.mu.Unlock()
	session.IndexName = ""
}
