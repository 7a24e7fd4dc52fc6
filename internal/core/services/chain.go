package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
	"github.com/custodia-labs/briefly/internal/logger"
)

// Ensure ChainService implements the interface.
var _ driving.AnswerService = (*ChainService)(nil)

// Default chain configuration values.
const (
	DefaultTopK          = 4
	DefaultAnswerTokens  = 700
	chunkSeparator       = "\n---\n"
	answerTemperature    = 0
	maxLoggedPromptChars = 200
)

// ChainConfig holds configuration for the answer chain.
type ChainConfig struct {
	// TopK is the number of chunks retrieved when a request does not set K (default: 4).
	TopK int

	// MaxTokens bounds each answer (default: 700).
	MaxTokens int
}

// ChainService answers questions in two tiers: first from retrieved chunks
// only, then, if the model reports the chunks have no answer, once more
// over the full corpus.
type ChainService struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	topK      int
	maxTokens int
}

// NewChainService creates a new answer chain.
func NewChainService(llm driven.LLMService, prompts driven.PromptStore, cfg ChainConfig) *ChainService {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultAnswerTokens
	}
	return &ChainService{
		llm:       llm,
		prompts:   prompts,
		topK:      cfg.TopK,
		maxTokens: cfg.MaxTokens,
	}
}

// Answer runs the chain. Memory is appended to only when an answer is returned.
func (s *ChainService) Answer(ctx context.Context, req driving.AnswerRequest) (domain.Answer, error) {
	logger.Section("Answer")

	question := strings.TrimSpace(req.Question)
	if question == "" {
		return domain.Answer{}, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	if req.Retriever == nil {
		return domain.Answer{}, domain.ErrKnowledgeBaseUnavailable
	}
	if s.llm == nil {
		return domain.Answer{}, domain.ErrLLMUnavailable
	}

	k := req.K
	if k <= 0 {
		k = s.topK
	}

	chunks, err := req.Retriever.Retrieve(ctx, question, k)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("retrieve: %w", err)
	}
	logger.Debug("retrieved %d chunks for %q", len(chunks), truncateForLog(question))

	restricted, err := s.render(driven.PromptRAGSystem, joinChunks(chunks))
	if err != nil {
		return domain.Answer{}, err
	}

	text, err := s.chat(ctx, restricted, req.Memory, question)
	if err != nil {
		return domain.Answer{}, err
	}
	answer := domain.Answer{Text: text, Chunks: chunks}

	if isNoAnswer(text) {
		logger.Info("context has no answer, falling back to full text")

		corpus := req.Corpus
		if strings.TrimSpace(corpus) == "" {
			corpus = joinChunks(chunks)
		}
		unrestricted, err := s.render(driven.PromptRAGFallback, corpus)
		if err != nil {
			return domain.Answer{}, err
		}

		text, err = s.chat(ctx, unrestricted, req.Memory, question)
		if err != nil {
			return domain.Answer{}, err
		}
		answer.Text = text
		answer.Fallback = true
	}

	if req.Memory != nil {
		req.Memory.Append(question, answer.Text)
	}
	return answer, nil
}

// chat sends system, then prior turns, then the question.
func (s *ChainService) chat(
	ctx context.Context, system string, memory *domain.Conversation, question string,
) (string, error) {
	messages := []driven.ChatMessage{{Role: driven.RoleSystem, Content: system}}
	if memory != nil {
		for _, turn := range memory.Turns() {
			if turn.System {
				messages = append(messages, driven.ChatMessage{Role: driven.RoleSystem, Content: turn.Answer})
				continue
			}
			messages = append(messages,
				driven.ChatMessage{Role: driven.RoleUser, Content: turn.Question},
				driven.ChatMessage{Role: driven.RoleAssistant, Content: turn.Answer},
			)
		}
	}
	messages = append(messages, driven.ChatMessage{Role: driven.RoleUser, Content: question})

	reply, err := s.llm.Chat(ctx, messages, driven.ChatOptions{
		MaxTokens:   s.maxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return "", domain.NewGenerationError("chat", err)
	}
	return strings.TrimSpace(reply), nil
}

func (s *ChainService) render(name, content string) (string, error) {
	tmpl, err := s.prompts.Load(name)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", name, err)
	}
	return fmt.Sprintf(tmpl, content), nil
}

func joinChunks(chunks []domain.Chunk) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return strings.Join(texts, chunkSeparator)
}

// isNoAnswer reports whether the model said the context lacks the answer.
func isNoAnswer(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(domain.NoAnswerPhrase))
}

func truncateForLog(s string) string {
	if len(s) <= maxLoggedPromptChars {
		return s
	}
	return s[:maxLoggedPromptChars] + "..."
}
