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

// Ensure CompareService implements the interface.
var _ driving.CompareService = (*CompareService)(nil)

// DefaultBriefTokens bounds the length of a comparison brief.
const DefaultBriefTokens = 1500

const (
	missingSourceText = "(no content available for this source)"
	followUpHeading   = "\n--- Follow-up request ---\n"
)

// CompareService generates comparison briefs with a single LLM call.
type CompareService struct {
	llm       driven.LLMService
	prompts   driven.PromptStore
	maxTokens int
}

// NewCompareService creates a new comparison service.
func NewCompareService(llm driven.LLMService, prompts driven.PromptStore) *CompareService {
	return &CompareService{
		llm:       llm,
		prompts:   prompts,
		maxTokens: DefaultBriefTokens,
	}
}

// Compare returns the model's brief unparsed. There is no retry.
func (s *CompareService) Compare(ctx context.Context, input domain.ComparisonInput) (string, error) {
	logger.Section("Comparison")

	if s.llm == nil {
		return "", domain.ErrLLMUnavailable
	}

	tmpl, err := s.prompts.Load(driven.PromptComparison)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", driven.PromptComparison, err)
	}

	var followUp string
	if f := strings.TrimSpace(input.FollowUp); f != "" {
		followUp = followUpHeading + f
	}

	prompt := fmt.Sprintf(tmpl,
		orPlaceholder(input.DocumentText),
		nameOr(input.Primary.Name, "Our program"),
		orPlaceholder(input.Primary.Text),
		nameOr(input.Competitor.Name, "Competitor program"),
		orPlaceholder(input.Competitor.Text),
		followUp,
	)
	logger.Debug("comparison prompt: %d chars", len(prompt))

	brief, err := s.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   s.maxTokens,
		Temperature: 0,
	})
	if err != nil {
		return "", domain.NewGenerationError("compare", err)
	}
	return strings.TrimSpace(brief), nil
}

func orPlaceholder(text string) string {
	if strings.TrimSpace(text) == "" {
		return missingSourceText
	}
	return text
}

func nameOr(name, fallback string) string {
	if strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}
