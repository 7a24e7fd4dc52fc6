// Package ai builds the embedding and LLM adapters named in the settings.
package ai

import (
	"context"
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/briefly/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/briefly/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/briefly/internal/adapters/driven/llm/anthropic"
	bedrockllm "github.com/custodia-labs/briefly/internal/adapters/driven/llm/bedrock"
	ollamallm "github.com/custodia-labs/briefly/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/briefly/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

const fixHint = "Run 'briefly settings set' to fix"

// InitResult holds whichever services came up. A nil service was either
// unconfigured or failed its ping; the reason is in Warnings.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Warnings         []string

	// FellBack is set when there is no embedding service, so knowledge
	// bases cannot be indexed and answers use the page text directly.
	FellBack bool
}

func (r *InitResult) Close() {
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise creates and pings both services. Failures become warnings so
// commands that need neither service keep working.
func Initialise(settings *domain.AppSettings) *InitResult {
	result := &InitResult{}
	if settings == nil {
		result.FellBack = true
		return result
	}

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.EmbeddingService = embedder
	result.FellBack = embedder == nil

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	}
	result.LLMService = llm

	return result
}

// pingable is the lifecycle shared by both service ports.
type pingable interface {
	Ping(ctx context.Context) error
	Close() error
}

// ping checks svc within pingTimeout and closes it when unreachable.
func ping(svc pingable) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := svc.Ping(ctx); err != nil {
		svc.Close()
		return err
	}
	return nil
}

// CreateAndValidateEmbeddingService returns nil, nil when embeddings are not
// configured. Errors wrap domain.ErrEmbeddingUnavailable.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService returns nil, nil when no LLM is configured.
// Errors wrap domain.ErrLLMUnavailable.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// ValidateEmbeddingConfig is used by 'settings set' to reject credentials
// that do not work before they are saved.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	if err := ping(svc); err != nil {
		return err
	}
	return svc.Close()
}

// ValidateLLMConfig is the LLM counterpart of ValidateEmbeddingConfig.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	if err := ping(svc); err != nil {
		return err
	}
	return svc.Close()
}

// CreateEmbeddingService returns nil, nil for unconfigured settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil
	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: domain.EmbeddingDimensions()[settings.Model],
		})
	case domain.AIProviderAnthropic, domain.AIProviderBedrock:
		return nil, fmt.Errorf("%s does not support embeddings, use ollama or openai", settings.Provider)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService returns nil, nil for unconfigured settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	case domain.AIProviderBedrock:
		// Credentials come from the AWS default chain, not the settings file.
		return bedrockllm.NewLLMService(context.Background(), bedrockllm.Config{
			Region: settings.Region,
			Model:  settings.Model,
		})
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// createOllamaEmbedding falls back to nomic-embed-text's size for models the
// dimension table does not know.
func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}
