package driven

import "github.com/custodia-labs/briefly/internal/core/domain"

// AIConfigValidator checks AI provider settings before they are saved.
type AIConfigValidator interface {
	// ValidateEmbedding creates the embedding service and pings it.
	// Unconfigured settings are not an error.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM creates the LLM service and pings it.
	// Unconfigured settings are not an error.
	ValidateLLM(config *domain.LLMSettings) error
}
