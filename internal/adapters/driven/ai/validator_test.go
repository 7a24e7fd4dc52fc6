package ai

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

func TestConfigValidator_ImplementsInterface(t *testing.T) {
	var v driven.AIConfigValidator = NewConfigValidator()
	require.NotNil(t, v)
}

func TestConfigValidator_Unconfigured(t *testing.T) {
	v := NewConfigValidator()

	assert.NoError(t, v.ValidateEmbedding(nil))
	assert.NoError(t, v.ValidateEmbedding(&domain.EmbeddingSettings{Model: "m"}))
	assert.NoError(t, v.ValidateLLM(nil))
	assert.NoError(t, v.ValidateLLM(&domain.LLMSettings{Model: "m"}))
}

func TestConfigValidator_PingsProvider(t *testing.T) {
	v := NewConfigValidator()
	bad := ollamaServer(t, http.StatusServiceUnavailable)

	err := v.ValidateLLM(&domain.LLMSettings{Provider: domain.AIProviderOllama, BaseURL: bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")

	err = v.ValidateEmbedding(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama, BaseURL: bad})
	assert.Error(t, err)
}
