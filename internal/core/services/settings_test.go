package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/briefly/internal/core/domain"
)

func newSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store, nil)
	svc.getenv = func(k string) string { return env[k] }
	return svc, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	svc, _ := newSettingsService(nil)

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	svc, store := newSettingsService(nil)
	_ = store.Set("llm.provider", "bedrock")
	_ = store.Set("llm.region", "ap-south-1")
	_ = store.Set("storage.backend", "gcs")
	_ = store.Set("storage.bucket", "sales-assets")
	_ = store.Set("retrieval.top_k", int64(6))
	_ = store.Set("web.max_chars", int64(3000))
	_ = store.Set("web.requests_per_second", 0.5)

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderBedrock, settings.LLM.Provider)
	assert.Equal(t, "ap-south-1", settings.LLM.Region)
	assert.Equal(t, domain.StorageBackendGCS, settings.Storage.Backend)
	assert.Equal(t, "sales-assets", settings.Storage.Bucket)
	assert.Equal(t, 6, settings.Retrieval.TopK)
	assert.Equal(t, 1000, settings.Retrieval.ChunkSize)
	assert.Equal(t, 3000, settings.Web.MaxChars)
	assert.Equal(t, 0.5, settings.Web.RequestsPerSecond)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	svc, store := newSettingsService(nil)
	_ = store.Set("llm.provider", "cohere")

	settings, err := svc.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProvider(""), settings.LLM.Provider)
}

func TestSettingsService_Get_EnvAPIKeyFallback(t *testing.T) {
	svc, store := newSettingsService(map[string]string{
		EnvOpenAIAPIKey:    "sk-env",
		EnvAnthropicAPIKey: "ant-env",
	})
	_ = store.Set("llm.provider", "anthropic")
	_ = store.Set("embedding.provider", "openai")

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "ant-env", settings.LLM.APIKey)
	assert.Equal(t, "sk-env", settings.Embedding.APIKey)

	_ = store.Set("llm.api_key", "ant-file")
	settings, err = svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "ant-file", settings.LLM.APIKey)
}

func TestSettingsService_Save_DoesNotPersistEnvKeys(t *testing.T) {
	svc, store := newSettingsService(map[string]string{EnvOpenAIAPIKey: "sk-env"})
	_ = store.Set("llm.provider", "openai")

	settings, err := svc.Get()
	require.NoError(t, err)
	require.NoError(t, svc.Save(settings))

	_, ok := store.Get("llm.api_key")
	assert.False(t, ok)
}

func TestSettingsService_Set(t *testing.T) {
	svc, store := newSettingsService(nil)

	require.NoError(t, svc.Set("retrieval.top_k", "8"))
	require.NoError(t, svc.Set("web.requests_per_second", "1.5"))
	require.NoError(t, svc.Set("storage.backend", "s3"))
	require.NoError(t, svc.Set("sessions.base_path", "audit"))

	assert.Equal(t, 8, store.GetInt("retrieval.top_k"))
	assert.Equal(t, 1.5, store.GetFloat("web.requests_per_second"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.StorageBackendS3, settings.Storage.Backend)
	assert.Equal(t, "audit", settings.Storage.SessionBasePath)
}

func TestSettingsService_Set_Invalid(t *testing.T) {
	svc, _ := newSettingsService(nil)

	tests := []struct{ key, value string }{
		{"retrieval.top_k", "many"},
		{"web.requests_per_second", "fast"},
		{"storage.backend", "azure"},
		{"kv.backend", "redis"},
		{"llm.provider", "cohere"},
		{"search.mode", "hybrid"},
	}
	for _, tt := range tests {
		err := svc.Set(tt.key, tt.value)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, tt.key)
	}
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newSettingsService(nil)
	keys := svc.Keys()

	assert.Contains(t, keys, "llm.provider")
	assert.Contains(t, keys, "sessions.base_path")
	assert.Contains(t, keys, "web.requests_per_second")
	assert.Equal(t, "llm.provider", keys[0])
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	tests := []struct {
		name      string
		provider  domain.AIProvider
		model     string
		apiKey    string
		env       map[string]string
		wantModel string
		wantURL   string
		wantErr   bool
	}{
		{"ollama default model", domain.AIProviderOllama, "", "", nil, "llama3.2", "http://localhost:11434", false},
		{"openai explicit key", domain.AIProviderOpenAI, "gpt-4o", "sk", nil, "gpt-4o", "", false},
		{"anthropic env key", domain.AIProviderAnthropic, "", "", map[string]string{EnvAnthropicAPIKey: "k"}, "claude-3-5-sonnet-latest", "", false},
		{"bedrock needs no key", domain.AIProviderBedrock, "", "", nil, "anthropic.claude-3-sonnet-20240229-v1:0", "", false},
		{"openai missing key", domain.AIProviderOpenAI, "", "", nil, "", "", true},
		{"invalid provider", domain.AIProvider("x"), "", "", nil, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newSettingsService(tt.env)

			err := svc.SetLLMProvider(tt.provider, tt.model, tt.apiKey)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			settings, err := svc.Get()
			require.NoError(t, err)
			assert.Equal(t, tt.provider, settings.LLM.Provider)
			assert.Equal(t, tt.wantModel, settings.LLM.Model)
			assert.Equal(t, tt.wantURL, settings.LLM.BaseURL)
		})
	}
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	svc, _ := newSettingsService(nil)

	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)

	assert.Error(t, svc.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key"))
	assert.Error(t, svc.SetEmbeddingProvider(domain.AIProviderOpenAI, "", ""))
}

func TestSettingsService_Validate(t *testing.T) {
	svc, store := newSettingsService(nil)
	assert.Error(t, svc.Validate(), "nothing configured")

	require.NoError(t, svc.SetLLMProvider(domain.AIProviderOllama, "", ""))
	require.NoError(t, svc.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	assert.NoError(t, svc.Validate())

	_ = store.Set("storage.backend", "gcs")
	assert.ErrorContains(t, svc.Validate(), "storage.bucket")
	_ = store.Set("storage.bucket", "b")
	assert.NoError(t, svc.Validate())

	_ = store.Set("retrieval.chunk_overlap", 1000)
	assert.ErrorContains(t, svc.Validate(), "chunk_overlap")
}

type mockValidator struct {
	embedErr error
	llmErr   error
	llmSeen  *domain.LLMSettings
}

func (m *mockValidator) ValidateEmbedding(_ *domain.EmbeddingSettings) error { return m.embedErr }

func (m *mockValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.llmSeen = cfg
	return m.llmErr
}

func TestSettingsService_ValidateConfig(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("llm.provider", "ollama")
	validator := &mockValidator{embedErr: errors.New("connection refused")}
	svc := NewSettingsService(store, validator)

	assert.ErrorContains(t, svc.ValidateEmbeddingConfig(), "connection refused")
	require.NoError(t, svc.ValidateLLMConfig())
	assert.Equal(t, domain.AIProviderOllama, validator.llmSeen.Provider)

	assert.NoError(t, NewSettingsService(store, nil).ValidateLLMConfig())
}
