package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
	"github.com/custodia-labs/briefly/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMRegion       = "llm.region"
	keyStorageBackend  = "storage.backend"
	keyStorageBucket   = "storage.bucket"
	keyStoragePrefix   = "storage.prefix"
	keyStorageDir      = "storage.dir"
	keyStorageCreds    = "storage.credentials_file"
	keyStorageRegion   = "storage.region"
	keySessionBasePath = "sessions.base_path"
	keyKVBackend       = "kv.backend"
	keyKVTable         = "kv.table"
	keyKVDir           = "kv.dir"
	keyKVRegion        = "kv.region"
	keyChunkSize       = "retrieval.chunk_size"
	keyChunkOverlap    = "retrieval.chunk_overlap"
	keyTopK            = "retrieval.top_k"
	keyWebTimeout      = "web.timeout_seconds"
	keyWebMaxChars     = "web.max_chars"
	keyWebRate         = "web.requests_per_second"
)

// Environment variables consulted when no API key is configured.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

type settingKind int

const (
	kindString settingKind = iota
	kindInt
	kindFloat
)

// settableKeys lists every key accepted by Set, in display order.
var settableKeys = []struct {
	key  string
	kind settingKind
}{
	{keyLLMProvider, kindString},
	{keyLLMModel, kindString},
	{keyLLMBaseURL, kindString},
	{keyLLMAPIKey, kindString},
	{keyLLMRegion, kindString},
	{keyEmbedProvider, kindString},
	{keyEmbedModel, kindString},
	{keyEmbedBaseURL, kindString},
	{keyEmbedAPIKey, kindString},
	{keyStorageBackend, kindString},
	{keyStorageBucket, kindString},
	{keyStoragePrefix, kindString},
	{keyStorageDir, kindString},
	{keyStorageCreds, kindString},
	{keyStorageRegion, kindString},
	{keySessionBasePath, kindString},
	{keyKVBackend, kindString},
	{keyKVTable, kindString},
	{keyKVDir, kindString},
	{keyKVRegion, kindString},
	{keyChunkSize, kindInt},
	{keyChunkOverlap, kindInt},
	{keyTopK, kindInt},
	{keyWebTimeout, kindInt},
	{keyWebMaxChars, kindInt},
	{keyWebRate, kindFloat},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings with defaults filled in.
// API keys fall back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL),
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:    s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
			Region:   s.configStore.GetString(keyLLMRegion),
		},
		Storage: domain.StorageSettings{
			Backend:         domain.StorageBackend(s.getString(keyStorageBackend, string(defaults.Storage.Backend))),
			Bucket:          s.configStore.GetString(keyStorageBucket),
			Dir:             s.configStore.GetString(keyStorageDir),
			CredentialsFile: s.configStore.GetString(keyStorageCreds),
			Region:          s.configStore.GetString(keyStorageRegion),
			IndexPrefix:     s.getString(keyStoragePrefix, defaults.Storage.IndexPrefix),
			SessionBasePath: s.getString(keySessionBasePath, defaults.Storage.SessionBasePath),
		},
		Items: domain.ItemStoreSettings{
			Backend: domain.ItemBackend(s.getString(keyKVBackend, string(defaults.Items.Backend))),
			Table:   s.getString(keyKVTable, defaults.Items.Table),
			Dir:     s.configStore.GetString(keyKVDir),
			Region:  s.configStore.GetString(keyKVRegion),
		},
		Retrieval: domain.RetrievalSettings{
			ChunkSize:    s.getInt(keyChunkSize, defaults.Retrieval.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, defaults.Retrieval.ChunkOverlap),
			TopK:         s.getInt(keyTopK, defaults.Retrieval.TopK),
		},
		Web: domain.WebSettings{
			TimeoutSeconds:    s.getInt(keyWebTimeout, defaults.Web.TimeoutSeconds),
			MaxChars:          s.getInt(keyWebMaxChars, defaults.Web.MaxChars),
			RequestsPerSecond: s.getFloat(keyWebRate, defaults.Web.RequestsPerSecond),
		},
	}

	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envAPIKey(settings.LLM.Provider)
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envAPIKey(settings.Embedding.Provider)
	}

	return settings, nil
}

func (s *SettingsService) envAPIKey(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderOpenAI:
		return s.getenv(EnvOpenAIAPIKey)
	case domain.AIProviderAnthropic:
		return s.getenv(EnvAnthropicAPIKey)
	default:
		return ""
	}
}

// Save persists application settings. API keys are only written when set
// explicitly so that environment keys never end up on disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRegion, settings.LLM.Region},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageBucket, settings.Storage.Bucket},
		{keyStoragePrefix, settings.Storage.IndexPrefix},
		{keyStorageDir, settings.Storage.Dir},
		{keyStorageCreds, settings.Storage.CredentialsFile},
		{keyStorageRegion, settings.Storage.Region},
		{keySessionBasePath, settings.Storage.SessionBasePath},
		{keyKVBackend, string(settings.Items.Backend)},
		{keyKVTable, settings.Items.Table},
		{keyKVDir, settings.Items.Dir},
		{keyKVRegion, settings.Items.Region},
		{keyChunkSize, settings.Retrieval.ChunkSize},
		{keyChunkOverlap, settings.Retrieval.ChunkOverlap},
		{keyTopK, settings.Retrieval.TopK},
		{keyWebTimeout, settings.Web.TimeoutSeconds},
		{keyWebMaxChars, settings.Web.MaxChars},
		{keyWebRate, settings.Web.RequestsPerSecond},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != s.envAPIKey(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != s.envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return s.configStore.Save()
}

// Keys lists every key accepted by Set.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settableKeys))
	for i, k := range settableKeys {
		keys[i] = k.key
	}
	return keys
}

// Set parses value for key and saves the configuration.
func (s *SettingsService) Set(key, value string) error {
	for _, k := range settableKeys {
		if k.key != key {
			continue
		}

		var parsed any = value
		switch k.kind {
		case kindInt:
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
			}
			parsed = n
		case kindFloat:
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
			}
			parsed = f
		}

		if err := validateValue(key, value); err != nil {
			return err
		}
		if err := s.configStore.Set(key, parsed); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
		return s.configStore.Save()
	}
	return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
}

func validateValue(key, value string) error {
	switch key {
	case keyLLMProvider, keyEmbedProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
	case keyStorageBackend:
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, value)
		}
	case keyKVBackend:
		if !domain.ItemBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown kv backend %q", domain.ErrInvalidInput, value)
		}
	}
	return nil
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	if apiKey == "" {
		apiKey = s.envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a local provider's base URL and clears it for cloud ones.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Validate checks that settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider is not configured")
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider is not configured")
	}
	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("invalid storage backend: %s", settings.Storage.Backend)
	}
	if (settings.Storage.Backend == domain.StorageBackendGCS || settings.Storage.Backend == domain.StorageBackendS3) &&
		settings.Storage.Bucket == "" {
		return fmt.Errorf("storage backend %s requires storage.bucket", settings.Storage.Backend)
	}
	if !settings.Items.Backend.IsValid() {
		return fmt.Errorf("invalid kv backend: %s", settings.Items.Backend)
	}
	if settings.Retrieval.ChunkSize <= 0 || settings.Retrieval.ChunkOverlap < 0 ||
		settings.Retrieval.ChunkOverlap >= settings.Retrieval.ChunkSize {
		return fmt.Errorf("retrieval.chunk_overlap must be smaller than retrieval.chunk_size")
	}
	if settings.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive")
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
