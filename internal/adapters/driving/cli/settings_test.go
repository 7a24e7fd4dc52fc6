package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/briefly/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/services"
)

// useRealSettings swaps the settings mock for the real service over an
// in-memory store, with OPENAI_API_KEY set to envKey.
func useRealSettings(t *testing.T, envKey string) *memory.ConfigStore {
	t.Helper()
	setupTestServices(t)
	t.Setenv(services.EnvOpenAIAPIKey, envKey)
	t.Setenv(services.EnvAnthropicAPIKey, "")

	store := memory.NewConfigStore()
	settingsService = services.NewSettingsService(store, nil)
	return store
}

func TestSettingsCmd_EnvironmentKeyIsShownMaskedAndNeverStored(t *testing.T) {
	store := useRealSettings(t, "sk-env-0000000000wxyz")

	// Embedding: OpenAI, default model, blank key. LLM: the same.
	_, _, err := runCommand(t, "2\n\n\n2\n\n\n", "settings", "wizard")
	require.NoError(t, err)

	_, stored := store.Get("llm.api_key")
	assert.False(t, stored, "llm.api_key came from the environment")
	_, stored = store.Get("embedding.api_key")
	assert.False(t, stored, "embedding.api_key came from the environment")
	assert.Equal(t, "openai", store.GetString("llm.provider"))

	stdout, _, err := runCommand(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API Key: sk-e...wxyz")
	assert.NotContains(t, stdout, "sk-env-0000000000wxyz")
	assert.Contains(t, stdout, "Configuration is valid.")
}

func TestSettingsCmd_TypedKeyIsStored(t *testing.T) {
	store := useRealSettings(t, "")

	stdout, _, err := runCommand(t, "3\n\nsk-ant-api03-secretvalue\n", "settings", "llm")
	require.NoError(t, err)
	assert.Contains(t, stdout, "LLM provider configured: Anthropic (cloud)")
	assert.NotContains(t, stdout, "secretvalue")

	assert.Equal(t, "sk-ant-api03-secretvalue", store.GetString("llm.api_key"))
}

func TestSettingsCmd_MissingKeyFails(t *testing.T) {
	useRealSettings(t, "")

	_, _, err := runCommand(t, "2\n\n\n", "settings", "llm")
	assert.ErrorContains(t, err, "API key required for openai")
}

func TestSettingsCmd_SetRetrievalAndWebKeys(t *testing.T) {
	store := useRealSettings(t, "")

	for _, kv := range [][2]string{
		{"retrieval.chunk_size", "800"},
		{"retrieval.chunk_overlap", "0"},
		{"retrieval.top_k", "6"},
		{"web.requests_per_second", "0.5"},
		{"kv.backend", "dynamodb"},
	} {
		stdout, _, err := runCommand(t, "", "settings", "set", kv[0], kv[1])
		require.NoError(t, err, kv[0])
		assert.Contains(t, stdout, kv[0]+" = "+kv[1]+"\n")
	}

	assert.Equal(t, 800, store.GetInt("retrieval.chunk_size"))
	assert.InDelta(t, 0.5, store.GetFloat("web.requests_per_second"), 1e-9)

	stdout, _, err := runCommand(t, "", "settings", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Chunk Size: 800")
	assert.Contains(t, stdout, "Chunk Overlap: 0")
	assert.Contains(t, stdout, "Top K: 6")
	assert.Contains(t, stdout, "Requests/Second: 0.5")
	assert.Contains(t, stdout, "Table: briefly_jobs")
}

func TestSettingsCmd_SetRejectsBadValues(t *testing.T) {
	useRealSettings(t, "")

	tests := []struct {
		key, value, wantErr string
	}{
		{"retrieval.top_k", "many", "retrieval.top_k must be an integer"},
		{"web.requests_per_second", "fast", "must be a number"},
		{"storage.backend", "ftp", `unknown storage backend "ftp"`},
		{"kv.backend", "redis", `unknown kv backend "redis"`},
		{"llm.temperature", "0", `unknown setting "llm.temperature"`},
	}
	for _, tt := range tests {
		_, _, err := runCommand(t, "", "settings", "set", tt.key, tt.value)
		require.ErrorIs(t, err, domain.ErrInvalidInput, tt.key)
		assert.ErrorContains(t, err, tt.wantErr)
	}
}

func TestSettingsCmd_KeysListsEverySettableKey(t *testing.T) {
	useRealSettings(t, "")

	stdout, _, err := runCommand(t, "", "settings", "keys")
	require.NoError(t, err)
	for _, key := range []string{"llm.api_key", "storage.bucket", "kv.table", "retrieval.chunk_overlap", "web.max_chars"} {
		assert.Contains(t, stdout, key+"\n")
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey(""))
	assert.Equal(t, "****", maskAPIKey("12345678"))
	assert.Equal(t, "sk-p...mnop", maskAPIKey("sk-proj-abcdefghijklmnop"))
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 1},
		{"4", 4},
		{"0", 1},
		{"5", 1},
		{"two", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseChoice(tt.input, len(domain.AllLLMProviders()), 1), tt.input)
	}
}
