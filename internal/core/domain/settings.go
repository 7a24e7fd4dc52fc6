package domain

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderBedrock is Claude served through AWS Bedrock.
	AIProviderBedrock AIProvider = "bedrock"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderBedrock:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
// Bedrock authenticates through the AWS credential chain instead.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderBedrock:
		return "AWS Bedrock (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Region is the AWS region (for Bedrock).
	Region string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageBackend identifies a blob storage implementation.
type StorageBackend string

// Available blob storage backends.
const (
	StorageBackendLocal  StorageBackend = "local"
	StorageBackendGCS    StorageBackend = "gcs"
	StorageBackendS3     StorageBackend = "s3"
	StorageBackendMemory StorageBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageBackendLocal, StorageBackendGCS, StorageBackendS3, StorageBackendMemory:
		return true
	default:
		return false
	}
}

// StorageSettings configures where indexes, transcripts and uploads live.
type StorageSettings struct {
	// Backend selects the blob store.
	Backend StorageBackend

	// Bucket is the GCS or S3 bucket name.
	Bucket string

	// Dir is the root directory for the local backend.
	Dir string

	// CredentialsFile is a service account JSON file (GCS).
	CredentialsFile string

	// Region is the AWS region (S3).
	Region string

	// IndexPrefix namespaces vector index artifacts.
	IndexPrefix string

	// SessionBasePath namespaces session transcripts.
	SessionBasePath string
}

// ItemBackend identifies a key-value item store implementation.
type ItemBackend string

// Available item store backends.
const (
	ItemBackendSQLite   ItemBackend = "sqlite"
	ItemBackendDynamoDB ItemBackend = "dynamodb"
	ItemBackendMemory   ItemBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b ItemBackend) IsValid() bool {
	switch b {
	case ItemBackendSQLite, ItemBackendDynamoDB, ItemBackendMemory:
		return true
	default:
		return false
	}
}

// ItemStoreSettings configures job record persistence.
type ItemStoreSettings struct {
	// Backend selects the item store.
	Backend ItemBackend

	// Table is the DynamoDB table name.
	Table string

	// Dir is the SQLite data directory.
	Dir string

	// Region is the AWS region (DynamoDB).
	Region string
}

// RetrievalSettings configures chunking and retrieval.
type RetrievalSettings struct {
	// ChunkSize is the maximum characters per chunk.
	ChunkSize int

	// ChunkOverlap is the characters shared by consecutive chunks.
	ChunkOverlap int

	// TopK is the number of chunks retrieved per question.
	TopK int
}

// WebSettings configures URL fetching.
type WebSettings struct {
	// TimeoutSeconds bounds each fetch.
	TimeoutSeconds int

	// MaxChars truncates extracted page text; 0 means unlimited.
	MaxChars int

	// RequestsPerSecond paces outbound fetches.
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Storage   StorageSettings
	Items     ItemStoreSettings
	Retrieval RetrievalSettings
	Web       WebSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		LLM:       LLMSettings{},
		Storage: StorageSettings{
			Backend:         StorageBackendLocal,
			IndexPrefix:     "vectorstores",
			SessionBasePath: "logs",
		},
		Items: ItemStoreSettings{
			Backend: ItemBackendSQLite,
			Table:   "briefly_jobs",
		},
		Retrieval: RetrievalSettings{
			ChunkSize:    1000,
			ChunkOverlap: 200,
			TopK:         4,
		},
		Web: WebSettings{
			TimeoutSeconds:    15,
			MaxChars:          0,
			RequestsPerSecond: 2,
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderBedrock,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderBedrock:   "anthropic.claude-3-sonnet-20240229-v1:0",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
