package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderHashing is the offline feature-hashing embedder.
	AIProviderHashing AIProvider = "hashing"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGroq is Groq's OpenAI-compatible cloud API.
	AIProviderGroq AIProvider = "groq"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// GroqBaseURL is the OpenAI-compatible endpoint used for AIProviderGroq.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderHashing, AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGroq || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderHashing:
		return "Hashing (offline, deterministic)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGroq:
		return "Groq (cloud, OpenAI-compatible)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider `validate:"required"`

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int `validate:"gte=0"`

	// RequestsPerSecond throttles calls to remote embedders. Zero disables throttling.
	RequestsPerSecond float64 `validate:"gte=0"`

	// BatchSize is the number of chunks embedded per request.
	BatchSize int `validate:"gt=0"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds completion service configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKey is the API key (for OpenAI/Groq/Anthropic).
	APIKey string

	// Temperature controls randomness; recommendations use 0.
	Temperature float64 `validate:"gte=0,lte=2"`

	// MaxRetries is the number of retries after a timed-out completion.
	MaxRetries int `validate:"gte=0,lte=10"`
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// CatalogSettings locates the raw and processed catalog files.
type CatalogSettings struct {
	RawPath       string `validate:"required"`
	ProcessedPath string `validate:"required"`
}

// ChunkingSettings configures the chunker.
type ChunkingSettings struct {
	ChunkSize int `validate:"gt=0"`
	Overlap   int `validate:"gte=0,ltfield=ChunkSize"`
}

// IndexSettings locates the persisted similarity index.
type IndexSettings struct {
	PersistDir string `validate:"required"`
	Collection string `validate:"required"`
}

// RetrievalSettings configures top-k retrieval.
type RetrievalSettings struct {
	K          int        `validate:"gt=0"`
	SearchType SearchType `validate:"required"`
}

// TimeoutSettings bounds calls to external collaborators.
type TimeoutSettings struct {
	Embedding  time.Duration `validate:"gt=0"`
	Completion time.Duration `validate:"gt=0"`
}

// AppSettings holds all application settings.
// It is passed explicitly to constructors; nothing in the core reads the environment.
type AppSettings struct {
	Catalog   CatalogSettings
	Chunking  ChunkingSettings
	Index     IndexSettings
	Retrieval RetrievalSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Timeouts  TimeoutSettings
}

// Defaults used by DefaultAppSettings.
const (
	DefaultChunkSize          = 500
	DefaultChunkOverlap       = 100
	DefaultEmbeddingBatchSize = 32
	DefaultCollection         = "anime"
	DefaultPersistDir         = "chroma_dir"
	DefaultRawCatalogPath     = "data/anime_with_synopsis.csv"
	DefaultProcessedPath      = "data/anime_updated.csv"
	DefaultEmbeddingTimeout   = 60 * time.Second
	DefaultCompletionTimeout  = 120 * time.Second
)

// DefaultAppSettings returns settings with sensible defaults.
// Embeddings default to the offline hashing provider so an index can be built
// without credentials. The LLM is left unconfigured until an API key is set.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Catalog: CatalogSettings{
			RawPath:       DefaultRawCatalogPath,
			ProcessedPath: DefaultProcessedPath,
		},
		Chunking: ChunkingSettings{
			ChunkSize: DefaultChunkSize,
			Overlap:   DefaultChunkOverlap,
		},
		Index: IndexSettings{
			PersistDir: DefaultPersistDir,
			Collection: DefaultCollection,
		},
		Retrieval: RetrievalSettings{
			K:          DefaultRetrievalK,
			SearchType: SearchTypeSimilarity,
		},
		Embedding: EmbeddingSettings{
			Provider:  AIProviderHashing,
			BatchSize: DefaultEmbeddingBatchSize,
		},
		LLM: LLMSettings{
			Provider: AIProviderGroq,
			Model:    DefaultLLMModels()[AIProviderGroq],
		},
		Timeouts: TimeoutSettings{
			Embedding:  DefaultEmbeddingTimeout,
			Completion: DefaultCompletionTimeout,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderHashing,
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGroq,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderHashing: "hashing-4096",
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGroq:      "llama-3.1-8b-instant",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Offline
		"hashing-4096": 4096,
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
