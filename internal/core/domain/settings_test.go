package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range []AIProvider{AIProviderHashing, AIProviderOllama, AIProviderOpenAI, AIProviderGroq, AIProviderAnthropic} {
		assert.True(t, p.IsValid(), p)
	}
	assert.False(t, AIProvider("cohere").IsValid())
	assert.False(t, AIProvider("").IsValid())
}

func TestAIProvider_RequiresAPIKey(t *testing.T) {
	tests := []struct {
		provider AIProvider
		expected bool
	}{
		{AIProviderHashing, false},
		{AIProviderOllama, false},
		{AIProviderOpenAI, true},
		{AIProviderGroq, true},
		{AIProviderAnthropic, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.provider.RequiresAPIKey())
			assert.Equal(t, !tt.expected, tt.provider.IsLocal())
		})
	}
}

func TestAIProvider_Description(t *testing.T) {
	assert.Equal(t, "Groq (cloud, OpenAI-compatible)", AIProviderGroq.Description())
	assert.Equal(t, "Unknown", AIProvider("other").Description())
	assert.Equal(t, "ollama", AIProviderOllama.String())
}

func TestEmbeddingSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings EmbeddingSettings
		expected bool
	}{
		{"hashing", EmbeddingSettings{Provider: AIProviderHashing}, true},
		{"ollama without key", EmbeddingSettings{Provider: AIProviderOllama}, true},
		{"openai without key", EmbeddingSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", EmbeddingSettings{Provider: AIProviderOpenAI, APIKey: "sk-test"}, true},
		{"anthropic cannot embed", EmbeddingSettings{Provider: AIProviderAnthropic, APIKey: "key"}, false},
		{"unknown", EmbeddingSettings{Provider: "other"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"groq without key", LLMSettings{Provider: AIProviderGroq}, false},
		{"groq with key", LLMSettings{Provider: AIProviderGroq, APIKey: "gsk_test"}, true},
		{"ollama", LLMSettings{Provider: AIProviderOllama}, true},
		{"hashing cannot generate", LLMSettings{Provider: AIProviderHashing}, false},
		{"empty", LLMSettings{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, "data/anime_with_synopsis.csv", s.Catalog.RawPath)
	assert.Equal(t, "data/anime_updated.csv", s.Catalog.ProcessedPath)
	assert.Equal(t, 500, s.Chunking.ChunkSize)
	assert.Equal(t, 100, s.Chunking.Overlap)
	assert.Equal(t, "chroma_dir", s.Index.PersistDir)
	assert.Equal(t, "anime", s.Index.Collection)
	assert.Equal(t, DefaultRetrievalK, s.Retrieval.K)
	assert.Equal(t, SearchTypeSimilarity, s.Retrieval.SearchType)
	assert.Equal(t, AIProviderHashing, s.Embedding.Provider)
	assert.True(t, s.Embedding.IsConfigured())
	assert.Equal(t, AIProviderGroq, s.LLM.Provider)
	assert.False(t, s.LLM.IsConfigured())
	assert.Zero(t, s.LLM.Temperature)
	assert.Equal(t, 60*time.Second, s.Timeouts.Embedding)
	assert.Equal(t, 120*time.Second, s.Timeouts.Completion)
}

func TestProviderLists(t *testing.T) {
	assert.NotContains(t, AllEmbeddingProviders(), AIProviderAnthropic)
	assert.NotContains(t, AllLLMProviders(), AIProviderHashing)

	for _, p := range AllEmbeddingProviders() {
		model, ok := DefaultEmbeddingModels()[p]
		assert.True(t, ok, p)
		_, known := EmbeddingDimensions()[model]
		assert.True(t, known, model)
	}
	for _, p := range AllLLMProviders() {
		assert.NotEmpty(t, DefaultLLMModels()[p], p)
	}
}
