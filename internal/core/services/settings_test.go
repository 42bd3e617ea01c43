package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/animerec/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

func envMap(m map[string]string) LookupEnvFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAppSettings(), *settings)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("index.persist_dir", "/var/lib/animerec"))
	require.NoError(t, store.Set("chunking.chunk_size", int64(800)))
	require.NoError(t, store.Set("llm.temperature", 0.2))
	require.NoError(t, store.Set("timeouts.completion", "45s"))
	require.NoError(t, store.Set("embedding.provider", "ollama"))

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/animerec", settings.Index.PersistDir)
	assert.Equal(t, 800, settings.Chunking.ChunkSize)
	assert.InDelta(t, 0.2, settings.LLM.Temperature, 1e-9)
	assert.Equal(t, 45*time.Second, settings.Timeouts.Completion)
	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, "all-minilm", settings.Embedding.Model, "provider default model")
}

func TestSettingsService_Get_InvalidStoredValue(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("retrieval.k", "many"))

	_, err := NewSettingsService(store).Get()

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "retrieval.k", cfgErr.Field)
}

func TestSettingsService_EnvOverrides(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("index.persist_dir", "from-file"))

	service := NewSettingsService(store, WithLookupEnv(envMap(map[string]string{
		"ANIMEREC_INDEX_PERSIST_DIR": "from-env",
		"ANIMEREC_RETRIEVAL_K":       "8",
		"GROQ_API_KEY":               "gsk_test",
		"MODEL_NAME":                 "llama-3.3-70b-versatile",
	})))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-env", settings.Index.PersistDir)
	assert.Equal(t, 8, settings.Retrieval.K)
	assert.Equal(t, "gsk_test", settings.LLM.APIKey)
	assert.Equal(t, "llama-3.3-70b-versatile", settings.LLM.Model)
	assert.True(t, settings.LLM.IsConfigured())
}

func TestSettingsService_ExplicitKeyBeatsProviderEnv(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("llm.api_key", "from-file"))

	service := NewSettingsService(store, WithLookupEnv(envMap(map[string]string{
		"GROQ_API_KEY": "gsk_env",
	})))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "from-file", settings.LLM.APIKey)
}

func TestSettingsService_EnvOverride_Invalid(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), WithLookupEnv(envMap(map[string]string{
		"ANIMEREC_TIMEOUTS_EMBEDDING": "soon",
	})))

	_, err := service.Get()
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.ErrorContains(t, err, "ANIMEREC_TIMEOUTS_EMBEDDING")
}

func TestSettingsService_Set(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set("chunking.chunk_size", "1000"))
	require.NoError(t, service.Set("timeouts.embedding", "90s"))
	require.NoError(t, service.Set("llm.provider", "Anthropic"))

	assert.Equal(t, 1000, store.GetInt("chunking.chunk_size"))
	assert.Equal(t, "1m30s", store.GetString("timeouts.embedding"))
	assert.Equal(t, "anthropic", store.GetString("llm.provider"))

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 1000, settings.Chunking.ChunkSize)
	assert.Equal(t, 90*time.Second, settings.Timeouts.Embedding)
	assert.Equal(t, "claude-3-5-sonnet-latest", settings.LLM.Model)
}

func TestSettingsService_Set_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		field string
	}{
		{"unknown key", "search.mode", "hybrid", "search.mode"},
		{"not an integer", "retrieval.k", "four", "retrieval.k"},
		{"zero k", "retrieval.k", "0", "retrieval.k"},
		{"overlap not below size", "chunking.overlap", "500", "chunking.overlap"},
		{"negative overlap", "chunking.overlap", "-1", "chunking.overlap"},
		{"unknown search type", "retrieval.search_type", "mmr", "retrieval.search_type"},
		{"anthropic embeddings", "embedding.provider", "anthropic", "embedding.provider"},
		{"hashing completions", "llm.provider", "hashing", "llm.provider"},
		{"temperature range", "llm.temperature", "3", "llm.temperature"},
		{"zero batch", "embedding.batch_size", "0", "embedding.batch_size"},
		{"empty collection", "index.collection", "", "index.collection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			err := NewSettingsService(store).Set(tt.key, tt.value)

			var cfgErr *domain.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Empty(t, store.Keys(), "rejected values are not persisted")
		})
	}
}

func TestSettingsService_Entries(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("llm.api_key", "gsk_1234567890abcd"))

	service := NewSettingsService(store, WithLookupEnv(envMap(map[string]string{
		"ANIMEREC_RETRIEVAL_K": "6",
	})))

	entries, err := service.Entries()
	require.NoError(t, err)
	require.Len(t, entries, len(service.Keys()))

	byKey := make(map[string]driving.SettingEntry, len(entries))
	for _, e := range entries {
		byKey[e.Key] = e
	}
	assert.Equal(t, "gsk_****abcd", byKey["llm.api_key"].Value)
	assert.Equal(t, driving.SourceFile, byKey["llm.api_key"].Source)
	assert.Equal(t, "6", byKey["retrieval.k"].Value)
	assert.Equal(t, driving.SourceEnv, byKey["retrieval.k"].Source)
	assert.Equal(t, "500", byKey["chunking.chunk_size"].Value)
	assert.Equal(t, driving.SourceDefault, byKey["chunking.chunk_size"].Source)
	assert.Equal(t, "1m0s", byKey["timeouts.embedding"].Value)
}

func TestSettingsService_Validate_Nil(t *testing.T) {
	assert.ErrorIs(t, NewSettingsService(memory.NewConfigStore()).Validate(nil), domain.ErrConfig)
}

type mockAIValidator struct {
	embedErr error
	llmErr   error
	llmCalls int
}

func (m *mockAIValidator) ValidateEmbedding(_ context.Context, _ *domain.EmbeddingSettings) error {
	return m.embedErr
}

func (m *mockAIValidator) ValidateLLM(_ context.Context, _ *domain.LLMSettings) error {
	m.llmCalls++
	return m.llmErr
}

func TestSettingsService_CheckProviders(t *testing.T) {
	t.Run("skips unconfigured llm", func(t *testing.T) {
		v := &mockAIValidator{}
		service := NewSettingsService(memory.NewConfigStore(), WithAIValidator(v))

		require.NoError(t, service.CheckProviders(context.Background()))
		assert.Zero(t, v.llmCalls)
	})

	t.Run("reports llm failure", func(t *testing.T) {
		v := &mockAIValidator{llmErr: errors.New("401")}
		store := memory.NewConfigStore()
		require.NoError(t, store.Set("llm.api_key", "k"))
		service := NewSettingsService(store, WithAIValidator(v))

		err := service.CheckProviders(context.Background())
		assert.ErrorContains(t, err, "llm (groq): 401")
	})

	t.Run("no validator", func(t *testing.T) {
		assert.NoError(t, NewSettingsService(memory.NewConfigStore()).CheckProviders(context.Background()))
	})
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"ChunkSize":         "chunk_size",
		"APIKey":            "api_key",
		"BaseURL":           "base_url",
		"LLM":               "llm",
		"K":                 "k",
		"RequestsPerSecond": "requests_per_second",
	} {
		assert.Equal(t, want, snakeCase(in))
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "ANIMEREC_INDEX_PERSIST_DIR", EnvName("index.persist_dir"))
}
