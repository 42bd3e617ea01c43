package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvPrefix prefixes environment overrides: "index.persist_dir" is read from
// ANIMEREC_INDEX_PERSIST_DIR.
const EnvPrefix = "ANIMEREC_"

// LookupEnvFunc resolves an environment variable.
type LookupEnvFunc func(key string) (string, bool)

// settingField binds a config key to a field of domain.AppSettings.
// ptr returns a pointer to one of: *string, *int, *float64, *time.Duration,
// *domain.AIProvider, *domain.SearchType.
type settingField struct {
	key    string
	secret bool
	ptr    func(s *domain.AppSettings) any
}

var settingFields = []settingField{
	{key: "catalog.raw_path", ptr: func(s *domain.AppSettings) any { return &s.Catalog.RawPath }},
	{key: "catalog.processed_path", ptr: func(s *domain.AppSettings) any { return &s.Catalog.ProcessedPath }},
	{key: "chunking.chunk_size", ptr: func(s *domain.AppSettings) any { return &s.Chunking.ChunkSize }},
	{key: "chunking.overlap", ptr: func(s *domain.AppSettings) any { return &s.Chunking.Overlap }},
	{key: "index.persist_dir", ptr: func(s *domain.AppSettings) any { return &s.Index.PersistDir }},
	{key: "index.collection", ptr: func(s *domain.AppSettings) any { return &s.Index.Collection }},
	{key: "retrieval.k", ptr: func(s *domain.AppSettings) any { return &s.Retrieval.K }},
	{key: "retrieval.search_type", ptr: func(s *domain.AppSettings) any { return &s.Retrieval.SearchType }},
	{key: "embedding.provider", ptr: func(s *domain.AppSettings) any { return &s.Embedding.Provider }},
	{key: "embedding.model", ptr: func(s *domain.AppSettings) any { return &s.Embedding.Model }},
	{key: "embedding.base_url", ptr: func(s *domain.AppSettings) any { return &s.Embedding.BaseURL }},
	{key: "embedding.api_key", secret: true, ptr: func(s *domain.AppSettings) any { return &s.Embedding.APIKey }},
	{key: "embedding.dimensions", ptr: func(s *domain.AppSettings) any { return &s.Embedding.Dimensions }},
	{key: "embedding.requests_per_second", ptr: func(s *domain.AppSettings) any { return &s.Embedding.RequestsPerSecond }},
	{key: "embedding.batch_size", ptr: func(s *domain.AppSettings) any { return &s.Embedding.BatchSize }},
	{key: "llm.provider", ptr: func(s *domain.AppSettings) any { return &s.LLM.Provider }},
	{key: "llm.model", ptr: func(s *domain.AppSettings) any { return &s.LLM.Model }},
	{key: "llm.base_url", ptr: func(s *domain.AppSettings) any { return &s.LLM.BaseURL }},
	{key: "llm.api_key", secret: true, ptr: func(s *domain.AppSettings) any { return &s.LLM.APIKey }},
	{key: "llm.temperature", ptr: func(s *domain.AppSettings) any { return &s.LLM.Temperature }},
	{key: "llm.max_retries", ptr: func(s *domain.AppSettings) any { return &s.LLM.MaxRetries }},
	{key: "timeouts.embedding", ptr: func(s *domain.AppSettings) any { return &s.Timeouts.Embedding }},
	{key: "timeouts.completion", ptr: func(s *domain.AppSettings) any { return &s.Timeouts.Completion }},
}

// providerKeyEnv names the conventional API key variable of each cloud provider.
var providerKeyEnv = map[domain.AIProvider]string{
	domain.AIProviderGroq:      "GROQ_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
}

// legacyModelEnv sets llm.model in existing deployments.
const legacyModelEnv = "MODEL_NAME"

// SettingsService resolves settings in three layers: defaults, the config
// store, then environment overrides.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   LookupEnvFunc
	validate    *validator.Validate
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithLookupEnv enables environment overrides. Without it only the config
// store is consulted.
func WithLookupEnv(fn LookupEnvFunc) SettingsOption {
	return func(s *SettingsService) {
		s.lookupEnv = fn
	}
}

// WithAIValidator enables CheckProviders.
func WithAIValidator(v driven.AIConfigValidator) SettingsOption {
	return func(s *SettingsService) {
		s.aiValidator = v
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return snakeCase(f.Name)
	})

	s := &SettingsService{
		configStore: configStore,
		validate:    v,
		lookupEnv:   func(string) (string, bool) { return "", false },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns validated settings with file and environment overrides applied.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings, _, err := s.resolve()
	if err != nil {
		return nil, err
	}
	if err := s.Validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Set parses value for key, validates the resulting settings and persists it.
func (s *SettingsService) Set(key, value string) error {
	field, ok := lookupField(key)
	if !ok {
		return &domain.ConfigError{Field: key, Reason: "unknown setting"}
	}

	settings, _, err := s.resolve()
	if err != nil {
		return err
	}
	if err := parseInto(field.ptr(settings), value); err != nil {
		return &domain.ConfigError{Field: key, Reason: err.Error()}
	}
	if err := s.Validate(settings); err != nil {
		return err
	}

	if err := s.configStore.Set(key, storedValue(field.ptr(settings))); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys lists every supported setting key in declaration order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingFields))
	for i, f := range settingFields {
		keys[i] = f.key
	}
	return keys
}

// Entries returns every setting with its resolved value and origin.
func (s *SettingsService) Entries() ([]driving.SettingEntry, error) {
	settings, sources, err := s.resolve()
	if err != nil {
		return nil, err
	}

	entries := make([]driving.SettingEntry, 0, len(settingFields))
	for _, f := range settingFields {
		value := formatValue(f.ptr(settings))
		if f.secret && value != "" {
			value = maskSecret(value)
		}
		entries = append(entries, driving.SettingEntry{
			Key:    f.key,
			Value:  value,
			Source: sources[f.key],
		})
	}
	return entries, nil
}

// Validate runs struct-tag validation, then the semantic checks tags cannot express.
func (s *SettingsService) Validate(settings *domain.AppSettings) error {
	if settings == nil {
		return &domain.ConfigError{Field: "settings", Reason: "nil"}
	}

	if err := s.validate.Struct(settings); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &domain.ConfigError{Field: "settings", Reason: err.Error()}
	}

	if !settings.Retrieval.SearchType.IsValid() {
		return &domain.ConfigError{
			Field:  "retrieval.search_type",
			Reason: fmt.Sprintf("unsupported search type %q", settings.Retrieval.SearchType),
		}
	}
	if p := settings.Embedding.Provider; !p.IsValid() || p == domain.AIProviderAnthropic {
		return &domain.ConfigError{Field: "embedding.provider", Reason: fmt.Sprintf("%q cannot produce embeddings", p)}
	}
	if p := settings.LLM.Provider; p != "" && (!p.IsValid() || p == domain.AIProviderHashing) {
		return &domain.ConfigError{Field: "llm.provider", Reason: fmt.Sprintf("%q cannot generate text", p)}
	}
	return nil
}

// CheckProviders pings the embedding service and, when configured, the
// completion service.
func (s *SettingsService) CheckProviders(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding); err != nil {
		return fmt.Errorf("embedding (%s): %w", settings.Embedding.Provider, err)
	}
	if settings.LLM.IsConfigured() {
		if err := s.aiValidator.ValidateLLM(ctx, &settings.LLM); err != nil {
			return fmt.Errorf("llm (%s): %w", settings.LLM.Provider, err)
		}
	}
	return nil
}

// resolve layers defaults, stored values and environment overrides, and
// records where each key came from.
func (s *SettingsService) resolve() (*domain.AppSettings, map[string]string, error) {
	settings := domain.DefaultAppSettings()
	sources := make(map[string]string, len(settingFields))

	for _, f := range settingFields {
		sources[f.key] = driving.SourceDefault
		val, ok := s.configStore.Get(f.key)
		if !ok {
			continue
		}
		if err := assignStored(f.ptr(&settings), val); err != nil {
			return nil, nil, &domain.ConfigError{Field: f.key, Reason: err.Error()}
		}
		sources[f.key] = driving.SourceFile
	}

	s.applyProviderDefaults(&settings, sources)

	for _, f := range settingFields {
		raw, ok := s.lookupEnv(EnvName(f.key))
		if !ok || raw == "" {
			continue
		}
		if err := parseInto(f.ptr(&settings), raw); err != nil {
			return nil, nil, &domain.ConfigError{Field: EnvName(f.key), Reason: err.Error()}
		}
		sources[f.key] = driving.SourceEnv
	}

	s.applyConventionalEnv(&settings, sources)
	return &settings, sources, nil
}

// applyProviderDefaults fills in the model of a provider chosen without one.
func (s *SettingsService) applyProviderDefaults(settings *domain.AppSettings, sources map[string]string) {
	if sources["llm.model"] == driving.SourceDefault && sources["llm.provider"] != driving.SourceDefault {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}
	if sources["embedding.model"] == driving.SourceDefault && sources["embedding.provider"] != driving.SourceDefault {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[settings.Embedding.Provider]
	}
}

// applyConventionalEnv reads provider key variables such as GROQ_API_KEY and
// the legacy MODEL_NAME when no explicit value was given.
func (s *SettingsService) applyConventionalEnv(settings *domain.AppSettings, sources map[string]string) {
	if settings.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[settings.LLM.Provider]; ok {
			if v, ok := s.lookupEnv(name); ok && v != "" {
				settings.LLM.APIKey = v
				sources["llm.api_key"] = driving.SourceEnv
			}
		}
	}
	if settings.Embedding.APIKey == "" {
		if name, ok := providerKeyEnv[settings.Embedding.Provider]; ok {
			if v, ok := s.lookupEnv(name); ok && v != "" {
				settings.Embedding.APIKey = v
				sources["embedding.api_key"] = driving.SourceEnv
			}
		}
	}
	if sources["llm.model"] != driving.SourceEnv {
		if v, ok := s.lookupEnv(legacyModelEnv); ok && v != "" {
			settings.LLM.Model = v
			sources["llm.model"] = driving.SourceEnv
		}
	}
}

// EnvName returns the override variable for a setting key.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func lookupField(key string) (settingField, bool) {
	for _, f := range settingFields {
		if f.key == key {
			return f, true
		}
	}
	return settingField{}, false
}

// parseInto parses a user-supplied string into the field behind ptr.
func parseInto(ptr any, raw string) error {
	raw = strings.TrimSpace(raw)
	switch p := ptr.(type) {
	case *string:
		*p = raw
	case *domain.AIProvider:
		*p = domain.AIProvider(strings.ToLower(raw))
	case *domain.SearchType:
		*p = domain.SearchType(strings.ToLower(raw))
	case *int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", raw)
		}
		*p = n
	case *float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("expected a number, got %q", raw)
		}
		*p = f
	case *time.Duration:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("expected a duration such as 30s, got %q", raw)
		}
		*p = d
	default:
		return fmt.Errorf("unsupported setting type %T", ptr)
	}
	return nil
}

// assignStored copies a decoded config value into the field behind ptr.
func assignStored(ptr any, val any) error {
	switch v := val.(type) {
	case string:
		return parseInto(ptr, v)
	case int64:
		return parseInto(ptr, strconv.FormatInt(v, 10))
	case int:
		return parseInto(ptr, strconv.Itoa(v))
	case float64:
		if p, ok := ptr.(*int); ok && v == float64(int(v)) {
			*p = int(v)
			return nil
		}
		return parseInto(ptr, strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return fmt.Errorf("unsupported value %v (%T)", val, val)
	}
}

// storedValue converts a field into the value written to the config store.
func storedValue(ptr any) any {
	switch p := ptr.(type) {
	case *int:
		return *p
	case *float64:
		return *p
	default:
		return formatValue(ptr)
	}
}

func formatValue(ptr any) string {
	switch p := ptr.(type) {
	case *string:
		return *p
	case *domain.AIProvider:
		return p.String()
	case *domain.SearchType:
		return p.String()
	case *int:
		return strconv.Itoa(*p)
	case *float64:
		return strconv.FormatFloat(*p, 'f', -1, 64)
	case *time.Duration:
		return p.String()
	default:
		return fmt.Sprint(ptr)
	}
}

func maskSecret(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:4] + "****" + s[len(s)-4:]
}

// fieldError converts a validator failure into a ConfigError keyed like the config file.
func fieldError(fe validator.FieldError) error {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	field := strings.Join(parts, ".")

	reason := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "gt":
		reason = "must be greater than " + fe.Param()
	case "gte":
		reason = "must be at least " + fe.Param()
	case "lte":
		reason = "must be at most " + fe.Param()
	case "ltfield":
		reason = "must be less than " + snakeCase(fe.Param())
	}
	return &domain.ConfigError{Field: field, Reason: reason}
}

// snakeCase converts Go field names to config keys: ChunkSize to chunk_size,
// APIKey to api_key, LLM to llm.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
