// Package ai builds embedding and completion services from settings and
// wraps them with throttling and resilience decorators.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/animerec/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/animerec/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/animerec/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/animerec/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/animerec/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/animerec/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates an embedding service, checks
// connectivity and applies request throttling.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'animerec settings set' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}

	if settings.RequestsPerSecond > 0 && !settings.Provider.IsLocal() {
		return NewThrottledEmbedder(svc, settings.RequestsPerSecond), nil
	}
	return svc, nil
}

// CreateAndValidateLLMService creates a completion service, checks
// connectivity and wraps it with retries and a circuit breaker.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings, timeout time.Duration) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'animerec settings set' to fix",
			domain.ErrLLMUnavailable, err)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w)", domain.ErrLLMUnavailable, err)
	}

	return NewResilientLLM(svc, ResilienceConfig{
		Timeout:    timeout,
		MaxRetries: settings.MaxRetries,
	}), nil
}

// ValidateEmbeddingConfig creates a service from settings and pings it.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// ValidateLLMConfig creates a service from settings and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc.Ping)
}

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, &domain.ConfigError{Field: "embedding.provider", Reason: "not configured"}
	}
	if !settings.IsConfigured() {
		return nil, unconfigured("embedding", settings.Provider, settings.APIKey != "")
	}

	switch settings.Provider {
	case domain.AIProviderHashing:
		return hashing.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: embedding provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// CreateLLMService creates the completion service selected by settings.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, &domain.ConfigError{Field: "llm.provider", Reason: "not configured"}
	}
	if !settings.IsConfigured() {
		return nil, unconfigured("llm", settings.Provider, settings.APIKey != "")
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	case domain.AIProviderGroq:
		baseURL := settings.BaseURL
		if baseURL == "" {
			baseURL = domain.GroqBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:   settings.APIKey,
			BaseURL:  baseURL,
			Model:    settings.Model,
			Provider: string(domain.AIProviderGroq),
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: LLM provider %s", domain.ErrUnsupportedType, settings.Provider)
	}
}

// unconfigured explains why IsConfigured rejected a provider.
func unconfigured(section string, provider domain.AIProvider, hasKey bool) error {
	field := section + ".provider"
	switch {
	case !provider.IsValid():
		return &domain.ConfigError{Field: field, Reason: fmt.Sprintf("unknown provider %q", provider)}
	case provider.RequiresAPIKey() && !hasKey:
		return &domain.ConfigError{Field: section + ".api_key", Reason: "required for " + provider.String()}
	default:
		return &domain.ConfigError{Field: field, Reason: provider.String() + " cannot serve " + section}
	}
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return fn(ctx)
}
