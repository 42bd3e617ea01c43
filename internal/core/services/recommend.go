package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
	"github.com/custodia-labs/animerec/internal/logger"
)

// Ensure RecommendationService implements the interface.
var _ driving.RecommendationService = (*RecommendationService)(nil)

// ChunkRetriever returns the chunks that ground an answer.
// *Retriever satisfies it.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.RetrievedChunk, error)
}

// contextSeparator joins retrieved chunk texts in the prompt.
const contextSeparator = "\n\n"

// RecommendationService retrieves chunks for a query, renders the recommend
// prompt and returns the completion verbatim.
type RecommendationService struct {
	retriever ChunkRetriever
	llm       driven.LLMService
	prompts   driven.PromptStore
	opts      driven.GenerateOptions
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(
	retriever ChunkRetriever,
	llm driven.LLMService,
	prompts driven.PromptStore,
	opts driven.GenerateOptions,
) (*RecommendationService, error) {
	switch {
	case retriever == nil:
		return nil, &domain.ConfigError{Field: "retriever", Reason: "required"}
	case llm == nil:
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, &domain.ConfigError{Field: "llm", Reason: "required"})
	case prompts == nil:
		return nil, &domain.ConfigError{Field: "prompts", Reason: "required"}
	}
	return &RecommendationService{retriever: retriever, llm: llm, prompts: prompts, opts: opts}, nil
}

// Recommend returns the generated recommendation text.
func (s *RecommendationService) Recommend(ctx context.Context, query string) (string, error) {
	rec, err := s.RecommendWithSources(ctx, query)
	if err != nil {
		return "", err
	}
	return rec.Answer, nil
}

// RecommendWithSources returns the answer together with the retrieved chunks.
// Every failure is a *domain.RecommendationError carrying the query.
func (s *RecommendationService) RecommendWithSources(ctx context.Context, query string) (*domain.Recommendation, error) {
	fail := func(err error) (*domain.Recommendation, error) {
		logger.Error("recommendation failed for %q: %v", query, err)
		return nil, &domain.RecommendationError{Query: query, Err: err}
	}

	if strings.TrimSpace(query) == "" {
		return fail(fmt.Errorf("%w: empty query", domain.ErrInvalidInput))
	}

	chunks, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return fail(err)
	}

	prompt, err := s.renderPrompt(chunks, query)
	if err != nil {
		return fail(err)
	}

	answer, err := s.llm.Generate(ctx, prompt, s.opts)
	if err != nil {
		return fail(err)
	}

	logger.Debug("Generated recommendation with %s from %d chunks", s.llm.ModelName(), len(chunks))
	return &domain.Recommendation{Query: query, Answer: answer, Sources: chunks}, nil
}

// renderPrompt fills the recommend template: context first, then the question.
func (s *RecommendationService) renderPrompt(chunks []domain.RetrievedChunk, query string) (string, error) {
	tmpl, err := s.prompts.Load(driven.PromptRecommend)
	if err != nil {
		return "", fmt.Errorf("load prompt: %w", err)
	}
	if err := checkTemplate(tmpl); err != nil {
		return "", err
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Chunk.Content
	}
	return fmt.Sprintf(tmpl, strings.Join(texts, contextSeparator), query), nil
}

// checkTemplate accepts exactly two %s placeholders. A literal percent sign
// is written %%; any other verb is rejected.
func checkTemplate(tmpl string) error {
	invalid := func(reason string) error {
		return &domain.ConfigError{Field: "prompts." + driven.PromptRecommend, Reason: reason}
	}

	placeholders := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '%' {
			continue
		}
		if i+1 == len(tmpl) {
			return invalid("template ends with a lone %")
		}
		i++
		switch tmpl[i] {
		case '%':
		case 's':
			placeholders++
		default:
			return invalid(fmt.Sprintf("unsupported verb %%%c at offset %d, use %%%% for a literal percent sign", tmpl[i], i-1))
		}
	}
	if placeholders != 2 {
		return invalid(fmt.Sprintf("template needs 2 %%s placeholders, found %d", placeholders))
	}
	return nil
}
