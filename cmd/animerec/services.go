package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/animerec/internal/adapters/driven/ai"
	"github.com/custodia-labs/animerec/internal/adapters/driven/config/file"
	"github.com/custodia-labs/animerec/internal/adapters/driven/storage/lockfile"
	"github.com/custodia-labs/animerec/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/animerec/internal/adapters/driving/cli"
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driven"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
	"github.com/custodia-labs/animerec/internal/core/services"
	"github.com/custodia-labs/animerec/internal/logger"
	"github.com/custodia-labs/animerec/internal/normalisers/catalog"
	"github.com/custodia-labs/animerec/internal/postprocessors"
)

// Ensure appServices implements the interface.
var _ cli.Services = (*appServices)(nil)

// appServices wires adapters into core services on first use, so a command
// only pays for the collaborators it touches.
type appServices struct {
	configDir string
	settings  *services.SettingsService
	opener    driven.IndexOpener

	app      *domain.AppSettings
	embedder driven.EmbeddingService
	llm      driven.LLMService
	loader   *services.IndexLoader
}

// newServices opens the config store and settings. Everything else is lazy.
func newServices(opts cli.Options) (cli.Services, error) {
	store, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	logger.Debug("config file: %s", store.Path())

	settings := services.NewSettingsService(store,
		services.WithLookupEnv(os.LookupEnv),
		services.WithAIValidator(ai.NewConfigValidator()),
	)

	return &appServices{
		configDir: opts.ConfigDir,
		settings:  settings,
		opener:    sqlite.NewOpener(),
	}, nil
}

func (s *appServices) Settings() (driving.SettingsService, error) {
	return s.settings, nil
}

func (s *appServices) appSettings() (*domain.AppSettings, error) {
	if s.app != nil {
		return s.app, nil
	}
	app, err := s.settings.Get()
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

func (s *appServices) embedding(ctx context.Context) (driven.EmbeddingService, error) {
	if s.embedder != nil {
		return s.embedder, nil
	}
	app, err := s.appSettings()
	if err != nil {
		return nil, err
	}
	emb, err := ai.CreateAndValidateEmbeddingService(ctx, &app.Embedding)
	if err != nil {
		return nil, err
	}
	logger.Debug("embedding: %s (%d dimensions)", emb.ModelName(), emb.Dimensions())
	s.embedder = emb
	return emb, nil
}

// Normaliser needs only the catalog paths, so no provider is contacted.
func (s *appServices) Normaliser() (driving.NormaliseService, error) {
	app, err := s.appSettings()
	if err != nil {
		return nil, err
	}
	return services.NewNormaliseService(catalog.New(), app.Catalog), nil
}

func (s *appServices) Builder(ctx context.Context) (driving.BuildService, error) {
	app, err := s.appSettings()
	if err != nil {
		return nil, err
	}
	emb, err := s.embedding(ctx)
	if err != nil {
		return nil, err
	}
	pipeline, err := postprocessors.NewDefaultPipeline(app.Chunking)
	if err != nil {
		return nil, err
	}

	normaliser := catalog.New()
	builder, err := services.NewIndexBuilder(normaliser, pipeline, emb, s.opener, lockfile.New(), services.BuilderConfig{
		Index:        app.Index,
		BatchSize:    app.Embedding.BatchSize,
		EmbedTimeout: app.Timeouts.Embedding,
	})
	if err != nil {
		return nil, err
	}
	return services.NewBuildService(normaliser, builder, app.Catalog), nil
}

func (s *appServices) indexLoader(ctx context.Context) (*services.IndexLoader, error) {
	if s.loader != nil {
		return s.loader, nil
	}
	app, err := s.appSettings()
	if err != nil {
		return nil, err
	}
	emb, err := s.embedding(ctx)
	if err != nil {
		return nil, err
	}
	s.loader = services.NewIndexLoader(s.opener, emb, app.Index, app.Timeouts.Embedding)
	return s.loader, nil
}

func (s *appServices) Retrieval(ctx context.Context) (driving.RetrievalService, error) {
	return s.indexLoader(ctx)
}

func (s *appServices) Recommendation(ctx context.Context) (driving.RecommendationService, error) {
	app, err := s.appSettings()
	if err != nil {
		return nil, err
	}
	loader, err := s.indexLoader(ctx)
	if err != nil {
		return nil, err
	}
	// a missing index is reported before any completion provider is contacted
	if _, err := loader.LoadOrErr(ctx); err != nil {
		return nil, err
	}
	retriever, err := loader.Retriever(app.Retrieval.K, app.Retrieval.SearchType)
	if err != nil {
		return nil, err
	}

	if s.llm == nil {
		llm, err := ai.CreateAndValidateLLMService(ctx, &app.LLM, app.Timeouts.Completion)
		if err != nil {
			return nil, err
		}
		s.llm = llm
	}

	prompts, err := file.NewPromptStore(s.promptDir())
	if err != nil {
		return nil, err
	}

	return services.NewRecommendationService(retriever, s.llm, prompts, driven.GenerateOptions{
		Temperature: app.LLM.Temperature,
	})
}

// promptDir returns the prompts directory under the config directory.
// Empty selects the prompt store default.
func (s *appServices) promptDir() string {
	if s.configDir == "" {
		return ""
	}
	return filepath.Join(s.configDir, "prompts")
}

func (s *appServices) Close() error {
	var errs []error
	if s.loader != nil {
		errs = append(errs, s.loader.Close())
	}
	if s.llm != nil {
		errs = append(errs, s.llm.Close())
	}
	if s.embedder != nil {
		errs = append(errs, s.embedder.Close())
	}
	return errors.Join(errs...)
}
