package tui

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

type mockRecommendationService struct {
	rec *domain.Recommendation
	err error
}

func (m *mockRecommendationService) Recommend(ctx context.Context, query string) (string, error) {
	rec, err := m.RecommendWithSources(ctx, query)
	if err != nil {
		return "", err
	}
	return rec.Answer, nil
}

func (m *mockRecommendationService) RecommendWithSources(_ context.Context, query string) (*domain.Recommendation, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.rec != nil {
		return m.rec, nil
	}
	return &domain.Recommendation{Query: query, Answer: "Try Naruto."}, nil
}

type mockSettingsService struct {
	entries []driving.SettingEntry
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error)        { return nil, nil }
func (m *mockSettingsService) Set(_, _ string) error                    { return nil }
func (m *mockSettingsService) Keys() []string                           { return nil }
func (m *mockSettingsService) Entries() ([]driving.SettingEntry, error) { return m.entries, nil }
func (m *mockSettingsService) Validate(_ *domain.AppSettings) error     { return nil }
func (m *mockSettingsService) CheckProviders(_ context.Context) error   { return nil }
