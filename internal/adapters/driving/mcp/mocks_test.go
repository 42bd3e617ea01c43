package mcp

import (
	"context"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

// mockRecommendationService is a mock implementation of driving.RecommendationService.
type mockRecommendationService struct {
	answer  string
	sources []domain.RetrievedChunk
	err     error
	query   string
}

func (m *mockRecommendationService) Recommend(_ context.Context, query string) (string, error) {
	m.query = query
	return m.answer, m.err
}

func (m *mockRecommendationService) RecommendWithSources(_ context.Context, query string) (*domain.Recommendation, error) {
	m.query = query
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Recommendation{Query: query, Answer: m.answer, Sources: m.sources}, nil
}

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	hits []domain.RetrievedChunk
	err  error
	k    int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, _ string, k int) ([]domain.RetrievedChunk, error) {
	m.k = k
	return m.hits, m.err
}

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	entries []driving.SettingEntry
	err     error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	return &s, m.err
}
func (m *mockSettingsService) Set(string, string) error                 { return m.err }
func (m *mockSettingsService) Keys() []string                           { return nil }
func (m *mockSettingsService) Entries() ([]driving.SettingEntry, error) { return m.entries, m.err }
func (m *mockSettingsService) Validate(*domain.AppSettings) error       { return m.err }
func (m *mockSettingsService) CheckProviders(context.Context) error     { return m.err }

func validPorts() *Ports {
	return &Ports{
		Recommendation: &mockRecommendationService{},
		Retrieval:      &mockRetrievalService{},
	}
}
