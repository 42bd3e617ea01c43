package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

// mockServices implements Services with fixed collaborators.
type mockServices struct {
	settings       driving.SettingsService
	normaliser     driving.NormaliseService
	builder        driving.BuildService
	retrieval      driving.RetrievalService
	recommendation driving.RecommendationService
	err            error
	closed         bool
}

func (m *mockServices) Settings() (driving.SettingsService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.settings, nil
}

func (m *mockServices) Normaliser() (driving.NormaliseService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.normaliser, nil
}

func (m *mockServices) Builder(_ context.Context) (driving.BuildService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.builder, nil
}

func (m *mockServices) Retrieval(_ context.Context) (driving.RetrievalService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.retrieval, nil
}

func (m *mockServices) Recommendation(_ context.Context) (driving.RecommendationService, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.recommendation, nil
}

func (m *mockServices) Close() error {
	m.closed = true
	return nil
}

type mockSettingsService struct {
	app      *domain.AppSettings
	getErr   error
	entries  []driving.SettingEntry
	setKey   string
	setValue string
	setErr   error
	checkErr error
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error)        { return m.app, m.getErr }
func (m *mockSettingsService) Keys() []string                           { return []string{"llm.provider", "retrieval.k"} }
func (m *mockSettingsService) Entries() ([]driving.SettingEntry, error) { return m.entries, nil }
func (m *mockSettingsService) Validate(_ *domain.AppSettings) error     { return nil }
func (m *mockSettingsService) CheckProviders(_ context.Context) error   { return m.checkErr }

func (m *mockSettingsService) Set(key, value string) error {
	m.setKey, m.setValue = key, value
	return m.setErr
}

type mockBuildService struct {
	normalise *domain.NormaliseReport
	report    *driving.BuildReport
	err       error
}

func (m *mockBuildService) Normalise(_ context.Context) *domain.NormaliseReport {
	return m.normalise
}

func (m *mockBuildService) Build(_ context.Context) (*driving.BuildReport, error) {
	return m.report, m.err
}

type mockRetrievalService struct {
	chunks []domain.RetrievedChunk
	err    error
	query  string
	k      int
}

func (m *mockRetrievalService) Retrieve(_ context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	m.query, m.k = query, k
	return m.chunks, m.err
}

type mockRecommendationService struct {
	rec   *domain.Recommendation
	err   error
	query string
}

func (m *mockRecommendationService) Recommend(ctx context.Context, query string) (string, error) {
	rec, err := m.RecommendWithSources(ctx, query)
	if err != nil {
		return "", err
	}
	return rec.Answer, nil
}

func (m *mockRecommendationService) RecommendWithSources(_ context.Context, query string) (*domain.Recommendation, error) {
	m.query = query
	return m.rec, m.err
}

func testChunks() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{Chunk: domain.Chunk{DocumentID: "row-1", Content: "Title: Naruto Overview: A ninja story"}, Distance: 0.12},
		{Chunk: domain.Chunk{DocumentID: "row-2", Position: 1, Content: "Title: Bleach Overview: Soul reapers"}, Distance: 0.57},
	}
}

func testSettings() *mockSettingsService {
	app := domain.DefaultAppSettings()
	app.Retrieval.K = 3
	return &mockSettingsService{
		app: &app,
		entries: []driving.SettingEntry{
			{Key: "llm.api_key", Value: "gsk_****", Source: driving.SourceEnv},
			{Key: "llm.provider", Value: "groq", Source: driving.SourceFile},
			{Key: "retrieval.k", Value: "3", Source: driving.SourceDefault},
		},
	}
}

// withServices injects svc for the duration of the test.
func withServices(t *testing.T, svc Services) {
	t.Helper()
	services = svc
	t.Cleanup(func() { services = nil })
}

// resetFlags restores flag variables between executions of rootCmd.
func resetFlags() {
	verbose, jsonLogs = false, false
	configDir, envFile = "", ""
	retrieveK, retrieveJSON = 0, false
	recommendSources = false
	_ = mcpServeCmd.Flags().Set("port", "0")
}

// executeCommand runs rootCmd with args and returns combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		resetFlags()
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}
