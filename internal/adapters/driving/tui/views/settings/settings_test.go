package settings

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/animerec/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/animerec/internal/core/domain"
	"github.com/custodia-labs/animerec/internal/core/ports/driving"
)

type mockSettingsService struct {
	entries []driving.SettingEntry
	err     error
	calls   int
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error)      { return nil, nil }
func (m *mockSettingsService) Set(_, _ string) error                  { return nil }
func (m *mockSettingsService) Keys() []string                         { return nil }
func (m *mockSettingsService) Validate(_ *domain.AppSettings) error   { return nil }
func (m *mockSettingsService) CheckProviders(_ context.Context) error { return nil }

func (m *mockSettingsService) Entries() ([]driving.SettingEntry, error) {
	m.calls++
	return m.entries, m.err
}

func testEntries() []driving.SettingEntry {
	return []driving.SettingEntry{
		{Key: "data.raw_csv", Value: "anime_with_synopsis.csv", Source: driving.SourceDefault},
		{Key: "llm.api_key", Value: "gsk_****", Source: driving.SourceEnv},
		{Key: "retrieval.k", Value: "4", Source: driving.SourceFile},
	}
}

func loadedView(t *testing.T, service *mockSettingsService) *View {
	t.Helper()
	v := NewView(nil, nil, service)
	v.SetDimensions(100, 30)
	cmd := v.Init()
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func TestView_LoadsEntries(t *testing.T) {
	service := &mockSettingsService{entries: testEntries()}
	v := loadedView(t, service)

	require.NoError(t, v.Err())
	assert.Len(t, v.Entries(), 3)

	out := v.View()
	assert.Contains(t, out, "retrieval.k")
	assert.Contains(t, out, "gsk_****")
	assert.Contains(t, out, "(env)")
}

func TestView_LoadError(t *testing.T) {
	v := loadedView(t, &mockSettingsService{err: errors.New("config unreadable")})

	assert.EqualError(t, v.Err(), "config unreadable")
	assert.Contains(t, v.View(), "config unreadable")
}

func TestView_NoService(t *testing.T) {
	v := NewView(nil, nil, nil)
	v.SetDimensions(80, 24)

	v, _ = v.Update(v.Init()())

	assert.ErrorIs(t, v.Err(), ErrNoSettingsService)
}

func TestView_Navigation(t *testing.T) {
	v := loadedView(t, &mockSettingsService{entries: testEntries()})

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 0, v.Selected())

	for range 5 {
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	assert.Equal(t, 2, v.Selected())
}

func TestView_Reload(t *testing.T) {
	service := &mockSettingsService{entries: testEntries()}
	v := loadedView(t, service)

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	require.NotNil(t, cmd)
	_, _ = v.Update(cmd())

	assert.Equal(t, 2, service.calls)
}

func TestView_EscGoesToMenu(t *testing.T) {
	v := loadedView(t, &mockSettingsService{})

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)

	changed, ok := cmd().(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_NotReady(t *testing.T) {
	assert.Equal(t, "Initialising...", NewView(nil, nil, nil).View())
}
