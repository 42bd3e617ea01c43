package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.SourceCount())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Bar)
		contains []string
	}{
		{"ready", func(*Bar) {}, []string{"Ready", "enter: ask"}},
		{"thinking", func(b *Bar) { b.SetState(StateThinking) }, []string{"Thinking..."}},
		{"error with message", func(b *Bar) {
			b.SetState(StateError)
			b.SetMessage("vector store not available")
		}, []string{"Error: vector store not available"}},
		{"error without message", func(b *Bar) { b.SetState(StateError) }, []string{"Error"}},
		{"answered", func(b *Bar) {
			b.SetState(StateAnswered)
			b.SetSourceCount(4)
		}, []string{"Answered from 4 catalog chunks", "n: new query", "s: sources"}},
		{"ready with message", func(b *Bar) { b.SetMessage("Settings reloaded") }, []string{"Settings reloaded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(160)
			tt.setup(bar)

			view := bar.View()
			for _, want := range tt.contains {
				assert.Contains(t, view, want)
			}
		})
	}
}

func TestBar_Clear(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateError)
	bar.SetMessage("boom")
	bar.SetSourceCount(3)

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Empty(t, bar.Message())
	assert.Zero(t, bar.SourceCount())
}

func TestBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)

	assert.NotEmpty(t, bar.View())
}
