package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/animerec/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".animerec", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptRecommend)
	require.NoError(t, err)

	for _, f := range []string{"recommend.txt", "README.md"} {
		_, err := os.Stat(filepath.Join(dir, f))
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_DefaultRecommendTemplate(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRecommend)
	require.NoError(t, err)

	def, ok := DefaultPrompt(driven.PromptRecommend)
	require.True(t, ok)
	assert.Equal(t, def, prompt)
	assert.Equal(t, 2, strings.Count(prompt, "%s"))

	rendered := fmt.Sprintf(prompt, "Title: Naruto", "ninja story?")
	assert.Less(t, strings.Index(rendered, "Title: Naruto"), strings.Index(rendered, "ninja story?"))
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recommend.txt"), []byte("\n  ctx=%s q=%s  \n"), 0o600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRecommend)
	require.NoError(t, err)
	assert.Equal(t, "ctx=%s q=%s", prompt)
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")
	assert.ErrorContains(t, err, "nonexistent_prompt")
}

func TestPromptStore_Load_FallsBackWhenInitFails(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRecommend)
	require.NoError(t, err)
	assert.Contains(t, prompt, "anime")

	_, err = store.Load("other")
	assert.ErrorContains(t, err, "init failed")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptRecommend)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "recommend.txt"), []byte("edited %s %s"), 0o600))

	cached, err := store.Load(driven.PromptRecommend)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()

	reloaded, err := store.Load(driven.PromptRecommend)
	require.NoError(t, err)
	assert.Equal(t, "edited %s %s", reloaded)
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()
	custom := "pre-existing %s %s"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recommend.txt"), []byte(custom), 0o600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptRecommend)

	data, err := os.ReadFile(filepath.Join(dir, "recommend.txt"))
	require.NoError(t, err)
	assert.Equal(t, custom, string(data))
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	const goroutines = 50
	results := make([]string, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := store.Load(driven.PromptRecommend)
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results[1:] {
		assert.Equal(t, results[0], p)
	}
}
