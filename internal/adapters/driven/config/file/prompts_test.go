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

	"github.com/Cyb-Leon/jse-decision-support/internal/core/domain"
	"github.com/Cyb-Leon/jse-decision-support/internal/core/ports/driven"
)

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("JSE_HOME", home)

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "prompts"), store.Dir())
}

func TestPromptStore_DefaultsForEveryAnalysisType(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	for _, at := range domain.AnalysisTypes() {
		prompt, err := store.Load(driven.AnalystPromptName(string(at)))
		require.NoError(t, err, at)
		assert.Contains(t, prompt, "JSE", at)
	}
}

func TestPromptStore_WritesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptRAGAnswer)
	require.NoError(t, err)

	for name := range defaultPrompts {
		_, err := os.Stat(filepath.Join(dir, name+".txt"))
		assert.NoError(t, err, name)
	}
}

func TestPromptStore_TemplatesFormat(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	rag, err := store.Load(driven.PromptRAGAnswer)
	require.NoError(t, err)
	out := fmt.Sprintf(rag, " for NPN", "[Source 1: ar.pdf, p. 3]\nrevenue", "How did revenue move?")
	assert.Contains(t, out, "equities for NPN.")
	assert.Contains(t, out, "[Source 1: ar.pdf, p. 3]")
	assert.NotContains(t, out, "%!")

	sum, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	out = fmt.Sprintf(sum, 200, "text")
	assert.Contains(t, out, "200 words")
	assert.NotContains(t, out, "%!")
}

func TestPromptStore_CustomFileWins(t *testing.T) {
	dir := t.TempDir()
	custom := "Be brief. Cite [Source N]."
	require.NoError(t, os.WriteFile(filepath.Join(dir, "analyst_news.txt"), []byte("\n  "+custom+"\n"), 0600))

	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	prompt, err := store.Load(driven.AnalystPromptName("news"))
	require.NoError(t, err)
	assert.Equal(t, custom, prompt)

	data, err := os.ReadFile(filepath.Join(dir, "analyst_news.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), custom, "existing files are not overwritten")
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	first, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "summarise.txt"), []byte("edited %d %s"), 0600))

	cached, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.Equal(t, "edited %d %s", fresh)
}

func TestPromptStore_FallsBackWhenFileRemoved(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "summarise.txt")))
	store.Reload()

	prompt, err := store.Load(driven.PromptSummarise)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prompt, "Summarise the following"))
}

func TestPromptStore_UnknownPrompt(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load("analyst_astrology")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyst_astrology")
}

func TestPromptStore_InitFailureUsesDefaults(t *testing.T) {
	store, err := NewPromptStore("/dev/null/prompts")
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptRAGAnswer)
	require.NoError(t, err)
	assert.Contains(t, prompt, "[Source N]")

	_, err = store.Load("custom")
	assert.Error(t, err)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, err := NewPromptStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = store.Load(driven.PromptRAGAnswer)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}
