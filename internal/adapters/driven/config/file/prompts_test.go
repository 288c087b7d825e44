package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediascope/internal/core/ports/driven"
)

const testExplain = "Question: %s\nEvidence: %s"

func newTestPromptStore(t *testing.T) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewPromptStore(dir, WithDefaultPrompt(driven.PromptExplain, testExplain))
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mediascope", "prompts"), store.Dir())
}

func TestNewPromptStore_NoIO(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "prompts")

	_, err := NewPromptStore(dir)

	require.NoError(t, err)
	assert.NoDirExists(t, dir)
}

func TestPromptStore_Load_SeedsFiles(t *testing.T) {
	store, dir := newTestPromptStore(t)

	got, err := store.Load(driven.PromptExplain)

	require.NoError(t, err)
	assert.Equal(t, testExplain, got)
	assert.FileExists(t, filepath.Join(dir, "explain.txt"))
	assert.FileExists(t, filepath.Join(dir, "README.md"))
}

func TestPromptStore_Load_UserEdits(t *testing.T) {
	store, dir := newTestPromptStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "explain.txt"), []byte("  Q=%s E=%s \n"), 0600))

	got, err := store.Load(driven.PromptExplain)

	require.NoError(t, err)
	assert.Equal(t, "Q=%s E=%s", got)
}

func TestPromptStore_Load_FallsBackWhenDeleted(t *testing.T) {
	store, dir := newTestPromptStore(t)
	_, err := store.Load(driven.PromptExplain)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "explain.txt")))
	store.Reload()

	got, err := store.Load(driven.PromptExplain)

	require.NoError(t, err)
	assert.Equal(t, testExplain, got)
}

func TestPromptStore_Load_Unknown(t *testing.T) {
	store, _ := newTestPromptStore(t)

	_, err := store.Load("nope")

	assert.Error(t, err)
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newTestPromptStore(t)
	path := filepath.Join(dir, "explain.txt")

	first, err := store.Load(driven.PromptExplain)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("edited %s %s"), 0600))
	cached, err := store.Load(driven.PromptExplain)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	fresh, err := store.Load(driven.PromptExplain)
	require.NoError(t, err)
	assert.Equal(t, "edited %s %s", fresh)
}

func TestPromptStore_DoesNotOverwriteExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "explain.txt")
	require.NoError(t, os.WriteFile(path, []byte("mine %s %s"), 0600))

	store, err := NewPromptStore(dir, WithDefaultPrompt(driven.PromptExplain, testExplain))
	require.NoError(t, err)
	got, err := store.Load(driven.PromptExplain)

	require.NoError(t, err)
	assert.Equal(t, "mine %s %s", got)
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, _ := newTestPromptStore(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := store.Load(driven.PromptExplain)
			assert.NoError(t, err)
			assert.Equal(t, testExplain, got)
		}()
	}
	wg.Wait()
}
