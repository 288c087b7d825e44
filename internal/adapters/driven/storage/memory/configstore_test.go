package memory

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("scan.root", "/media"))
	require.NoError(t, store.Set("scan.workers", int64(6)))
	require.NoError(t, store.Set("archive.max_size_gb", 2))
	require.NoError(t, store.Set("explainer.enabled", true))
	require.NoError(t, store.Set("scan.extensions", []any{"mp4", 3, "mkv"}))

	assert.Equal(t, "/media", store.GetString("scan.root"))
	assert.Equal(t, 6, store.GetInt("scan.workers"))
	assert.Equal(t, 2.0, store.GetFloat("archive.max_size_gb"))
	assert.True(t, store.GetBool("explainer.enabled"))
	assert.Equal(t, []string{"mp4", "mkv"}, store.GetStringSlice("scan.extensions"))
}

func TestConfigStore_GetDuration(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  time.Duration
	}{
		{"string", "1m30s", 90 * time.Second},
		{"int seconds", 5, 5 * time.Second},
		{"int64 seconds", int64(7), 7 * time.Second},
		{"float seconds", 0.5, 500 * time.Millisecond},
		{"duration", 3 * time.Second, 3 * time.Second},
		{"invalid", "later", 0},
		{"wrong type", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfigStore()
			require.NoError(t, store.Set("explainer.timeout", tt.value))
			assert.Equal(t, tt.want, store.GetDuration("explainer.timeout"))
		})
	}
}

func TestConfigStore_Missing(t *testing.T) {
	store := NewConfigStore()

	_, ok := store.Get("x")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("x"))
	assert.Zero(t, store.GetInt("x"))
	assert.Zero(t, store.GetFloat("x"))
	assert.Zero(t, store.GetDuration("x"))
	assert.False(t, store.GetBool("x"))
	assert.Nil(t, store.GetStringSlice("x"))
}

func TestConfigStore_NoOpPersistence(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("scan.workers", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("scan.workers")
		}()
	}
	wg.Wait()
}

func TestConfigStore_SeedAndSnapshot(t *testing.T) {
	seed := map[string]any{"scan.root": "/media", "scan.workers": 2}
	store := NewConfigStore(seed)

	assert.Equal(t, "/media", store.GetString("scan.root"))
	require.NoError(t, store.Set("scan.workers", 8))
	assert.Equal(t, 2, seed["scan.workers"], "seed is copied")

	snap := store.Snapshot()
	assert.Equal(t, 8, snap["scan.workers"])
	snap["scan.root"] = "/other"
	assert.Equal(t, "/media", store.GetString("scan.root"))
}
