package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "claude-3-5-sonnet"))
	val, ok := store.Get("llm.model")
	assert.True(t, ok)
	assert.Equal(t, "claude-3-5-sonnet", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_Seeded(t *testing.T) {
	seed := map[string]any{"pipeline.chunk_size": 500}
	store := NewConfigStoreWith(seed)
	seed["pipeline.chunk_size"] = 1

	assert.Equal(t, 500, store.GetInt("pipeline.chunk_size"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStoreWith(map[string]any{
		"s":       "text",
		"i":       42,
		"i64":     int64(7),
		"f":       0.25,
		"b":       true,
		"strings": []string{"a", "b"},
		"anys":    []any{"x", 1, "y"},
	})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("s"), "text"},
		{"string wrong type", store.GetString("i"), ""},
		{"int", store.GetInt("i"), 42},
		{"int from int64", store.GetInt("i64"), 7},
		{"int from float", store.GetInt("f"), 0},
		{"int missing", store.GetInt("missing"), 0},
		{"float", store.GetFloat("f"), 0.25},
		{"float from int", store.GetFloat("i"), 42.0},
		{"float wrong type", store.GetFloat("s"), 0.0},
		{"bool", store.GetBool("b"), true},
		{"bool wrong type", store.GetBool("s"), false},
		{"slice", store.GetStringSlice("strings"), []string{"a", "b"}},
		{"slice from any", store.GetStringSlice("anys"), []string{"x", "y"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
	assert.Nil(t, store.GetStringSlice("s"))
}

func TestConfigStore_PersistenceNoOps(t *testing.T) {
	store := NewConfigStore()
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrent(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", n)
			_ = store.Set(key, n)
			assert.Equal(t, n, store.GetInt(key))
		}(i)
	}
	wg.Wait()
}
