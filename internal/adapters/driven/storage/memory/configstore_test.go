package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repotree/internal/core/ports/driven"
)

func TestNewConfigStore_Seeded(t *testing.T) {
	seed := map[string]any{"url": "https://gitlab.example.com"}
	store := NewConfigStore(seed)
	seed["url"] = "changed"

	assert.Equal(t, "https://gitlab.example.com", store.GetString("url"))
}

func TestConfigStore_Set_Update(t *testing.T) {
	store := NewConfigStore(nil)

	require.NoError(t, store.Set("key1", "original"))
	require.NoError(t, store.Set("key1", "updated"))

	val, ok := store.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "updated", val)
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store := NewConfigStore(nil)

	val, ok := store.Get("missing")
	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"str":       "value",
		"int":       42,
		"int64":     int64(7),
		"float":     1.5,
		"bool":      true,
		"strings":   []string{"a", "b"},
		"anys":      []any{"x", 1, "y"},
		"wrongType": struct{}{},
	})

	assert.Equal(t, "value", store.GetString("str"))
	assert.Equal(t, "", store.GetString("int"))

	assert.Equal(t, 42, store.GetInt("int"))
	assert.Equal(t, 7, store.GetInt("int64"))
	assert.Equal(t, 1, store.GetInt("float"))
	assert.Equal(t, 0, store.GetInt("wrongType"))

	assert.InDelta(t, 1.5, store.GetFloat("float"), 0)
	assert.InDelta(t, 42.0, store.GetFloat("int"), 0)
	assert.InDelta(t, 7.0, store.GetFloat("int64"), 0)
	assert.InDelta(t, 0.0, store.GetFloat("str"), 0)

	assert.True(t, store.GetBool("bool"))
	assert.False(t, store.GetBool("str"))

	assert.Equal(t, []string{"a", "b"}, store.GetStringSlice("strings"))
	assert.Equal(t, []string{"x", "y"}, store.GetStringSlice("anys"))
	assert.Nil(t, store.GetStringSlice("str"))
}

func TestConfigStore_SaveLoadNoOp(t *testing.T) {
	store := NewConfigStore(map[string]any{"k": "v"})

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, "v", store.GetString("k"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency_ReadWriteMix(t *testing.T) {
	store := NewConfigStore(nil)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}

func TestConfigStore_InterfaceCompliance(t *testing.T) {
	var store driven.ConfigStore = NewConfigStore(nil)
	require.NoError(t, store.Set("api.concurrency", 8))
	assert.Equal(t, 8, store.GetInt("api.concurrency"))
}

func TestConfigStore_KeysAndDelete(t *testing.T) {
	store := NewConfigStore(map[string]any{"url": "u", "api.concurrency": 4})

	assert.Equal(t, []string{"api.concurrency", "url"}, store.Keys())

	require.NoError(t, store.Delete("url"))
	require.NoError(t, store.Delete("missing"))
	assert.Equal(t, []string{"api.concurrency"}, store.Keys())
}
