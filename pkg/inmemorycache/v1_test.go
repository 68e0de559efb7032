package inmemorycache

import (
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetCacheInstance resets the global cache instance for testing
func resetCacheInstance() {
	instance = nil
	once = sync.Once{}
}

func setupTestEnv(t *testing.T) func() {
	viper.Reset()
	viper.Set(inMemoryCacheSizeInBytes, 10*1024*1024)
	viper.Set(appGCPercentage, 100)
	return func() {
		viper.Reset()
		resetCacheInstance()
	}
}

func TestInitV1(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()

	t.Run("initializes and returns a usable cache", func(t *testing.T) {
		resetCacheInstance()
		InitV1()

		cache := Instance()
		require.NotNil(t, cache)

		key := []byte("user-101")
		value := []byte("payload")
		require.NoError(t, cache.Set(key, value))

		got, err := cache.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("repeated Init keeps the first instance", func(t *testing.T) {
		resetCacheInstance()
		InitV1()
		first := Instance()
		Init(1)
		assert.Same(t, first, Instance())
	})
}

func TestV1DeleteAndExpiry(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()
	resetCacheInstance()
	InitV1()
	cache := Instance()

	t.Run("delete removes the key", func(t *testing.T) {
		key := []byte("to-delete")
		require.NoError(t, cache.Set(key, []byte("v")))
		assert.True(t, cache.Delete(key))
		_, err := cache.Get(key)
		assert.Error(t, err)
	})

	t.Run("delete of missing key returns false", func(t *testing.T) {
		assert.False(t, cache.Delete([]byte("never-set")))
	})

	t.Run("setex stores the value", func(t *testing.T) {
		key := []byte("with-ttl")
		require.NoError(t, cache.SetEx(key, []byte("v"), 60))
		got, err := cache.Get(key)
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), got)
	})
}

func TestSetMockInstance(t *testing.T) {
	cleanup := setupTestEnv(t)
	defer cleanup()
	resetCacheInstance()

	mock := &MockInMemoryCache{}
	SetMockInstance(mock)
	assert.Same(t, InMemoryCache(mock), Instance())
}
