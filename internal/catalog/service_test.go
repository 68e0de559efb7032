package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop/affinity/internal/embedder"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/vector"
)

func newTestCatalog(t *testing.T) (Service, *embeddingstore.MemoryStore, *vector.Memory) {
	t.Helper()
	store := embeddingstore.NewMemoryStore()
	index := vector.NewMemory()
	return NewService(embedder.NewLocalEmbedder(8), store, index, 3), store, index
}

func TestCreateEmbeddingWritesStoreAndIndex(t *testing.T) {
	svc, store, index := newTestCatalog(t)

	require.NoError(t, svc.CreateEmbedding(context.Background(), 42, "trail running shoes"))

	stored, err := store.Find(embeddingstore.ProductEntityId(42))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, int64(1), stored.Version)

	matches, err := index.FindSimilar(vector.ProductSpace, stored.Vector, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, embeddingstore.ProductEntityId(42), matches[0].EntityId)
}

func TestUpdateEmbeddingReplacesVector(t *testing.T) {
	svc, store, _ := newTestCatalog(t)

	require.NoError(t, svc.CreateEmbedding(context.Background(), 42, "trail running shoes"))
	before, err := store.Find(embeddingstore.ProductEntityId(42))
	require.NoError(t, err)

	require.NoError(t, svc.UpdateEmbedding(context.Background(), 42, "waterproof hiking boots"))
	after, err := store.Find(embeddingstore.ProductEntityId(42))
	require.NoError(t, err)

	assert.NotEqual(t, before.Vector, after.Vector)
	assert.Equal(t, before.Version+1, after.Version)
}

func TestDeleteEmbeddingRemovesBoth(t *testing.T) {
	svc, store, index := newTestCatalog(t)

	require.NoError(t, svc.CreateEmbedding(context.Background(), 42, "trail running shoes"))
	stored, err := store.Find(embeddingstore.ProductEntityId(42))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmbedding(context.Background(), 42))

	gone, err := store.Find(embeddingstore.ProductEntityId(42))
	require.NoError(t, err)
	assert.Nil(t, gone)

	matches, err := index.FindSimilar(vector.ProductSpace, stored.Vector, 1)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestCatalogWithoutEmbedder(t *testing.T) {
	store := embeddingstore.NewMemoryStore()
	index := vector.NewMemory()
	svc := NewService(nil, store, index, 3)

	err := svc.CreateEmbedding(context.Background(), 42, "trail running shoes")
	assert.ErrorIs(t, err, ErrEmbedderDisabled)
}
