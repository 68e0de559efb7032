package embedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalEmbedderIsDeterministic(t *testing.T) {
	local := NewLocalEmbedder(8)

	first, err := local.Embed(context.Background(), "running shoes")
	require.NoError(t, err)
	second, err := local.Embed(context.Background(), "running shoes")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 8)
}

func TestLocalEmbedderDistinctTextsDiffer(t *testing.T) {
	local := NewLocalEmbedder(8)

	shoes, err := local.Embed(context.Background(), "running shoes")
	require.NoError(t, err)
	laptop, err := local.Embed(context.Background(), "gaming laptop")
	require.NoError(t, err)

	assert.NotEqual(t, shoes, laptop)
}

func TestLocalEmbedderReturnsUnitVector(t *testing.T) {
	local := NewLocalEmbedder(16)

	vector, err := local.Embed(context.Background(), "wireless headphones")
	require.NoError(t, err)

	var norm float64
	for _, value := range vector {
		norm += float64(value) * float64(value)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}

func TestLocalEmbedderRejectsEmptyText(t *testing.T) {
	local := NewLocalEmbedder(8)

	_, err := local.Embed(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyText)
}
