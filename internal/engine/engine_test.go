package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var updateTime = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func TestEngine_Update_FirstEvent(t *testing.T) {
	e := NewEngine(3, NoDecay)
	eventVector := []float32{0.1, 0.2, 0.3}

	embedding, err := e.Update(nil, "user-1", eventVector, 1.0, updateTime)
	require.NoError(t, err)
	assert.Equal(t, "user-1", embedding.EntityId)
	assert.Equal(t, eventVector, embedding.Vector)
	assert.Equal(t, int64(1), embedding.EventCount)
	assert.Equal(t, updateTime, embedding.LastUpdatedAt)
	assert.Equal(t, int64(0), embedding.Version)

	// the engine must copy, not alias, the event vector
	eventVector[0] = 9
	assert.Equal(t, float32(0.1), embedding.Vector[0])
}

func TestEngine_Update_MeanWithUnitWeightAndNoDecay(t *testing.T) {
	e := NewEngine(3, NoDecay)
	current := &EntityEmbedding{
		EntityId:      "user-1",
		Vector:        []float32{1, 2, 3},
		EventCount:    4,
		LastUpdatedAt: updateTime.Add(-time.Hour),
		Version:       7,
	}

	updated, err := e.Update(current, "user-1", []float32{3, 4, 5}, 1.0, updateTime)
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 3, 4}, updated.Vector)
	assert.Equal(t, int64(5), updated.EventCount)
	assert.Equal(t, updateTime, updated.LastUpdatedAt)
	assert.Equal(t, int64(7), updated.Version, "engine carries the read version, the store bumps it")
}

func TestEngine_Update_WeightPullsTowardEvent(t *testing.T) {
	e := NewEngine(1, NoDecay)
	current := &EntityEmbedding{EntityId: "user-1", Vector: []float32{0}, EventCount: 1, LastUpdatedAt: updateTime}

	view, err := e.Update(current, "user-1", []float32{1}, 0.3, updateTime)
	require.NoError(t, err)
	purchase, err := e.Update(current, "user-1", []float32{1}, 1.0, updateTime)
	require.NoError(t, err)

	assert.InDelta(t, 0.3/1.3, float64(view.Vector[0]), 1e-6)
	assert.InDelta(t, 0.5, float64(purchase.Vector[0]), 1e-6)
	assert.Greater(t, purchase.Vector[0], view.Vector[0], "higher intent pulls further toward the event")
	assert.Less(t, view.Vector[0], float32(1), "update shifts toward, never onto, the event vector")
}

func TestEngine_Update_DimensionMismatch(t *testing.T) {
	e := NewEngine(3, NoDecay)
	current := &EntityEmbedding{
		EntityId:      "user-1",
		Vector:        []float32{1, 2, 3},
		EventCount:    1,
		LastUpdatedAt: updateTime,
	}

	updated, err := e.Update(current, "user-1", []float32{1, 2}, 1.0, updateTime)
	assert.Nil(t, updated)
	var mismatch *DimensionMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 3, mismatch.Expected)
	assert.Equal(t, 2, mismatch.Got)
	// current state is untouched
	assert.Equal(t, []float32{1, 2, 3}, current.Vector)
	assert.Equal(t, int64(1), current.EventCount)
}

func TestExponentialDecay(t *testing.T) {
	decay := NewExponentialDecay(time.Hour, 0.1)

	assert.Equal(t, 1.0, decay(0))
	assert.Equal(t, 1.0, decay(-time.Minute))
	assert.InDelta(t, 0.5, decay(time.Hour), 1e-9)
	assert.InDelta(t, 0.25, decay(2*time.Hour), 1e-9)
	assert.Equal(t, 0.1, decay(100*time.Hour), "decay never drops below the floor")
}

func TestNewDecay(t *testing.T) {
	t.Run("defaults to no decay", func(t *testing.T) {
		decay, err := NewDecay("", 0, 0)
		require.NoError(t, err)
		assert.Equal(t, 1.0, decay(365*24*time.Hour))
	})

	t.Run("exponential requires positive half life", func(t *testing.T) {
		_, err := NewDecay(DecayModeExponential, 0, 0.1)
		assert.Error(t, err)
	})

	t.Run("unknown mode is rejected", func(t *testing.T) {
		_, err := NewDecay("linear", time.Hour, 0.1)
		assert.Error(t, err)
	})
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2, 3}, []float32{2, 4, 6}), 1e-6)
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1}, []float32{1, 2}))
}

func TestEntityEmbedding_Clone(t *testing.T) {
	original := &EntityEmbedding{EntityId: "p-1", Vector: []float32{1, 2}, EventCount: 3, Version: 2}
	clone := original.Clone()
	clone.Vector[0] = 9
	assert.Equal(t, float32(1), original.Vector[0])

	var nilEmbedding *EntityEmbedding
	assert.Nil(t, nilEmbedding.Clone())
}
