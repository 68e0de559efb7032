package engine

import (
	"math"
	"time"
)

// Engine folds interaction event vectors into entity embeddings using a
// weighted temporal-decay average. It performs no I/O: callers read the
// current state from the vector store, call Update and commit the result
// with a version-checked write.
type Engine struct {
	dimension int
	decay     DecayFunc
}

func NewEngine(dimension int, decay DecayFunc) *Engine {
	if decay == nil {
		decay = NoDecay
	}
	return &Engine{
		dimension: dimension,
		decay:     decay,
	}
}

func (e *Engine) Dimension() int {
	return e.dimension
}

// Update computes the replacement embedding for an entity given an event
// vector and its weight. A nil current means first qualifying event: the
// embedding starts as the event vector itself. Otherwise each dimension is
// the decay-weighted average of the stored value and the event value:
//
//	new[i] = (current[i]*decay + event[i]*weight) / (decay + weight)
//
// The returned embedding carries the read version; the vector store is
// responsible for bumping it on commit.
func (e *Engine) Update(current *EntityEmbedding, entityId string, eventVector []float32, weight float64, occurredAt time.Time) (*EntityEmbedding, error) {
	if len(eventVector) != e.dimension {
		return nil, &DimensionMismatchError{Expected: e.dimension, Got: len(eventVector)}
	}
	if current == nil {
		vector := make([]float32, e.dimension)
		copy(vector, eventVector)
		return &EntityEmbedding{
			EntityId:      entityId,
			Vector:        vector,
			EventCount:    1,
			LastUpdatedAt: occurredAt,
			Version:       0,
		}, nil
	}
	if len(current.Vector) != e.dimension {
		return nil, &DimensionMismatchError{Expected: e.dimension, Got: len(current.Vector)}
	}

	decay := e.decay(occurredAt.Sub(current.LastUpdatedAt))
	denominator := decay + weight
	vector := make([]float32, e.dimension)
	for i := 0; i < e.dimension; i++ {
		vector[i] = float32((float64(current.Vector[i])*decay + float64(eventVector[i])*weight) / denominator)
	}
	return &EntityEmbedding{
		EntityId:      current.EntityId,
		Vector:        vector,
		EventCount:    current.EventCount + 1,
		LastUpdatedAt: occurredAt,
		Version:       current.Version,
	}, nil
}

// CosineSimilarity returns the cosine of the angle between two vectors,
// 0 when either vector has zero magnitude.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
