package engine

import (
	"fmt"
	"time"
)

// DimensionMismatchError indicates the event vector length does not match
// the deployment dimension. This is a config error between the embedding
// provider and the store, never retried.
type DimensionMismatchError struct {
	Expected int
	Got      int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Got)
}

// EntityEmbedding is the per-entity vector state. It is owned by the vector
// store; the engine only ever computes replacement values, conditionally
// committed on Version.
type EntityEmbedding struct {
	EntityId      string    `json:"entity_id"`
	Vector        []float32 `json:"vector"`
	EventCount    int64     `json:"event_count"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	Version       int64     `json:"version"`
}

// Clone returns a deep copy, so callers can hand embeddings across goroutines
// without aliasing the vector slice.
func (e *EntityEmbedding) Clone() *EntityEmbedding {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Vector = make([]float32, len(e.Vector))
	copy(clone.Vector, e.Vector)
	return &clone
}
