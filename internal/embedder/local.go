package embedder

import (
	"context"
	"math"

	"github.com/cespare/xxhash/v2"
)

// LocalEmbedder derives a deterministic unit vector from the text hash.
// It carries no semantics and exists for local mode and tests, where only
// determinism and dimension matter.
type LocalEmbedder struct {
	dimension int
}

func NewLocalEmbedder(dimension int) *LocalEmbedder {
	return &LocalEmbedder{dimension: dimension}
}

func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	vector := make([]float32, e.dimension)
	seed := xxhash.Sum64String(text)
	var norm float64
	for i := range vector {
		seed = seed*6364136223846793005 + 1442695040888963407
		value := float64(int64(seed>>11))/float64(1<<52) - 1
		vector[i] = float32(value)
		norm += value * value
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}
	return vector, nil
}
