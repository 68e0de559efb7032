package embedder

import (
	"context"
)

// Embedder turns free text into a semantic vector. Search phrases and
// product descriptions go through the same provider so their vectors live
// in one space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
