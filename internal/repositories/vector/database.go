package vector

import (
	"time"

	"github.com/myshop/affinity/internal/engine"
)

const (
	UserSpace    = "user_embeddings"
	ProductSpace = "product_embeddings"

	PayloadEntityId      = "entity_id"
	PayloadLastUpdatedAt = "last_updated_at"
)

// Match is one similarity result. Callers receive ranked entity ids plus
// scores, never raw vectors.
type Match struct {
	EntityId      string    `json:"entity_id"`
	Score         float64   `json:"score"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// Database is the similarity index over entity embeddings. It is a derived
// view of the embedding store: the store commits first, the index follows.
type Database interface {
	EnsureSpace(space string, dimension int) error
	Upsert(space string, embedding *engine.EntityEmbedding) error
	Delete(space string, entityId string) error
	FindSimilar(space string, queryVector []float32, limit int) ([]Match, error)
}
