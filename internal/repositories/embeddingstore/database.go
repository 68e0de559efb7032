package embeddingstore

import (
	"github.com/myshop/affinity/internal/engine"
)

const (
	EntityId      = "entity_id"
	Vector        = "vector"
	EventCount    = "event_count"
	LastUpdatedAt = "last_updated_at"
	Version       = "version"

	RetrieveQuery    = "SELECT entity_id, vector, event_count, last_updated_at, version FROM %s.%s WHERE entity_id = ?"
	InsertQuery      = "INSERT INTO %s.%s (entity_id, vector, event_count, last_updated_at, version) VALUES (?, ?, ?, ?, ?) IF NOT EXISTS"
	CasUpdateQuery   = "UPDATE %s.%s SET vector = ?, event_count = ?, last_updated_at = ?, version = ? WHERE entity_id = ? IF version = ?"
	DeleteQuery      = "DELETE FROM %s.%s WHERE entity_id = ?"
	StaleScanQuery   = "SELECT entity_id, vector, event_count, last_updated_at, version FROM %s.%s WHERE last_updated_at < ? LIMIT ? ALLOW FILTERING"
)

// Store is the record of truth for entity embeddings. Save is a conditional
// write: it commits only if the stored version still equals the version the
// caller read, and reports false on conflict so the caller can re-read,
// recompute and retry.
type Store interface {
	Find(entityId string) (*engine.EntityEmbedding, error)
	Save(embedding *engine.EntityEmbedding) (bool, error)
	Delete(entityId string) error
	FindStale(maxAgeDays int, limit int) ([]*engine.EntityEmbedding, error)
}
