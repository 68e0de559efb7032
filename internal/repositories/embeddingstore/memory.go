package embeddingstore

import (
	"sort"
	"sync"
	"time"

	"github.com/myshop/affinity/internal/engine"
)

// MemoryStore keeps embeddings in process memory with the same conditional
// write semantics as the scylla store. Used in tests and local single-node
// runs.
type MemoryStore struct {
	mu         sync.Mutex
	embeddings map[string]*engine.EntityEmbedding
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		embeddings: make(map[string]*engine.EntityEmbedding),
	}
}

func (m *MemoryStore) Find(entityId string) (*engine.EntityEmbedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embeddings[entityId].Clone(), nil
}

func (m *MemoryStore) Save(embedding *engine.EntityEmbedding) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, exists := m.embeddings[embedding.EntityId]
	if embedding.Version == 0 {
		if exists {
			return false, nil
		}
		committed := embedding.Clone()
		committed.Version = 1
		m.embeddings[committed.EntityId] = committed
		return true, nil
	}
	if !exists || stored.Version != embedding.Version {
		return false, nil
	}
	committed := embedding.Clone()
	committed.Version = embedding.Version + 1
	m.embeddings[committed.EntityId] = committed
	return true, nil
}

func (m *MemoryStore) Delete(entityId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.embeddings, entityId)
	return nil
}

func (m *MemoryStore) FindStale(maxAgeDays int, limit int) ([]*engine.EntityEmbedding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	stale := make([]*engine.EntityEmbedding, 0)
	for _, embedding := range m.embeddings {
		if embedding.LastUpdatedAt.Before(cutoff) {
			stale = append(stale, embedding.Clone())
		}
	}
	sort.Slice(stale, func(i, j int) bool {
		return stale[i].LastUpdatedAt.Before(stale[j].LastUpdatedAt)
	})
	if len(stale) > limit {
		stale = stale[:limit]
	}
	return stale, nil
}
