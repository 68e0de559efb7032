package vector

import (
	"sync"

	"github.com/myshop/affinity/internal/engine"
)

// Memory is a process-local similarity index with the same ranking contract
// as the qdrant implementation. Used in tests and local single-node runs.
type Memory struct {
	mu     sync.RWMutex
	spaces map[string]map[string]*engine.EntityEmbedding
}

var _ Database = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		spaces: make(map[string]map[string]*engine.EntityEmbedding),
	}
}

func (m *Memory) EnsureSpace(space string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spaces[space]; !ok {
		m.spaces[space] = make(map[string]*engine.EntityEmbedding)
	}
	return nil
}

func (m *Memory) Upsert(space string, embedding *engine.EntityEmbedding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.spaces[space]; !ok {
		m.spaces[space] = make(map[string]*engine.EntityEmbedding)
	}
	m.spaces[space][embedding.EntityId] = embedding.Clone()
	return nil
}

func (m *Memory) Delete(space string, entityId string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entities, ok := m.spaces[space]; ok {
		delete(entities, entityId)
	}
	return nil
}

func (m *Memory) FindSimilar(space string, queryVector []float32, limit int) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	matches := make([]Match, 0)
	for _, embedding := range m.spaces[space] {
		matches = append(matches, Match{
			EntityId:      embedding.EntityId,
			Score:         engine.CosineSimilarity(queryVector, embedding.Vector),
			LastUpdatedAt: embedding.LastUpdatedAt,
		})
	}
	SortMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
