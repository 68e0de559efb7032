package embeddingstore

import (
	"github.com/stretchr/testify/mock"

	"github.com/myshop/affinity/internal/engine"
)

var _ Store = (*MockStore)(nil)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Find(entityId string) (*engine.EntityEmbedding, error) {
	args := m.Called(entityId)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*engine.EntityEmbedding), args.Error(1)
}

func (m *MockStore) Save(embedding *engine.EntityEmbedding) (bool, error) {
	args := m.Called(embedding)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) Delete(entityId string) error {
	args := m.Called(entityId)
	return args.Error(0)
}

func (m *MockStore) FindStale(maxAgeDays int, limit int) ([]*engine.EntityEmbedding, error) {
	args := m.Called(maxAgeDays, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*engine.EntityEmbedding), args.Error(1)
}
