package vector

import (
	"github.com/stretchr/testify/mock"

	"github.com/myshop/affinity/internal/engine"
)

var _ Database = (*MockDatabase)(nil)

type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) EnsureSpace(space string, dimension int) error {
	args := m.Called(space, dimension)
	return args.Error(0)
}

func (m *MockDatabase) Upsert(space string, embedding *engine.EntityEmbedding) error {
	args := m.Called(space, embedding)
	return args.Error(0)
}

func (m *MockDatabase) Delete(space string, entityId string) error {
	args := m.Called(space, entityId)
	return args.Error(0)
}

func (m *MockDatabase) FindSimilar(space string, queryVector []float32, limit int) ([]Match, error) {
	args := m.Called(space, queryVector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Match), args.Error(1)
}
