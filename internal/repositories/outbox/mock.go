package outbox

import (
	"github.com/stretchr/testify/mock"

	"github.com/myshop/affinity/internal/events"
)

type MockRepository struct {
	mock.Mock
}

var _ Repository = (*MockRepository)(nil)

func (m *MockRepository) Append(event *events.InteractionEvent, processedToQueue bool) error {
	args := m.Called(event, processedToQueue)
	return args.Error(0)
}

func (m *MockRepository) MarkProcessed(messageId string) error {
	args := m.Called(messageId)
	return args.Error(0)
}

func (m *MockRepository) FindUnprocessed(limit int) ([]*events.InteractionEvent, error) {
	args := m.Called(limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*events.InteractionEvent), args.Error(1)
}
