package publisher

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/myshop/affinity/internal/events"
)

type MockPublisher struct {
	mock.Mock
}

var _ Publisher = (*MockPublisher)(nil)

func (m *MockPublisher) Publish(event *events.InteractionEvent) bool {
	args := m.Called(event)
	return args.Bool(0)
}

func (m *MockPublisher) PublishBatch(batch []*events.InteractionEvent) ([]*events.InteractionEvent, []*events.InteractionEvent) {
	args := m.Called(batch)
	return args.Get(0).([]*events.InteractionEvent), args.Get(1).([]*events.InteractionEvent)
}

func (m *MockPublisher) PublishWithDelay(event *events.InteractionEvent, delay time.Duration) bool {
	args := m.Called(event, delay)
	return args.Bool(0)
}

func (m *MockPublisher) DeadLetter(event *events.InteractionEvent, reason string, attempts int) error {
	args := m.Called(event, reason, attempts)
	return args.Error(0)
}
