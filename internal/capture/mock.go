package capture

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/myshop/affinity/internal/events"
)

type MockService struct {
	mock.Mock
}

var _ Service = (*MockService)(nil)

func (m *MockService) Capture(ctx context.Context, userId string, eventType events.EventType, searchPhrase string, productId int64, occurredAt time.Time, metadata map[string]string) (*events.InteractionEvent, error) {
	args := m.Called(ctx, userId, eventType, searchPhrase, productId, occurredAt, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*events.InteractionEvent), args.Error(1)
}

func (m *MockService) CaptureBatch(ctx context.Context, requests []EventRequest) *BatchReport {
	args := m.Called(ctx, requests)
	return args.Get(0).(*BatchReport)
}

func (m *MockService) Replay(ctx context.Context, limit int) (*ReplayReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReplayReport), args.Error(1)
}
