package circuitbreaker

import (
	"github.com/stretchr/testify/mock"
)

var (
	_ CircuitBreaker[any, any] = (*MockCircuitBreaker[any, any])(nil)
)

// MockCircuitBreaker is a mock implementation of the CircuitBreaker interface.
type MockCircuitBreaker[Request any, Response any] struct {
	mock.Mock
}

func (m *MockCircuitBreaker[Request, Response]) Execute(request Request, task func(Request) (Response, error)) (Response, error) {
	args := m.Called(request, task)
	var res Response
	if args.Get(0) == nil {
		return res, args.Error(1)
	} else if val, ok := args.Get(0).(Response); ok {
		res = val
	}
	return res, args.Error(1)
}
