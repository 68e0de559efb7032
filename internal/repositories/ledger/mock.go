package ledger

import (
	"github.com/stretchr/testify/mock"
)

type MockLedger struct {
	mock.Mock
}

var _ Ledger = (*MockLedger)(nil)

func (m *MockLedger) IsApplied(messageId string) (bool, error) {
	args := m.Called(messageId)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) MarkApplied(messageId string) error {
	args := m.Called(messageId)
	return args.Error(0)
}
