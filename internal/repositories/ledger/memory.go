package ledger

import (
	"sync"
	"time"
)

// MemoryLedger keeps applied message ids in process memory with the same
// ttl behavior as the scylla ledger.
type MemoryLedger struct {
	mutex   sync.RWMutex
	applied map[string]time.Time
	ttl     time.Duration
	nowFunc func() time.Time
}

func NewMemoryLedger(ttlInSec int) *MemoryLedger {
	return &MemoryLedger{
		applied: make(map[string]time.Time),
		ttl:     time.Duration(ttlInSec) * time.Second,
		nowFunc: time.Now,
	}
}

func (m *MemoryLedger) IsApplied(messageId string) (bool, error) {
	m.mutex.RLock()
	expiry, exists := m.applied[messageId]
	m.mutex.RUnlock()
	if !exists {
		return false, nil
	}
	if m.nowFunc().After(expiry) {
		m.mutex.Lock()
		delete(m.applied, messageId)
		m.mutex.Unlock()
		return false, nil
	}
	return true, nil
}

func (m *MemoryLedger) MarkApplied(messageId string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.applied[messageId] = m.nowFunc().Add(m.ttl)
	return nil
}
