package outbox

import (
	"sort"
	"sync"

	"github.com/myshop/affinity/internal/events"
)

type memoryRow struct {
	event     *events.InteractionEvent
	processed bool
	sequence  int64
}

// MemoryLog keeps the event log in process memory. It honors the same
// conditional insert semantics as the scylla log.
type MemoryLog struct {
	mutex    sync.RWMutex
	rows     map[string]*memoryRow
	sequence int64
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{rows: make(map[string]*memoryRow)}
}

func (m *MemoryLog) Append(event *events.InteractionEvent, processedToQueue bool) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.rows[event.MessageId]; exists {
		return nil
	}
	m.sequence++
	m.rows[event.MessageId] = &memoryRow{
		event:     event,
		processed: processedToQueue,
		sequence:  m.sequence,
	}
	return nil
}

func (m *MemoryLog) MarkProcessed(messageId string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if row, exists := m.rows[messageId]; exists {
		row.processed = true
	}
	return nil
}

func (m *MemoryLog) FindUnprocessed(limit int) ([]*events.InteractionEvent, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	unprocessed := make([]*events.InteractionEvent, 0)
	pending := make([]*memoryRow, 0)
	for _, row := range m.rows {
		if !row.processed {
			pending = append(pending, row)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].sequence < pending[j].sequence
	})
	for _, row := range pending {
		if len(unprocessed) >= limit {
			break
		}
		unprocessed = append(unprocessed, row.event)
	}
	return unprocessed, nil
}
