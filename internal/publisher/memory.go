package publisher

import (
	"sync"
	"time"

	"github.com/myshop/affinity/internal/events"
)

type DeadLetteredEvent struct {
	Event    *events.InteractionEvent
	Reason   string
	Attempts int
}

// MemoryPublisher records published events in memory. FailNext makes the
// next n publish attempts fail, for exercising replay paths.
type MemoryPublisher struct {
	mutex        sync.Mutex
	Published    []*events.InteractionEvent
	DeadLettered []DeadLetteredEvent
	failures     int
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (m *MemoryPublisher) FailNext(n int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.failures = n
}

func (m *MemoryPublisher) Publish(event *events.InteractionEvent) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.failures > 0 {
		m.failures--
		return false
	}
	m.Published = append(m.Published, event)
	return true
}

func (m *MemoryPublisher) PublishBatch(batch []*events.InteractionEvent) ([]*events.InteractionEvent, []*events.InteractionEvent) {
	published := make([]*events.InteractionEvent, 0, len(batch))
	failed := make([]*events.InteractionEvent, 0)
	for _, event := range batch {
		if m.Publish(event) {
			published = append(published, event)
		} else {
			failed = append(failed, event)
		}
	}
	return published, failed
}

func (m *MemoryPublisher) PublishWithDelay(event *events.InteractionEvent, delay time.Duration) bool {
	return m.Publish(event)
}

func (m *MemoryPublisher) DeadLetter(event *events.InteractionEvent, reason string, attempts int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.DeadLettered = append(m.DeadLettered, DeadLetteredEvent{Event: event, Reason: reason, Attempts: attempts})
	return nil
}
