package publisher

import (
	"time"

	"github.com/myshop/affinity/internal/events"
)

const (
	HeaderMessageId      = "message_id"
	HeaderEventType      = "event_type"
	HeaderFailureReason  = "failure_reason"
	HeaderAttemptCount   = "attempt_count"
	HeaderRedeliverAfter = "redeliver_after"
)

// Publisher puts captured events on the interaction channel. Delivery is
// at least once; consumers dedupe by message id.
type Publisher interface {
	// Publish reports whether the event was handed to the channel. A false
	// return leaves the event unprocessed in the log for later replay.
	Publish(event *events.InteractionEvent) bool
	// PublishBatch publishes each event independently and splits the batch
	// into delivered and undelivered events.
	PublishBatch(batch []*events.InteractionEvent) (published []*events.InteractionEvent, failed []*events.InteractionEvent)
	// PublishWithDelay republishes with a redeliver-after header so
	// consumers can park the event until the deadline passes.
	PublishWithDelay(event *events.InteractionEvent, delay time.Duration) bool
	// DeadLetter parks an event that exhausted processing attempts.
	DeadLetter(event *events.InteractionEvent, reason string, attempts int) error
}
