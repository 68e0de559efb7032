package outbox

import (
	"github.com/myshop/affinity/internal/events"
)

const (
	InsertQuery        = "INSERT INTO %s.%s (message_id, user_id, event_type, payload, processed_to_queue, occurred_at) VALUES (?, ?, ?, ?, ?, ?) IF NOT EXISTS"
	MarkProcessedQuery = "UPDATE %s.%s SET processed_to_queue = true WHERE message_id = ?"
	UnprocessedQuery   = "SELECT payload FROM %s.%s WHERE processed_to_queue = false LIMIT ? ALLOW FILTERING"
)

// Repository is the append-only event log. Events are written here before
// any publish attempt; processed_to_queue flips only after a confirmed ack,
// so unprocessed rows are always safe to replay.
type Repository interface {
	Append(event *events.InteractionEvent, processedToQueue bool) error
	MarkProcessed(messageId string) error
	FindUnprocessed(limit int) ([]*events.InteractionEvent, error)
}
