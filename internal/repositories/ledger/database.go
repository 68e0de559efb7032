package ledger

const (
	InsertQuery = "INSERT INTO %s.%s (message_id, applied_at) VALUES (?, ?) USING TTL ?"
	ExistsQuery = "SELECT message_id FROM %s.%s WHERE message_id = ?"
)

// Ledger records which message ids have already been applied to an
// embedding. The channel delivers at least once; the ledger is what turns
// redelivery into a no-op.
type Ledger interface {
	IsApplied(messageId string) (bool, error)
	MarkApplied(messageId string) error
}
