package events

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// InvalidEventError is returned when an event fails construction-time
// validation. Invalid events must never reach the durable log.
type InvalidEventError struct {
	Reason string
}

func (e *InvalidEventError) Error() string {
	return "invalid event: " + e.Reason
}

func invalidEvent(format string, args ...any) error {
	return &InvalidEventError{Reason: fmt.Sprintf(format, args...)}
}

// sensitiveMetadataMarkers are matched against lowercased metadata keys.
// Matching entries are dropped at the capture boundary.
var sensitiveMetadataMarkers = []string{
	"password", "passwd", "secret", "token", "authorization", "credential", "api_key", "apikey",
}

// InteractionEvent is a single user action flowing through the pipeline.
// Events are append-only: once constructed and persisted they are never mutated.
type InteractionEvent struct {
	MessageId    string            `json:"message_id"`
	UserId       string            `json:"user_id"`
	EventType    EventType         `json:"event_type"`
	SearchPhrase string            `json:"search_phrase,omitempty"`
	ProductId    int64             `json:"product_id,omitempty"`
	OccurredAt   time.Time         `json:"occurred_at"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// NewInteractionEvent validates the inputs, scrubs metadata and assigns the
// deterministic message id. Exactly one of searchPhrase/productId must be
// populated, matching the event type.
func NewInteractionEvent(userId string, eventType EventType, searchPhrase string, productId int64, occurredAt time.Time, metadata map[string]string) (*InteractionEvent, error) {
	if strings.TrimSpace(userId) == "" {
		return nil, invalidEvent("user id is empty")
	}
	if occurredAt.IsZero() {
		return nil, invalidEvent("occurred at is not set")
	}
	switch {
	case eventType == EventTypeSearch:
		if strings.TrimSpace(searchPhrase) == "" {
			return nil, invalidEvent("search event requires a search phrase")
		}
		if productId != 0 {
			return nil, invalidEvent("search event must not carry a product id")
		}
	case eventType.RequiresProduct():
		if productId <= 0 {
			return nil, invalidEvent("%s event requires a positive product id, got %d", eventType, productId)
		}
		if searchPhrase != "" {
			return nil, invalidEvent("%s event must not carry a search phrase", eventType)
		}
	default:
		return nil, invalidEvent("unsupported event type %d", eventType.EnumIndex())
	}

	event := &InteractionEvent{
		UserId:       userId,
		EventType:    eventType,
		SearchPhrase: searchPhrase,
		ProductId:    productId,
		OccurredAt:   occurredAt,
		Metadata:     scrubMetadata(metadata),
	}
	event.MessageId = Fingerprint(userId, eventType, event.Reference(), occurredAt)
	return event, nil
}

// Reference returns the event's semantic reference: the search phrase for
// search events, the product id in string form otherwise.
func (e *InteractionEvent) Reference() string {
	if e.EventType == EventTypeSearch {
		return e.SearchPhrase
	}
	return strconv.FormatInt(e.ProductId, 10)
}

// Weight returns the update weight of the event's type.
func (e *InteractionEvent) Weight() float64 {
	return e.EventType.Weight()
}

// Validate re-checks an event decoded from the wire. Consumers call this
// before applying updates since producers outside this process are untrusted.
func (e *InteractionEvent) Validate() error {
	rebuilt, err := NewInteractionEvent(e.UserId, e.EventType, e.SearchPhrase, e.ProductId, e.OccurredAt, nil)
	if err != nil {
		return err
	}
	if len(e.MessageId) != fingerprintHexLen {
		return invalidEvent("message id must be %d hex chars, got %d", fingerprintHexLen, len(e.MessageId))
	}
	if e.MessageId != rebuilt.MessageId {
		return invalidEvent("message id does not match event fingerprint")
	}
	return nil
}

const fingerprintHexLen = 64

// Fingerprint computes the deterministic message id for a logical event.
// The same (userId, eventType, reference, occurredAt) tuple always yields
// the same id, which is what makes redelivery detectable downstream.
func Fingerprint(userId string, eventType EventType, reference string, occurredAt time.Time) string {
	payload := userId + "|" + eventType.String() + "|" + reference + "|" + occurredAt.UTC().Format(time.RFC3339Nano)
	digest := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(digest[:])
}

// scrubMetadata copies metadata, dropping credential-like keys.
func scrubMetadata(metadata map[string]string) map[string]string {
	if len(metadata) == 0 {
		return nil
	}
	scrubbed := make(map[string]string, len(metadata))
	for key, value := range metadata {
		lowered := strings.ToLower(key)
		sensitive := false
		for _, marker := range sensitiveMetadataMarkers {
			if strings.Contains(lowered, marker) {
				sensitive = true
				break
			}
		}
		if !sensitive {
			scrubbed[key] = value
		}
	}
	if len(scrubbed) == 0 {
		return nil
	}
	return scrubbed
}
