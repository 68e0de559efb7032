package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeSearch
	EventTypeProductView
	EventTypeProductClick
	EventTypeProductPurchase
)

var (
	eventTypeName = map[uint8]string{
		0: "unknown",
		1: "search",
		2: "product_view",
		3: "product_click",
		4: "product_purchase",
	}

	eventTypeValue = map[string]EventType{
		"unknown":          EventTypeUnknown,
		"search":           EventTypeSearch,
		"product_view":     EventTypeProductView,
		"product_click":    EventTypeProductClick,
		"product_purchase": EventTypeProductPurchase,
	}

	// eventTypeWeight controls how far an event pulls the entity vector
	// toward the event's semantic content. Higher intent, higher weight.
	eventTypeWeight = map[EventType]float64{
		EventTypeProductView:     0.3,
		EventTypeProductClick:    0.5,
		EventTypeSearch:          0.7,
		EventTypeProductPurchase: 1.0,
	}
)

// String allows EventType to implement fmt.Stringer
func (e EventType) String() string {
	return eventTypeName[uint8(e)]
}

// EnumIndex returns the integer representation of the EventType.
func (e EventType) EnumIndex() uint8 {
	return uint8(e)
}

// Weight returns the update weight for the event type, 0 for unknown.
func (e EventType) Weight() float64 {
	return eventTypeWeight[e]
}

// RequiresProduct reports whether the event type carries a product reference.
func (e EventType) RequiresProduct() bool {
	switch e {
	case EventTypeProductView, EventTypeProductClick, EventTypeProductPurchase:
		return true
	}
	return false
}

// MarshalJSON marshals the enum as a quoted json string
func (e EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

// UnmarshalJSON unmarshals a quoted json string to the enum value
func (e *EventType) UnmarshalJSON(data []byte) (err error) {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseEventType(value)
	if err != nil {
		return err
	}
	*e = parsed
	return nil
}

// ParseEventType parses a string to the EventType enum
func ParseEventType(value string) (EventType, error) {
	if eventType, ok := eventTypeValue[strings.ToLower(strings.TrimSpace(value))]; ok {
		return eventType, nil
	}
	return EventTypeUnknown, fmt.Errorf("invalid event type: %s", value)
}
