package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func TestNewInteractionEvent_MessageId(t *testing.T) {
	t.Run("message id is 64 hex chars", func(t *testing.T) {
		event, err := NewInteractionEvent("user-1", EventTypeProductPurchase, "", 42, eventTime, nil)
		require.NoError(t, err)
		assert.Len(t, event.MessageId, 64)
		assert.Regexp(t, "^[0-9a-f]{64}$", event.MessageId)
	})

	t.Run("identical tuples produce identical ids", func(t *testing.T) {
		first, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime, nil)
		require.NoError(t, err)
		second, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime, map[string]string{"source": "feed"})
		require.NoError(t, err)
		assert.Equal(t, first.MessageId, second.MessageId)
	})

	t.Run("changing any tuple element changes the id", func(t *testing.T) {
		base, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime, nil)
		require.NoError(t, err)

		otherUser, err := NewInteractionEvent("user-2", EventTypeProductView, "", 42, eventTime, nil)
		require.NoError(t, err)
		assert.NotEqual(t, base.MessageId, otherUser.MessageId)

		otherType, err := NewInteractionEvent("user-1", EventTypeProductClick, "", 42, eventTime, nil)
		require.NoError(t, err)
		assert.NotEqual(t, base.MessageId, otherType.MessageId)

		otherProduct, err := NewInteractionEvent("user-1", EventTypeProductView, "", 43, eventTime, nil)
		require.NoError(t, err)
		assert.NotEqual(t, base.MessageId, otherProduct.MessageId)

		otherTime, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime.Add(time.Second), nil)
		require.NoError(t, err)
		assert.NotEqual(t, base.MessageId, otherTime.MessageId)

		subSecond, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime.Add(500*time.Millisecond), nil)
		require.NoError(t, err)
		assert.NotEqual(t, base.MessageId, subSecond.MessageId)
	})

	t.Run("fingerprint is timezone independent", func(t *testing.T) {
		ist := time.FixedZone("IST", 5*3600+1800)
		event, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime.In(ist), nil)
		require.NoError(t, err)
		utcEvent, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime, nil)
		require.NoError(t, err)
		assert.Equal(t, utcEvent.MessageId, event.MessageId)
	})
}

func TestNewInteractionEvent_Validation(t *testing.T) {
	tests := []struct {
		name         string
		userId       string
		eventType    EventType
		searchPhrase string
		productId    int64
	}{
		{"search without phrase", "user-1", EventTypeSearch, "", 0},
		{"search with product id", "user-1", EventTypeSearch, "red shoes", 42},
		{"view without product id", "user-1", EventTypeProductView, "", 0},
		{"click with negative product id", "user-1", EventTypeProductClick, "", -1},
		{"purchase with search phrase", "user-1", EventTypeProductPurchase, "red shoes", 42},
		{"empty user id", "", EventTypeProductView, "", 42},
		{"unknown event type", "user-1", EventTypeUnknown, "", 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := NewInteractionEvent(tt.userId, tt.eventType, tt.searchPhrase, tt.productId, eventTime, nil)
			assert.Nil(t, event)
			var invalidErr *InvalidEventError
			assert.ErrorAs(t, err, &invalidErr)
		})
	}

	t.Run("zero occurred at is rejected", func(t *testing.T) {
		_, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, time.Time{}, nil)
		var invalidErr *InvalidEventError
		assert.ErrorAs(t, err, &invalidErr)
	})
}

func TestInteractionEvent_Reference(t *testing.T) {
	search, err := NewInteractionEvent("user-1", EventTypeSearch, "wireless earphones", 0, eventTime, nil)
	require.NoError(t, err)
	assert.Equal(t, "wireless earphones", search.Reference())

	purchase, err := NewInteractionEvent("user-1", EventTypeProductPurchase, "", 77, eventTime, nil)
	require.NoError(t, err)
	assert.Equal(t, "77", purchase.Reference())
}

func TestInteractionEvent_MetadataScrubbing(t *testing.T) {
	event, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime, map[string]string{
		"source":        "feed",
		"session_token": "abc",
		"API_KEY":       "xyz",
		"UserPassword":  "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"source": "feed"}, event.Metadata)

	onlySensitive, err := NewInteractionEvent("user-1", EventTypeProductView, "", 42, eventTime, map[string]string{
		"authorization": "Bearer abc",
	})
	require.NoError(t, err)
	assert.Nil(t, onlySensitive.Metadata)
}

func TestInteractionEvent_Validate(t *testing.T) {
	t.Run("round trip through json passes", func(t *testing.T) {
		event, err := NewInteractionEvent("user-1", EventTypeProductPurchase, "", 42, eventTime, nil)
		require.NoError(t, err)

		raw, err := json.Marshal(event)
		require.NoError(t, err)
		var decoded InteractionEvent
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.NoError(t, decoded.Validate())
	})

	t.Run("tampered message id fails", func(t *testing.T) {
		event, err := NewInteractionEvent("user-1", EventTypeProductPurchase, "", 42, eventTime, nil)
		require.NoError(t, err)
		event.MessageId = "deadbeef"
		assert.Error(t, event.Validate())
	})
}

func TestEventTypeWeights(t *testing.T) {
	assert.Equal(t, 0.3, EventTypeProductView.Weight())
	assert.Equal(t, 0.5, EventTypeProductClick.Weight())
	assert.Equal(t, 0.7, EventTypeSearch.Weight())
	assert.Equal(t, 1.0, EventTypeProductPurchase.Weight())
	assert.Equal(t, 0.0, EventTypeUnknown.Weight())
}

func TestParseEventType(t *testing.T) {
	parsed, err := ParseEventType("Product_Purchase")
	require.NoError(t, err)
	assert.Equal(t, EventTypeProductPurchase, parsed)

	_, err = ParseEventType("add_to_wishlist")
	assert.Error(t, err)
}
