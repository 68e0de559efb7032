package outbox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop/affinity/internal/events"
)

func testEvent(t *testing.T, userId string, productId int64) *events.InteractionEvent {
	t.Helper()
	event, err := events.NewInteractionEvent(userId, events.EventTypeProductView, "", productId, time.Now(), nil)
	require.NoError(t, err)
	return event
}

func TestMemoryLogAppendAndReplay(t *testing.T) {
	log := NewMemoryLog()
	first := testEvent(t, "user-1", 101)
	second := testEvent(t, "user-2", 202)

	require.NoError(t, log.Append(first, false))
	require.NoError(t, log.Append(second, false))

	unprocessed, err := log.FindUnprocessed(10)
	require.NoError(t, err)
	require.Len(t, unprocessed, 2)
	assert.Equal(t, first.MessageId, unprocessed[0].MessageId)
	assert.Equal(t, second.MessageId, unprocessed[1].MessageId)
}

func TestMemoryLogMarkProcessedExcludesFromReplay(t *testing.T) {
	log := NewMemoryLog()
	first := testEvent(t, "user-1", 101)
	second := testEvent(t, "user-2", 202)

	require.NoError(t, log.Append(first, false))
	require.NoError(t, log.Append(second, false))
	require.NoError(t, log.MarkProcessed(first.MessageId))

	unprocessed, err := log.FindUnprocessed(10)
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)
	assert.Equal(t, second.MessageId, unprocessed[0].MessageId)
}

func TestMemoryLogAppendIsConditionalOnMessageId(t *testing.T) {
	log := NewMemoryLog()
	event := testEvent(t, "user-1", 101)

	require.NoError(t, log.Append(event, false))
	require.NoError(t, log.MarkProcessed(event.MessageId))

	// A second capture of the same logical event must not reset the
	// processed flag.
	require.NoError(t, log.Append(event, false))

	unprocessed, err := log.FindUnprocessed(10)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)
}

func TestMemoryLogReplayHonorsLimit(t *testing.T) {
	log := NewMemoryLog()
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, log.Append(testEvent(t, "user-1", 100+i), false))
	}

	unprocessed, err := log.FindUnprocessed(3)
	require.NoError(t, err)
	assert.Len(t, unprocessed, 3)
}

func TestMemoryLogMarkProcessedUnknownIdIsNoop(t *testing.T) {
	log := NewMemoryLog()
	assert.NoError(t, log.MarkProcessed("missing"))
}
