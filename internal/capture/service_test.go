package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/internal/publisher"
	"github.com/myshop/affinity/internal/repositories/outbox"
)

func newTestService(t *testing.T) (Service, *outbox.MemoryLog, *publisher.MemoryPublisher) {
	t.Helper()
	eventLog := outbox.NewMemoryLog()
	channel := publisher.NewMemoryPublisher()
	return NewService(eventLog, channel, 1000), eventLog, channel
}

func TestCaptureAppendsAndPublishes(t *testing.T) {
	svc, eventLog, channel := newTestService(t)

	event, err := svc.Capture(context.Background(), "user-1", events.EventTypeProductPurchase, "", 42, time.Now(), nil)
	require.NoError(t, err)
	require.NotNil(t, event)

	require.Len(t, channel.Published, 1)
	assert.Equal(t, event.MessageId, channel.Published[0].MessageId)

	unprocessed, err := eventLog.FindUnprocessed(10)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)
}

func TestCaptureRejectsInvalidEventWithoutSideEffects(t *testing.T) {
	svc, eventLog, channel := newTestService(t)

	_, err := svc.Capture(context.Background(), "", events.EventTypeProductView, "", 42, time.Now(), nil)
	var invalid *events.InvalidEventError
	require.ErrorAs(t, err, &invalid)

	assert.Empty(t, channel.Published)
	unprocessed, err := eventLog.FindUnprocessed(10)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)
}

func TestCapturePublishFailureLeavesRowForReplay(t *testing.T) {
	svc, eventLog, channel := newTestService(t)
	channel.FailNext(1)

	event, err := svc.Capture(context.Background(), "user-1", events.EventTypeSearch, "running shoes", 0, time.Now(), nil)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Empty(t, channel.Published)
	unprocessed, err := eventLog.FindUnprocessed(10)
	require.NoError(t, err)
	require.Len(t, unprocessed, 1)
	assert.Equal(t, event.MessageId, unprocessed[0].MessageId)
}

func TestReplayPublishesPendingRowsOnce(t *testing.T) {
	svc, _, channel := newTestService(t)
	channel.FailNext(2)

	first, err := svc.Capture(context.Background(), "user-1", events.EventTypeProductView, "", 1, time.Now(), nil)
	require.NoError(t, err)
	second, err := svc.Capture(context.Background(), "user-2", events.EventTypeProductClick, "", 2, time.Now(), nil)
	require.NoError(t, err)

	report, err := svc.Replay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.Published)
	assert.Equal(t, 0, report.Failed)

	require.Len(t, channel.Published, 2)
	assert.Equal(t, first.MessageId, channel.Published[0].MessageId)
	assert.Equal(t, second.MessageId, channel.Published[1].MessageId)

	// Nothing pending after a successful replay.
	report, err = svc.Replay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
}

func TestReplayCountsFailures(t *testing.T) {
	svc, _, channel := newTestService(t)
	channel.FailNext(1)

	_, err := svc.Capture(context.Background(), "user-1", events.EventTypeProductView, "", 1, time.Now(), nil)
	require.NoError(t, err)

	channel.FailNext(1)
	report, err := svc.Replay(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Scanned)
	assert.Equal(t, 0, report.Published)
	assert.Equal(t, 1, report.Failed)
}
