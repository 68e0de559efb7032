package interaction

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myshop/affinity/internal/embedder"
	"github.com/myshop/affinity/internal/engine"
	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/internal/publisher"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/ledger"
	"github.com/myshop/affinity/internal/repositories/vector"
)

const testDimension = 4

type fixture struct {
	handler *Handler
	store   *embeddingstore.MemoryStore
	index   *vector.Memory
	dedupe  *ledger.MemoryLedger
	channel *publisher.MemoryPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := embeddingstore.NewMemoryStore()
	index := vector.NewMemory()
	dedupe := ledger.NewMemoryLedger(3600)
	channel := publisher.NewMemoryPublisher()
	handler := NewHandler(
		engine.NewEngine(testDimension, engine.NoDecay),
		store, index, dedupe, channel,
		embedder.NewLocalEmbedder(testDimension),
		3,
	)
	return &fixture{handler: handler, store: store, index: index, dedupe: dedupe, channel: channel}
}

func (f *fixture) seedProduct(t *testing.T, productId int64, productVector []float32) {
	t.Helper()
	saved, err := f.store.Save(&engine.EntityEmbedding{
		EntityId:      embeddingstore.ProductEntityId(productId),
		Vector:        productVector,
		EventCount:    1,
		LastUpdatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.True(t, saved)
}

func productEvent(t *testing.T, userId string, eventType events.EventType, productId int64) *events.InteractionEvent {
	t.Helper()
	event, err := events.NewInteractionEvent(userId, eventType, "", productId, time.Now(), nil)
	require.NoError(t, err)
	return event
}

func TestFirstEventCreatesUserEmbedding(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 42, []float32{1, 0, 0, 0})

	event := productEvent(t, "user-1", events.EventTypeProductView, 42)
	require.NoError(t, f.handler.ProcessEvent(context.Background(), event))

	user, err := f.store.Find(embeddingstore.UserEntityId("user-1"))
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, []float32{1, 0, 0, 0}, user.Vector)
	assert.Equal(t, int64(1), user.EventCount)

	matches, err := f.index.FindSimilar(vector.UserSpace, []float32{1, 0, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, embeddingstore.UserEntityId("user-1"), matches[0].EntityId)
}

func TestSecondEventShiftsVectorTowardNewProduct(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 42, []float32{1, 0, 0, 0})
	f.seedProduct(t, 43, []float32{0, 1, 0, 0})

	purchase := productEvent(t, "user-1", events.EventTypeProductPurchase, 42)
	require.NoError(t, f.handler.ProcessEvent(context.Background(), purchase))

	user, err := f.store.Find(embeddingstore.UserEntityId("user-1"))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0, 0}, user.Vector)
	assert.Equal(t, int64(1), user.EventCount)

	view := productEvent(t, "user-1", events.EventTypeProductView, 43)
	require.NoError(t, f.handler.ProcessEvent(context.Background(), view))

	user, err = f.store.Find(embeddingstore.UserEntityId("user-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.EventCount)
	// The view pulls toward product 43 without reaching it.
	assert.Greater(t, user.Vector[1], float32(0))
	assert.Less(t, user.Vector[1], float32(1))
	assert.Greater(t, user.Vector[0], user.Vector[1])
}

func TestRedeliveryIsNoop(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 42, []float32{1, 0, 0, 0})
	f.seedProduct(t, 43, []float32{0, 1, 0, 0})

	first := productEvent(t, "user-1", events.EventTypeProductView, 42)
	second := productEvent(t, "user-1", events.EventTypeProductClick, 43)

	require.NoError(t, f.handler.ProcessEvent(context.Background(), first))
	require.NoError(t, f.handler.ProcessEvent(context.Background(), second))

	after, err := f.store.Find(embeddingstore.UserEntityId("user-1"))
	require.NoError(t, err)

	// Redeliver both in a different order.
	require.NoError(t, f.handler.ProcessEvent(context.Background(), second))
	require.NoError(t, f.handler.ProcessEvent(context.Background(), first))

	redelivered, err := f.store.Find(embeddingstore.UserEntityId("user-1"))
	require.NoError(t, err)
	assert.Equal(t, after.Vector, redelivered.Vector)
	assert.Equal(t, after.EventCount, redelivered.EventCount)
	assert.Equal(t, after.Version, redelivered.Version)
}

func TestPurchasePullsHarderThanView(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 42, []float32{1, 0, 0, 0})
	f.seedProduct(t, 43, []float32{0, 1, 0, 0})

	// Both users start from the same product view.
	require.NoError(t, f.handler.ProcessEvent(context.Background(), productEvent(t, "viewer", events.EventTypeProductView, 42)))
	require.NoError(t, f.handler.ProcessEvent(context.Background(), productEvent(t, "buyer", events.EventTypeProductView, 42)))

	// Then one views product 43, the other purchases it.
	require.NoError(t, f.handler.ProcessEvent(context.Background(), productEvent(t, "viewer", events.EventTypeProductView, 43)))
	require.NoError(t, f.handler.ProcessEvent(context.Background(), productEvent(t, "buyer", events.EventTypeProductPurchase, 43)))

	viewer, err := f.store.Find(embeddingstore.UserEntityId("viewer"))
	require.NoError(t, err)
	buyer, err := f.store.Find(embeddingstore.UserEntityId("buyer"))
	require.NoError(t, err)

	// The purchase moves the buyer further toward product 43.
	assert.Greater(t, buyer.Vector[1], viewer.Vector[1])
}

func TestSearchEventEmbedsPhrase(t *testing.T) {
	f := newFixture(t)
	event, err := events.NewInteractionEvent("user-1", events.EventTypeSearch, "running shoes", 0, time.Now(), nil)
	require.NoError(t, err)

	require.NoError(t, f.handler.ProcessEvent(context.Background(), event))

	user, err := f.store.Find(embeddingstore.UserEntityId("user-1"))
	require.NoError(t, err)
	require.NotNil(t, user)

	expected, err := embedder.NewLocalEmbedder(testDimension).Embed(context.Background(), "running shoes")
	require.NoError(t, err)
	assert.Equal(t, expected, user.Vector)
}

func TestUnknownProductIsDeadLettered(t *testing.T) {
	f := newFixture(t)
	event := productEvent(t, "user-1", events.EventTypeProductView, 999)

	require.NoError(t, f.handler.ProcessEvent(context.Background(), event))

	require.Len(t, f.channel.DeadLettered, 1)
	assert.Equal(t, event.MessageId, f.channel.DeadLettered[0].Event.MessageId)
	assert.Equal(t, "unknown_product", f.channel.DeadLettered[0].Reason)

	user, err := f.store.Find(embeddingstore.UserEntityId("user-1"))
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestTamperedEventIsDeadLettered(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 42, []float32{1, 0, 0, 0})

	event := productEvent(t, "user-1", events.EventTypeProductView, 42)
	event.MessageId = "0000000000000000000000000000000000000000000000000000000000000000"

	require.NoError(t, f.handler.ProcessEvent(context.Background(), event))

	require.Len(t, f.channel.DeadLettered, 1)
	assert.Equal(t, "invalid_event", f.channel.DeadLettered[0].Reason)
}

func TestMismatchedProductDimensionIsDeadLettered(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 42, []float32{1, 0})

	event := productEvent(t, "user-1", events.EventTypeProductView, 42)
	require.NoError(t, f.handler.ProcessEvent(context.Background(), event))

	require.Len(t, f.channel.DeadLettered, 1)
	assert.Equal(t, "dimension_mismatch", f.channel.DeadLettered[0].Reason)
}

func TestSearchWithoutEmbedderIsDeadLettered(t *testing.T) {
	f := newFixture(t)
	f.handler.embedder = nil

	event, err := events.NewInteractionEvent("user-1", events.EventTypeSearch, "running shoes", 0, time.Now(), nil)
	require.NoError(t, err)

	require.NoError(t, f.handler.ProcessEvent(context.Background(), event))
	require.Len(t, f.channel.DeadLettered, 1)
	assert.Equal(t, "embedder_unavailable", f.channel.DeadLettered[0].Reason)
}

func TestAppliedEventMarksLedger(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, 42, []float32{1, 0, 0, 0})

	event := productEvent(t, "user-1", events.EventTypeProductView, 42)
	require.NoError(t, f.handler.ProcessEvent(context.Background(), event))

	applied, err := f.dedupe.IsApplied(event.MessageId)
	require.NoError(t, err)
	assert.True(t, applied)
}
