package interaction

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/embedder"
	"github.com/myshop/affinity/internal/engine"
	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/internal/publisher"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/ledger"
	"github.com/myshop/affinity/internal/repositories/vector"
	"github.com/myshop/affinity/pkg/metric"
)

const (
	reasonPoisonPayload     = "poison_payload"
	reasonInvalidEvent      = "invalid_event"
	reasonDimensionMismatch = "dimension_mismatch"
	reasonUnknownProduct    = "unknown_product"
	reasonNoEmbedder        = "embedder_unavailable"
	reasonConflictExhausted = "conflict_retries_exhausted"
)

// Handler applies interaction events to user embeddings. Each event is an
// independent unit: poison events are dead lettered, transient storage
// failures fail the batch so the listener seeks back and retries.
type Handler struct {
	engine     *engine.Engine
	store      embeddingstore.Store
	index      vector.Database
	dedupe     ledger.Ledger
	channel    publisher.Publisher
	embedder   embedder.Embedder
	maxRetries int
	nowFunc    func() time.Time
}

func NewHandler(updateEngine *engine.Engine, store embeddingstore.Store, index vector.Database, dedupe ledger.Ledger, channel publisher.Publisher, provider embedder.Embedder, maxRetries int) *Handler {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Handler{
		engine:     updateEngine,
		store:      store,
		index:      index,
		dedupe:     dedupe,
		channel:    channel,
		embedder:   provider,
		maxRetries: maxRetries,
		nowFunc:    time.Now,
	}
}

// ProcessBatch satisfies the listener's BatchHandler contract. A nil
// return commits the batch.
func (h *Handler) ProcessBatch(msgs []*kafka.Message, c *kafka.Consumer) error {
	startTime := time.Now()
	for _, msg := range msgs {
		h.waitForRedeliveryDeadline(msg)
		event := &events.InteractionEvent{}
		if err := json.Unmarshal(msg.Value, event); err != nil {
			metric.Incr("interaction_poison_count", nil)
			log.Error().Msgf("Undecodable interaction message, dead lettering: %v", err)
			h.deadLetterRaw(msg.Value, reasonPoisonPayload)
			continue
		}
		if err := h.ProcessEvent(context.Background(), event); err != nil {
			return err
		}
	}
	metric.Count("interaction_batch_size", int64(len(msgs)), nil)
	metric.Timing("interaction_batch_latency", time.Since(startTime), nil)
	return nil
}

// ProcessEvent applies one event. A non-nil return means a transient
// failure worth retrying; permanent failures are dead lettered and
// absorbed here.
func (h *Handler) ProcessEvent(ctx context.Context, event *events.InteractionEvent) error {
	if err := event.Validate(); err != nil {
		metric.Incr("interaction_invalid_count", nil)
		log.Error().Msgf("Invalid event %s, dead lettering: %v", event.MessageId, err)
		return h.deadLetter(event, reasonInvalidEvent, 1)
	}
	applied, err := h.dedupe.IsApplied(event.MessageId)
	if err != nil {
		return err
	}
	if applied {
		metric.Incr("interaction_duplicate_count", nil)
		return nil
	}
	eventVector, reason, err := h.resolveEventVector(ctx, event)
	if err != nil {
		return err
	}
	if reason != "" {
		return h.deadLetter(event, reason, 1)
	}
	userEntityId := embeddingstore.UserEntityId(event.UserId)
	var updated *engine.EntityEmbedding
	for attempt := 0; ; attempt++ {
		current, err := h.store.Find(userEntityId)
		if err != nil {
			return err
		}
		updated, err = h.engine.Update(current, userEntityId, eventVector, event.Weight(), event.OccurredAt)
		if err != nil {
			var mismatch *engine.DimensionMismatchError
			if errors.As(err, &mismatch) {
				metric.Incr("interaction_dimension_mismatch_count", nil)
				log.Error().Msgf("Dimension mismatch for event %s: %v", event.MessageId, err)
				return h.deadLetter(event, reasonDimensionMismatch, 1)
			}
			return err
		}
		saved, err := h.store.Save(updated)
		if err != nil {
			return err
		}
		if saved {
			break
		}
		metric.Incr("interaction_version_conflict_count", nil)
		if attempt >= h.maxRetries-1 {
			log.Error().Msgf("Conflict retries exhausted for event %s", event.MessageId)
			return h.deadLetter(event, reasonConflictExhausted, h.maxRetries)
		}
	}
	if err := h.index.Upsert(vector.UserSpace, updated); err != nil {
		// The store write already landed. Index divergence heals on the
		// user's next event.
		metric.Incr("interaction_index_failure_count", nil)
		log.Error().Msgf("Error indexing user embedding for event %s: %v", event.MessageId, err)
	}
	if err := h.dedupe.MarkApplied(event.MessageId); err != nil {
		// A redelivery before the next successful mark recomputes the
		// update. The CAS version check keeps the row consistent.
		log.Error().Msgf("Error marking event %s applied: %v", event.MessageId, err)
	}
	metric.Incr("interaction_applied_count", []string{"event_type:" + event.EventType.String()})
	return nil
}

// resolveEventVector finds the semantic vector carried by the event.
// Product events reuse the catalog embedding; searches embed the phrase.
func (h *Handler) resolveEventVector(ctx context.Context, event *events.InteractionEvent) ([]float32, string, error) {
	if event.EventType == events.EventTypeSearch {
		if h.embedder == nil {
			return nil, reasonNoEmbedder, nil
		}
		phraseVector, err := h.embedder.Embed(ctx, event.SearchPhrase)
		if err != nil {
			var mismatch *engine.DimensionMismatchError
			if errors.As(err, &mismatch) {
				return nil, reasonDimensionMismatch, nil
			}
			return nil, "", err
		}
		return phraseVector, "", nil
	}
	product, err := h.store.Find(embeddingstore.ProductEntityId(event.ProductId))
	if err != nil {
		return nil, "", err
	}
	if product == nil {
		metric.Incr("interaction_unknown_product_count", nil)
		return nil, reasonUnknownProduct, nil
	}
	return product.Vector, "", nil
}

func (h *Handler) deadLetter(event *events.InteractionEvent, reason string, attempts int) error {
	if err := h.channel.DeadLetter(event, reason, attempts); err != nil {
		// Keep the message uncommitted rather than lose it.
		return err
	}
	return nil
}

func (h *Handler) deadLetterRaw(payload []byte, reason string) {
	event := &events.InteractionEvent{MessageId: "undecoded", Metadata: map[string]string{"raw": string(payload)}}
	if err := h.channel.DeadLetter(event, reason, 1); err != nil {
		log.Error().Msgf("Error dead lettering poison payload: %v", err)
	}
}

// waitForRedeliveryDeadline honors the redeliver-after header set by
// delayed publishes. Deadlines are short by contract; waiting in place is
// cheaper than a park-and-republish hop.
func (h *Handler) waitForRedeliveryDeadline(msg *kafka.Message) {
	for _, header := range msg.Headers {
		if header.Key != publisher.HeaderRedeliverAfter {
			continue
		}
		deadline, err := parseUnixMilli(string(header.Value))
		if err != nil {
			return
		}
		if wait := deadline.Sub(h.nowFunc()); wait > 0 {
			time.Sleep(wait)
		}
		return
	}
}

func parseUnixMilli(value string) (time.Time, error) {
	millis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(millis), nil
}
