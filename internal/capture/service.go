package capture

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/internal/publisher"
	"github.com/myshop/affinity/internal/repositories/outbox"
	"github.com/myshop/affinity/pkg/metric"
)

// Service is the capture entry point. Events are written to the durable
// log before any publish attempt, so a channel outage loses nothing.
type Service interface {
	Capture(ctx context.Context, userId string, eventType events.EventType, searchPhrase string, productId int64, occurredAt time.Time, metadata map[string]string) (*events.InteractionEvent, error)
	CaptureBatch(ctx context.Context, requests []EventRequest) *BatchReport
	Replay(ctx context.Context, limit int) (*ReplayReport, error)
}

type EventRequest struct {
	UserId       string            `json:"userId"`
	EventType    string            `json:"eventType"`
	SearchPhrase string            `json:"searchPhrase,omitempty"`
	ProductId    int64             `json:"productId,omitempty"`
	OccurredAt   time.Time         `json:"occurredAt"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type BatchReport struct {
	Accepted []string      `json:"accepted"`
	Rejected []BatchReject `json:"rejected,omitempty"`
}

type BatchReject struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type ReplayReport struct {
	Scanned   int `json:"scanned"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}

type service struct {
	eventLog  outbox.Repository
	publisher publisher.Publisher
	limiter   *rate.Limiter
}

func NewService(eventLog outbox.Repository, channel publisher.Publisher, replayRatePerSecond int) Service {
	if replayRatePerSecond <= 0 {
		replayRatePerSecond = 1
	}
	return &service{
		eventLog:  eventLog,
		publisher: channel,
		limiter:   rate.NewLimiter(rate.Limit(replayRatePerSecond), replayRatePerSecond),
	}
}

// Capture validates, appends, then publishes. Validation failures leave
// no trace in the log. A failed publish still returns the event, with the
// row left unprocessed for a later replay.
func (s *service) Capture(ctx context.Context, userId string, eventType events.EventType, searchPhrase string, productId int64, occurredAt time.Time, metadata map[string]string) (*events.InteractionEvent, error) {
	startTime := time.Now()
	event, err := events.NewInteractionEvent(userId, eventType, searchPhrase, productId, occurredAt, metadata)
	if err != nil {
		metric.Incr("capture_rejected_count", []string{"event_type:" + eventType.String()})
		return nil, err
	}
	if err := s.eventLog.Append(event, false); err != nil {
		metric.Incr("capture_log_failure_count", nil)
		return nil, err
	}
	if s.publisher.Publish(event) {
		if err := s.eventLog.MarkProcessed(event.MessageId); err != nil {
			// The event is already on the channel. The row stays
			// unprocessed and will be republished; consumers dedupe it.
			log.Error().Msgf("Error marking event %s processed: %v", event.MessageId, err)
		}
	} else {
		metric.Incr("capture_publish_deferred_count", nil)
		log.Warn().Msgf("Publish failed for event %s, left in log for replay", event.MessageId)
	}
	metric.Incr("capture_count", []string{"event_type:" + eventType.String()})
	metric.Timing("capture_latency", time.Since(startTime), nil)
	return event, nil
}

// CaptureBatch accepts each event independently. One bad event rejects
// only itself.
func (s *service) CaptureBatch(ctx context.Context, requests []EventRequest) *BatchReport {
	report := &BatchReport{Accepted: make([]string, 0, len(requests))}
	for i, request := range requests {
		eventType, err := events.ParseEventType(request.EventType)
		if err != nil {
			report.Rejected = append(report.Rejected, BatchReject{Index: i, Reason: err.Error()})
			continue
		}
		event, err := s.Capture(ctx, request.UserId, eventType, request.SearchPhrase, request.ProductId, request.OccurredAt, request.Metadata)
		if err != nil {
			report.Rejected = append(report.Rejected, BatchReject{Index: i, Reason: err.Error()})
			continue
		}
		report.Accepted = append(report.Accepted, event.MessageId)
	}
	return report
}

// Replay pushes unprocessed rows back onto the channel at a bounded rate.
// Redelivery of rows whose MarkProcessed write was lost is expected and
// absorbed by the consumer side ledger.
func (s *service) Replay(ctx context.Context, limit int) (*ReplayReport, error) {
	unprocessed, err := s.eventLog.FindUnprocessed(limit)
	if err != nil {
		return nil, err
	}
	report := &ReplayReport{Scanned: len(unprocessed)}
	for _, event := range unprocessed {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}
		if !s.publisher.Publish(event) {
			report.Failed++
			continue
		}
		if err := s.eventLog.MarkProcessed(event.MessageId); err != nil {
			log.Error().Msgf("Error marking replayed event %s processed: %v", event.MessageId, err)
		}
		report.Published++
	}
	metric.Count("replay_published_count", int64(report.Published), nil)
	metric.Count("replay_failed_count", int64(report.Failed), nil)
	return report, nil
}
