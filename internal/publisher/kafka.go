package publisher

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/pkg/kafka"
	"github.com/myshop/affinity/pkg/metric"
)

// KafkaPublisher routes events to the interaction topic and parked events
// to the dead letter topic. Messages are keyed by user id so one user's
// events land on one partition in capture order.
type KafkaPublisher struct {
	interactionKafkaId int
	deadLetterKafkaId  int
}

func NewKafkaPublisher(interactionKafkaId int, deadLetterKafkaId int) *KafkaPublisher {
	kafka.InitProducer(interactionKafkaId)
	kafka.InitProducer(deadLetterKafkaId)
	return &KafkaPublisher{
		interactionKafkaId: interactionKafkaId,
		deadLetterKafkaId:  deadLetterKafkaId,
	}
}

func (p *KafkaPublisher) Publish(event *events.InteractionEvent) bool {
	startTime := time.Now()
	message, err := buildMessage(event, "")
	if err != nil {
		log.Error().Msgf("Error encoding event %s for publish: %v", event.MessageId, err)
		return false
	}
	if err := kafka.SendAndForget(p.interactionKafkaId, []kafka.ProducerMessage{message}); err != nil {
		metric.Incr("interaction_publish_failure_count", nil)
		log.Error().Msgf("Error publishing event %s: %v", event.MessageId, err)
		return false
	}
	metric.Incr("interaction_publish_count", nil)
	metric.Timing("interaction_publish_latency", time.Since(startTime), nil)
	return true
}

func (p *KafkaPublisher) PublishBatch(batch []*events.InteractionEvent) ([]*events.InteractionEvent, []*events.InteractionEvent) {
	published := make([]*events.InteractionEvent, 0, len(batch))
	failed := make([]*events.InteractionEvent, 0)
	for _, event := range batch {
		if p.Publish(event) {
			published = append(published, event)
		} else {
			failed = append(failed, event)
		}
	}
	return published, failed
}

func (p *KafkaPublisher) PublishWithDelay(event *events.InteractionEvent, delay time.Duration) bool {
	message, err := buildMessage(event, "")
	if err != nil {
		log.Error().Msgf("Error encoding event %s for delayed publish: %v", event.MessageId, err)
		return false
	}
	deadline := time.Now().Add(delay).UnixMilli()
	message.Headers[HeaderRedeliverAfter] = []byte(strconv.FormatInt(deadline, 10))
	if err := kafka.SendAndForget(p.interactionKafkaId, []kafka.ProducerMessage{message}); err != nil {
		metric.Incr("interaction_publish_failure_count", nil)
		log.Error().Msgf("Error publishing delayed event %s: %v", event.MessageId, err)
		return false
	}
	metric.Incr("interaction_delayed_publish_count", nil)
	return true
}

func (p *KafkaPublisher) DeadLetter(event *events.InteractionEvent, reason string, attempts int) error {
	message, err := buildMessage(event, reason)
	if err != nil {
		log.Error().Msgf("Error encoding event %s for dead letter: %v", event.MessageId, err)
		return err
	}
	message.Headers[HeaderAttemptCount] = []byte(strconv.Itoa(attempts))
	if err := kafka.SendAndForget(p.deadLetterKafkaId, []kafka.ProducerMessage{message}); err != nil {
		metric.Incr("dead_letter_publish_failure_count", nil)
		log.Error().Msgf("Error dead lettering event %s: %v", event.MessageId, err)
		return err
	}
	metric.Incr("dead_letter_publish_count", []string{"reason:" + reason})
	return nil
}

func buildMessage(event *events.InteractionEvent, failureReason string) (kafka.ProducerMessage, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return kafka.ProducerMessage{}, err
	}
	key := event.UserId
	headers := map[string][]byte{
		HeaderMessageId: []byte(event.MessageId),
		HeaderEventType: []byte(event.EventType.String()),
	}
	if failureReason != "" {
		headers[HeaderFailureReason] = []byte(failureReason)
	}
	return kafka.ProducerMessage{
		Key:     &key,
		Value:   payload,
		Headers: headers,
	}, nil
}
