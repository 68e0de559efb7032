package listener

import (
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/myshop/affinity/internal/consumers/listener/interaction"
)

// ProcessInteractionEvents is the batch handler wired into the interaction
// topic consumers. A nil return commits the batch; an error seeks back.
func ProcessInteractionEvents(msgs []*kafka.Message, c *kafka.Consumer) error {
	return interaction.NewConsumer(interaction.DefaultVersion).ProcessBatch(msgs, c)
}
