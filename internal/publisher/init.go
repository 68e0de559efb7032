package publisher

import (
	"sync"

	"github.com/myshop/affinity/internal/config/structs"
)

var (
	instance       Publisher
	once           sync.Once
	DefaultVersion = 1
)

func NewPublisher(version int) Publisher {
	switch version {
	case DefaultVersion:
		return initKafkaPublisher()
	default:
		return nil
	}
}

func initKafkaPublisher() Publisher {
	if instance == nil {
		once.Do(func() {
			configs := structs.GetAppConfig().Configs
			instance = NewKafkaPublisher(configs.InteractionProducerId, configs.DeadLetterProducerId)
		})
	}
	return instance
}

func SetInstance(provider Publisher) {
	instance = provider
	once.Do(func() {}) // Marking the sync once as done
}
