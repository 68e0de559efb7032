package capture

import (
	"sync"

	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/publisher"
	"github.com/myshop/affinity/internal/repositories/outbox"
)

var (
	instance Service
	once     sync.Once
)

func Init() {
	once.Do(func() {
		configs := structs.GetAppConfig().Configs
		instance = NewService(
			outbox.NewRepository(outbox.DefaultVersion),
			publisher.NewPublisher(publisher.DefaultVersion),
			configs.ReplayRatePerSecond,
		)
	})
}

func Instance() Service {
	return instance
}

func SetInstance(svc Service) {
	instance = svc
	once.Do(func() {}) // Marking the sync once as done
}
