package catalog

import (
	"sync"

	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/embedder"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/vector"
)

var (
	instance Service
	once     sync.Once
)

func Init() {
	once.Do(func() {
		configs := structs.GetAppConfig().Configs
		instance = NewService(
			embedder.Instance(),
			embeddingstore.NewRepository(embeddingstore.DefaultVersion),
			vector.NewRepository(vector.DefaultVersion),
			configs.UpdateMaxRetries,
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
