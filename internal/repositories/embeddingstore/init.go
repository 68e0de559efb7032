package embeddingstore

import (
	"sync"

	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/pkg/ds"
)

var (
	queryCache     *ds.SyncMap[string, string]
	embeddingStore Store
	once           sync.Once
	DefaultVersion = 1
	appConfig      structs.Configs
	initOnce       sync.Once
)

func Init() {
	initOnce.Do(func() {
		appConfig = structs.GetAppConfig().Configs
	})
}

func NewRepository(version int) Store {
	switch version {
	case DefaultVersion:
		return initScyllaStore()
	default:
		return nil
	}
}

func SetInstance(provider Store) {
	embeddingStore = provider
	once.Do(func() {}) // Marking the sync once as done
}
