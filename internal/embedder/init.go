package embedder

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/config/structs"
)

var (
	instance Embedder
	once     sync.Once
)

func Init() {
	once.Do(func() {
		configs := structs.GetAppConfig().Configs
		if !configs.EmbedderEnabled {
			log.Info().Msg("embedder disabled, text events will be rejected")
			return
		}
		instance = NewHTTPEmbedder(configs.EmbeddingDimension)
	})
}

// Instance returns nil when the embedder is disabled. Callers treat nil as
// "no provider configured".
func Instance() Embedder {
	return instance
}

func SetMockInstance(mock Embedder) {
	instance = mock
	once.Do(func() {}) // Marking the sync once as done
}
