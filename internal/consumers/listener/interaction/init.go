package interaction

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/embedder"
	"github.com/myshop/affinity/internal/engine"
	"github.com/myshop/affinity/internal/publisher"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/ledger"
	"github.com/myshop/affinity/internal/repositories/vector"
)

var (
	instance       *Handler
	once           sync.Once
	DefaultVersion = 1
)

func NewConsumer(version int) *Handler {
	switch version {
	case DefaultVersion:
		return initHandler()
	default:
		return nil
	}
}

func initHandler() *Handler {
	if instance == nil {
		once.Do(func() {
			configs := structs.GetAppConfig().Configs
			decay, err := engine.NewDecay(configs.DecayMode, time.Duration(configs.DecayHalfLifeInSec)*time.Second, configs.DecayFloor)
			if err != nil {
				log.Panic().Msgf("invalid decay config: %v", err)
			}
			instance = NewHandler(
				engine.NewEngine(configs.EmbeddingDimension, decay),
				embeddingstore.NewRepository(embeddingstore.DefaultVersion),
				vector.NewRepository(vector.DefaultVersion),
				ledger.NewRepository(ledger.DefaultVersion),
				publisher.NewPublisher(publisher.DefaultVersion),
				embedder.Instance(),
				configs.UpdateMaxRetries,
			)
		})
	}
	return instance
}

func SetInstance(handler *Handler) {
	instance = handler
	once.Do(func() {}) // Marking the sync once as done
}
