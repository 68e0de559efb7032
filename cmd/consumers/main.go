package main

import (
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/bootstrap"
	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/consumers/listener"
	"github.com/myshop/affinity/internal/repositories/vector"
	"github.com/myshop/affinity/internal/server"
	"github.com/myshop/affinity/internal/server/api"
	"github.com/myshop/affinity/pkg/httpframework"
	akafka "github.com/myshop/affinity/pkg/kafka"
	"github.com/myshop/affinity/pkg/logger"
	"github.com/myshop/affinity/pkg/metric"
	"github.com/myshop/affinity/pkg/profiling"
	"github.com/myshop/affinity/pkg/tracing"
)

func main() {
	bootstrap.InitConsumers()
	appConfig := structs.GetAppConfig()
	logger.Init()
	metric.Init()
	profiling.Init()
	tracing.Init()

	// Producers are static IDs known at startup.
	akafka.InitProducer(appConfig.Configs.InteractionProducerId)
	akafka.InitProducer(appConfig.Configs.DeadLetterProducerId)

	index := vector.NewRepository(vector.DefaultVersion)
	for _, space := range []string{vector.UserSpace, vector.ProductSpace} {
		if err := index.EnsureSpace(space, appConfig.Configs.EmbeddingDimension); err != nil {
			log.Panic().Msgf("Failed to ensure vector space %s: %v", space, err)
		}
	}

	akafka.StartConsumers(appConfig.Configs.InteractionConsumerIds, "interaction", listener.ProcessInteractionEvents)

	httpframework.Init()
	api.Init()
	server.InitServer(appConfig.Configs.Port)
}
