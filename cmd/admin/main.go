package main

import (
	"github.com/myshop/affinity/internal/admin/router"
	"github.com/myshop/affinity/internal/bootstrap"
	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/server"
	"github.com/myshop/affinity/pkg/httpframework"
	akafka "github.com/myshop/affinity/pkg/kafka"
	"github.com/myshop/affinity/pkg/logger"
	"github.com/myshop/affinity/pkg/metric"
	"github.com/myshop/affinity/pkg/profiling"
	"github.com/myshop/affinity/pkg/tracing"
)

func main() {
	bootstrap.InitAdmin()
	appConfig := structs.GetAppConfig()
	logger.Init()
	metric.Init()
	profiling.Init()
	tracing.Init()

	akafka.InitProducer(appConfig.Configs.InteractionProducerId)
	akafka.InitProducer(appConfig.Configs.DeadLetterProducerId)

	httpframework.Init()
	router.Init()
	server.InitServer(appConfig.Configs.Port)
}
