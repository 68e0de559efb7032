package bootstrap

import (
	"github.com/myshop/affinity/internal/config"
	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/embedder"
	"github.com/myshop/affinity/internal/server/middlewares"
	"github.com/myshop/affinity/pkg/inmemorycache"
)

func Init() {
	config.InitConfig(structs.GetAppConfig())
	inmemorycache.InitV1()
}

func InitAdmin() {
	Init()
	middlewares.Init()
	embedder.Init()
}

func InitConsumers() {
	Init()
	embedder.Init()
}

func InitServing() {
	Init()
	middlewares.Init()
}
