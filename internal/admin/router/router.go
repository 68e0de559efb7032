package router

import (
	"github.com/myshop/affinity/internal/admin/controller"
	"github.com/myshop/affinity/internal/server/middlewares"
	"github.com/myshop/affinity/pkg/httpframework"
)

const (
	HeathCheckPath = "/health"
)

// Init expects the http framework to be initialized before calling this function
func Init() {
	api := httpframework.Instance().Group("/api", middlewares.AuthInterceptor())
	{
		v1 := api.Group("/v1")
		events := v1.Group("/events")
		{
			events.POST("", controller.NewCaptureController().CaptureEvent)
			events.POST("/batch", controller.NewCaptureController().CaptureBatch)
			events.POST("/replay", controller.NewMaintenanceController().Replay)
		}
		{
			products := v1.Group("/products")
			products.POST("/:productId/embedding", controller.NewCatalogController().CreateProductEmbedding)
			products.PUT("/:productId/embedding", controller.NewCatalogController().UpdateProductEmbedding)
			products.DELETE("/:productId/embedding", controller.NewCatalogController().DeleteProductEmbedding)
		}
		{
			embeddings := v1.Group("/embeddings")
			embeddings.GET("/stale", controller.NewMaintenanceController().StaleEmbeddings)
		}
	}

	// Init health check
	httpframework.Instance().GET(HeathCheckPath, controller.Health)
}
