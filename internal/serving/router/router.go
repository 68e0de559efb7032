package router

import (
	"github.com/myshop/affinity/internal/server/middlewares"
	"github.com/myshop/affinity/internal/serving/controller"
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
		{
			v1.GET("/recommendations/me", controller.NewRecommendController().MyRecommendations)
			v1.GET("/recommendations/:userId", controller.NewRecommendController().Recommendations)
			v1.POST("/similar", controller.NewRecommendController().FindSimilar)
		}
	}

	httpframework.Instance().GET(HeathCheckPath, controller.Health)
}
