package api

import "github.com/myshop/affinity/pkg/httpframework"

const (
	healthCheckPath = "/health"
)

func Init() {
	httpframework.Instance().GET(healthCheckPath, healthProvider)
}
