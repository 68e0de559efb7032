package controller

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/capture"
	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
)

const (
	defaultReplayLimit = 500
	defaultSweepLimit  = 100
)

type Maintenance interface {
	Replay(ctx *gin.Context)
	StaleEmbeddings(ctx *gin.Context)
}

var (
	maintenanceController Maintenance
	onceMaintenance       sync.Once
)

type ReplayRequest struct {
	Limit int `json:"limit"`
}

type StaleEmbedding struct {
	EntityId      string    `json:"entityId"`
	EventCount    int64     `json:"eventCount"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

type MaintenanceController struct {
	CaptureService capture.Service
	Store          embeddingstore.Store
	StaleAfterDays int
}

func NewMaintenanceController() Maintenance {
	if maintenanceController == nil {
		onceMaintenance.Do(func() {
			capture.Init()
			maintenanceController = &MaintenanceController{
				CaptureService: capture.Instance(),
				Store:          embeddingstore.NewRepository(embeddingstore.DefaultVersion),
				StaleAfterDays: structs.GetAppConfig().Configs.StaleEmbeddingAfterDays,
			}
		})
	}
	return maintenanceController
}

func SetMaintenanceControllerForTesting(svc capture.Service, store embeddingstore.Store, staleAfterDays int) {
	onceMaintenance.Do(func() {})
	maintenanceController = &MaintenanceController{
		CaptureService: svc,
		Store:          store,
		StaleAfterDays: staleAfterDays,
	}
}

// Replay republishes outbox rows that never reached the channel.
func (mc *MaintenanceController) Replay(ctx *gin.Context) {
	var request ReplayRequest
	if err := ctx.BindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Limit <= 0 {
		request.Limit = defaultReplayLimit
	}
	report, err := mc.CaptureService.Replay(ctx.Request.Context(), request.Limit)
	if err != nil {
		log.Error().Err(err).Msg("Error replaying events")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// StaleEmbeddings lists embeddings that have not moved in the configured
// window, for offline cleanup decisions.
func (mc *MaintenanceController) StaleEmbeddings(ctx *gin.Context) {
	days := mc.StaleAfterDays
	if rawDays := ctx.Query("days"); rawDays != "" {
		parsed, err := strconv.Atoi(rawDays)
		if err != nil || parsed <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive number"})
			return
		}
		days = parsed
	}
	limit := defaultSweepLimit
	if rawLimit := ctx.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil || parsed <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive number"})
			return
		}
		limit = parsed
	}
	stale, err := mc.Store.FindStale(days, limit)
	if err != nil {
		log.Error().Err(err).Msg("Error scanning stale embeddings")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	results := make([]StaleEmbedding, 0, len(stale))
	for _, embedding := range stale {
		results = append(results, StaleEmbedding{
			EntityId:      embedding.EntityId,
			EventCount:    embedding.EventCount,
			LastUpdatedAt: embedding.LastUpdatedAt,
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"stale": results})
}
