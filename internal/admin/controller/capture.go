package controller

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/capture"
	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/pkg/api"
)

type Capture interface {
	CaptureEvent(ctx *gin.Context)
	CaptureBatch(ctx *gin.Context)
}

var (
	captureController Capture
	onceCapture       sync.Once
)

type CaptureController struct {
	CaptureService capture.Service
}

func NewCaptureController() Capture {
	if captureController == nil {
		onceCapture.Do(func() {
			capture.Init()
			captureController = &CaptureController{
				CaptureService: capture.Instance(),
			}
		})
	}
	return captureController
}

func SetCaptureControllerForTesting(svc capture.Service) {
	onceCapture.Do(func() {})
	captureController = &CaptureController{CaptureService: svc}
}

func (cc *CaptureController) CaptureEvent(ctx *gin.Context) {
	var request capture.EventRequest
	if err := ctx.BindJSON(&request); err != nil {
		log.Error().Err(err).Msg("Error in binding request body")
		_ = ctx.Error(api.NewBadRequestError(err.Error()))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	eventType, err := events.ParseEventType(request.EventType)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.OccurredAt.IsZero() {
		request.OccurredAt = time.Now().UTC()
	}
	event, err := cc.CaptureService.Capture(ctx.Request.Context(), request.UserId, eventType, request.SearchPhrase, request.ProductId, request.OccurredAt, request.Metadata)
	if err != nil {
		var invalid *events.InvalidEventError
		if errors.As(err, &invalid) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})
			return
		}
		log.Error().Err(err).Msg("Error capturing event")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(http.StatusAccepted, gin.H{"messageId": event.MessageId})
}

func (cc *CaptureController) CaptureBatch(ctx *gin.Context) {
	var requests []capture.EventRequest
	if err := ctx.BindJSON(&requests); err != nil {
		log.Error().Err(err).Msg("Error in binding request body")
		_ = ctx.Error(api.NewBadRequestError(err.Error()))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(requests) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "batch is empty"})
		return
	}
	report := cc.CaptureService.CaptureBatch(ctx.Request.Context(), requests)
	ctx.JSON(http.StatusAccepted, report)
}
