package controller

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/serving/handlers/recommend"
	"github.com/myshop/affinity/pkg/api"
)

type Recommend interface {
	Recommendations(ctx *gin.Context)
	MyRecommendations(ctx *gin.Context)
	FindSimilar(ctx *gin.Context)
}

var (
	recommendController Recommend
	onceRecommend       sync.Once
)

type RecommendController struct {
	RecommendHandler *recommend.HandlerV1
}

func NewRecommendController() Recommend {
	if recommendController == nil {
		onceRecommend.Do(func() {
			recommendController = &RecommendController{
				RecommendHandler: recommend.GetHandler(1),
			}
		})
	}
	return recommendController
}

// SetRecommendControllerForTesting wires the controller to a specific
// handler instance.
func SetRecommendControllerForTesting(handler *recommend.HandlerV1) {
	onceRecommend.Do(func() {})
	recommendController = &RecommendController{RecommendHandler: handler}
}

func (r *RecommendController) Recommendations(ctx *gin.Context) {
	userId := ctx.Param("userId")
	if userId == "" {
		_ = ctx.Error(api.NewBadRequestError("userId is required"))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	r.serveRecommendations(ctx, userId)
}

// MyRecommendations serves the calling user, identified by the request
// context headers instead of a path parameter.
func (r *RecommendController) MyRecommendations(ctx *gin.Context) {
	requestContext, err := api.GetRequestContext(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r.serveRecommendations(ctx, requestContext.UserId)
}

func (r *RecommendController) serveRecommendations(ctx *gin.Context, userId string) {
	limit := 0
	if rawLimit := ctx.Query("limit"); rawLimit != "" {
		parsed, err := strconv.Atoi(rawLimit)
		if err != nil {
			_ = ctx.Error(api.NewBadRequestError("limit must be a number"))
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a number"})
			return
		}
		limit = parsed
	}
	response, err := r.RecommendHandler.Recommend(userId, limit)
	if err != nil {
		log.Error().Err(err).Msgf("Error serving recommendations for user %s", userId)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

func (r *RecommendController) FindSimilar(ctx *gin.Context) {
	var request recommend.FindSimilarRequest
	if err := ctx.BindJSON(&request); err != nil {
		log.Error().Err(err).Msg("Error in binding request body")
		_ = ctx.Error(api.NewBadRequestError(err.Error()))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	response, err := r.RecommendHandler.FindSimilar(&request)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidRequest) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("Error serving similarity query")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}
