package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/catalog"
	"github.com/myshop/affinity/pkg/api"
)

type Catalog interface {
	CreateProductEmbedding(ctx *gin.Context)
	UpdateProductEmbedding(ctx *gin.Context)
	DeleteProductEmbedding(ctx *gin.Context)
}

var (
	catalogController Catalog
	onceCatalog       sync.Once
)

type ProductEmbeddingRequest struct {
	Text string `json:"text"`
}

type CatalogController struct {
	CatalogService catalog.Service
}

func NewCatalogController() Catalog {
	if catalogController == nil {
		onceCatalog.Do(func() {
			catalog.Init()
			catalogController = &CatalogController{
				CatalogService: catalog.Instance(),
			}
		})
	}
	return catalogController
}

func SetCatalogControllerForTesting(svc catalog.Service) {
	onceCatalog.Do(func() {})
	catalogController = &CatalogController{CatalogService: svc}
}

func (cc *CatalogController) CreateProductEmbedding(ctx *gin.Context) {
	cc.upsert(ctx, cc.CatalogService.CreateEmbedding)
}

func (cc *CatalogController) UpdateProductEmbedding(ctx *gin.Context) {
	cc.upsert(ctx, cc.CatalogService.UpdateEmbedding)
}

func (cc *CatalogController) upsert(ctx *gin.Context, operation func(c context.Context, productId int64, text string) error) {
	productId, ok := parseProductId(ctx)
	if !ok {
		return
	}
	var request ProductEmbeddingRequest
	if err := ctx.BindJSON(&request); err != nil {
		log.Error().Err(err).Msg("Error in binding request body")
		_ = ctx.Error(api.NewBadRequestError(err.Error()))
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Text == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}
	if err := operation(ctx.Request.Context(), productId, request.Text); err != nil {
		if errors.Is(err, catalog.ErrEmbedderDisabled) {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msgf("Error syncing embedding for product %d", productId)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product embedding synced successfully"})
}

func (cc *CatalogController) DeleteProductEmbedding(ctx *gin.Context) {
	productId, ok := parseProductId(ctx)
	if !ok {
		return
	}
	if err := cc.CatalogService.DeleteEmbedding(ctx.Request.Context(), productId); err != nil {
		log.Error().Err(err).Msgf("Error deleting embedding for product %d", productId)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Product embedding deleted successfully"})
}

func parseProductId(ctx *gin.Context) (int64, bool) {
	productId, err := strconv.ParseInt(ctx.Param("productId"), 10, 64)
	if err != nil || productId <= 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "productId must be a positive number"})
		return 0, false
	}
	return productId, true
}
