package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketrunner/internal/apierror"
	"marketrunner/internal/dto"
	"marketrunner/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const catalogCacheTTL = 4 * time.Hour

// CatalogHandler serves the courier quick-check lookup. Read-only, cached.
type CatalogHandler struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
	rdb         *redis.Client
}

func NewCatalogHandler(productRepo repository.ProductRepository, storeRepo repository.StoreRepository, rdb *redis.Client) *CatalogHandler {
	return &CatalogHandler{productRepo: productRepo, storeRepo: storeRepo, rdb: rdb}
}

// LookupBarcode godoc
// @Summary      Catalog lookup by barcode
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Param        barcode path string true "Barcode"
// @Success      200 {object} dto.CatalogLookupResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/catalog/{barcode} [get]
func (h *CatalogHandler) LookupBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "catalog:" + barcode

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.CatalogLookupResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	product, err := h.productRepo.FindByBarcode(ctx, barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("barcode not in catalog"))
		return
	}

	resp := dto.CatalogLookupResponse{
		Barcode:   product.Barcode,
		StyleName: product.StyleName,
		Color:     product.Color,
		Size:      product.Size,
		StoreID:   product.StoreID.String(),
		Inventory: product.Inventory,
		CostPrice: product.CostPrice,
	}
	if store, err := h.storeRepo.FindByID(ctx, product.StoreID); err == nil {
		resp.StoreName = store.Name
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, catalogCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
