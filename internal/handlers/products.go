package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopfront/api/internal/ids"
	"shopfront/api/internal/models"
	"shopfront/api/internal/repository"
)

const productCacheTTL = time.Minute

func productCacheKey(storeID string) string {
	return "products:" + storeID
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	SKU         string  `json:"sku" binding:"required"`
	PriceCents  int64   `json:"priceCents" binding:"required,gt=0"`
	Currency    string  `json:"currency" binding:"required,len=3"`
	ImageURL    *string `json:"imageUrl"`
	Active      bool    `json:"active"`
}

type productResponse struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"storeId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SKU         string    `json:"sku"`
	PriceCents  int64     `json:"priceCents"`
	Currency    string    `json:"currency"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toProductResponse(product models.Product) productResponse {
	return productResponse{
		ID:          product.ID,
		StoreID:     product.StoreID,
		Name:        product.Name,
		Description: product.Description,
		SKU:         product.SKU,
		PriceCents:  product.PriceCents,
		Currency:    product.Currency,
		ImageURL:    product.ImageURL,
		Active:      product.Active,
		CreatedAt:   product.CreatedAt,
	}
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	product := models.Product{
		ID:          ids.New(),
		StoreID:     store.ID,
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		PriceCents:  req.PriceCents,
		Currency:    req.Currency,
		ImageURL:    req.ImageURL,
		Active:      req.Active,
	}

	if err := h.products.Create(c.Request.Context(), product); err != nil {
		h.log.Error().Err(err).Msg("create product failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	h.invalidateProductCache(c, store.ID)
	c.JSON(http.StatusCreated, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) ListProducts(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)

	// The first default page is the storefront's hot path, served from
	// redis between product writes. Deeper pages always hit postgres; the
	// write-side invalidation only knows this one key.
	cacheKey := ""
	if h.cache != nil && limit == defaultPageSize && offset == 0 {
		cacheKey = productCacheKey(store.ID)
		if cached, err := h.cache.Get(c.Request.Context(), cacheKey).Bytes(); err == nil {
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			return
		}
	}

	products, err := h.products.ListByStore(c.Request.Context(), store.ID, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list products failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	items := make([]productResponse, 0, len(products))
	for _, product := range products {
		items = append(items, toProductResponse(product))
	}

	body := gin.H{"products": items}
	if cacheKey != "" {
		if payload, err := json.Marshal(body); err == nil {
			if err := h.cache.Set(c.Request.Context(), cacheKey, payload, productCacheTTL).Err(); err != nil {
				h.log.Warn().Err(err).Str("store_id", store.ID).Msg("product cache write failed")
			}
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	product, ok := h.storeProduct(c, store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) UpdateProduct(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	product, ok := h.storeProduct(c, store)
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.SKU = req.SKU
	product.PriceCents = req.PriceCents
	product.Currency = req.Currency
	product.ImageURL = req.ImageURL
	product.Active = req.Active

	if err := h.products.Update(c.Request.Context(), product); err != nil {
		h.log.Error().Err(err).Msg("update product failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	h.invalidateProductCache(c, store.ID)
	c.JSON(http.StatusOK, gin.H{"product": toProductResponse(product)})
}

func (h HandlerSet) DeleteProduct(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	product, ok := h.storeProduct(c, store)
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), product.ID); err != nil {
		h.log.Error().Err(err).Msg("delete product failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	h.invalidateProductCache(c, store.ID)
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) storeProduct(c *gin.Context, store models.Store) (models.Product, bool) {
	product, err := h.products.GetByID(c.Request.Context(), c.Param("productId"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		} else {
			h.log.Error().Err(err).Msg("load product failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return models.Product{}, false
	}
	if product.StoreID != store.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "product_not_found"})
		return models.Product{}, false
	}
	return product, true
}

func (h HandlerSet) invalidateProductCache(c *gin.Context, storeID string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.Del(c.Request.Context(), productCacheKey(storeID)).Err(); err != nil {
		h.log.Warn().Err(err).Str("store_id", storeID).Msg("product cache invalidation failed")
	}
}
