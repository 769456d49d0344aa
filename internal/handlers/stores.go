package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"shopfront/api/internal/ids"
	"shopfront/api/internal/models"
	"shopfront/api/internal/repository"
)

type storeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Description string  `json:"description"`
	LogoURL     *string `json:"logoUrl"`
}

type storeResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"ownerId"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	LogoURL     *string   `json:"logoUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toStoreResponse(store models.Store) storeResponse {
	return storeResponse{
		ID:          store.ID,
		OwnerID:     store.OwnerID,
		Name:        store.Name,
		Slug:        store.Slug,
		Description: store.Description,
		LogoURL:     store.LogoURL,
		CreatedAt:   store.CreatedAt,
	}
}

func (h HandlerSet) CreateStore(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req storeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	store := models.Store{
		ID:          ids.New(),
		OwnerID:     account.ID,
		Name:        req.Name,
		Slug:        strings.ToLower(req.Slug),
		Description: req.Description,
		LogoURL:     req.LogoURL,
	}

	if err := h.stores.Create(c.Request.Context(), store); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlug) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "slug_already_taken"})
			return
		}
		h.log.Error().Err(err).Msg("create store failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"store": toStoreResponse(store)})
}

func (h HandlerSet) ListStores(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	stores, err := h.stores.ListByOwner(c.Request.Context(), account.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("list stores failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	items := make([]storeResponse, 0, len(stores))
	for _, store := range stores {
		items = append(items, toStoreResponse(store))
	}
	c.JSON(http.StatusOK, gin.H{"stores": items})
}

func (h HandlerSet) GetStore(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": toStoreResponse(store)})
}

func (h HandlerSet) UpdateStore(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		LogoURL     *string `json:"logoUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	store.Name = req.Name
	store.Description = req.Description
	store.LogoURL = req.LogoURL

	if err := h.stores.Update(c.Request.Context(), store); err != nil {
		h.log.Error().Err(err).Msg("update store failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"store": toStoreResponse(store)})
}

func (h HandlerSet) DeleteStore(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	if err := h.stores.Delete(c.Request.Context(), store.ID); err != nil {
		h.log.Error().Err(err).Msg("delete store failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ownedStore loads the path store and enforces ownership. Admins may touch
// any store. On failure the response is already written.
func (h HandlerSet) ownedStore(c *gin.Context) (models.Store, bool) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.Store{}, false
	}

	store, err := h.stores.GetByID(c.Request.Context(), c.Param("storeId"))
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "store_not_found"})
		} else {
			h.log.Error().Err(err).Msg("load store failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return models.Store{}, false
	}

	if store.OwnerID != account.ID && account.Role != models.AccountRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return models.Store{}, false
	}

	return store, true
}
