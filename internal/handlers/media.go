package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopfront/api/internal/service"
)

type mediaResponse struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Format    string    `json:"format"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h HandlerSet) UploadMedia(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_required"})
		return
	}
	defer file.Close()

	var storeID *string
	if v := c.PostForm("storeId"); v != "" {
		store, err := h.stores.GetByID(c.Request.Context(), v)
		if err != nil || store.OwnerID != account.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_store"})
			return
		}
		storeID = &store.ID
	}

	result, err := h.mediaService.Upload(c.Request.Context(), service.UploadInput{
		Owner:   account,
		StoreID: storeID,
		File:    file,
		Header:  header,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyUpload),
			errors.Is(err, service.ErrUploadTooLarge),
			errors.Is(err, service.ErrTypeMismatch),
			errors.Is(err, service.ErrUnsupportedUpload):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.log.Error().Err(err).Str("account_id", account.ID).Msg("upload failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"media": mediaResponse{
		ID:        result.Asset.ID,
		URL:       result.URL,
		Format:    result.Asset.Format,
		SizeBytes: result.Asset.SizeBytes,
		CreatedAt: result.Asset.CreatedAt,
	}})
}
