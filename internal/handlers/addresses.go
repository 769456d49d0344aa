package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shopfront/api/internal/ids"
	"shopfront/api/internal/models"
	"shopfront/api/internal/repository"
)

type addressRequest struct {
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	Region     string `json:"region"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required,len=2"`
}

type addressResponse struct {
	ID         string    `json:"id"`
	Line1      string    `json:"line1"`
	Line2      string    `json:"line2,omitempty"`
	City       string    `json:"city"`
	Region     string    `json:"region,omitempty"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"isDefault"`
	CreatedAt  time.Time `json:"createdAt"`
}

func toAddressResponse(address models.Address) addressResponse {
	return addressResponse{
		ID:         address.ID,
		Line1:      address.Line1,
		Line2:      address.Line2,
		City:       address.City,
		Region:     address.Region,
		PostalCode: address.PostalCode,
		Country:    address.Country,
		IsDefault:  address.IsDefault,
		CreatedAt:  address.CreatedAt,
	}
}

func (h HandlerSet) CreateAddress(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	address := models.Address{
		ID:         ids.New(),
		AccountID:  account.ID,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		Region:     req.Region,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	}

	if err := h.addresses.Create(c.Request.Context(), address); err != nil {
		h.log.Error().Err(err).Msg("create address failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"address": toAddressResponse(address)})
}

func (h HandlerSet) ListAddresses(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	addresses, err := h.addresses.ListByAccount(c.Request.Context(), account.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("list addresses failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	items := make([]addressResponse, 0, len(addresses))
	for _, address := range addresses {
		items = append(items, toAddressResponse(address))
	}
	c.JSON(http.StatusOK, gin.H{"addresses": items})
}

func (h HandlerSet) UpdateAddress(c *gin.Context) {
	address, ok := h.ownedAddress(c)
	if !ok {
		return
	}

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	address.Line1 = req.Line1
	address.Line2 = req.Line2
	address.City = req.City
	address.Region = req.Region
	address.PostalCode = req.PostalCode
	address.Country = req.Country

	if err := h.addresses.Update(c.Request.Context(), address); err != nil {
		h.log.Error().Err(err).Msg("update address failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"address": toAddressResponse(address)})
}

func (h HandlerSet) SetDefaultAddress(c *gin.Context) {
	address, ok := h.ownedAddress(c)
	if !ok {
		return
	}

	if err := h.addresses.SetDefault(c.Request.Context(), address.AccountID, address.ID); err != nil {
		h.log.Error().Err(err).Msg("set default address failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	address.IsDefault = true
	c.JSON(http.StatusOK, gin.H{"address": toAddressResponse(address)})
}

func (h HandlerSet) DeleteAddress(c *gin.Context) {
	address, ok := h.ownedAddress(c)
	if !ok {
		return
	}

	if err := h.addresses.Delete(c.Request.Context(), address.ID); err != nil {
		h.log.Error().Err(err).Msg("delete address failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ownedAddress(c *gin.Context) (models.Address, bool) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.Address{}, false
	}

	address, err := h.addresses.GetByID(c.Request.Context(), c.Param("addressId"))
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "address_not_found"})
		} else {
			h.log.Error().Err(err).Msg("load address failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return models.Address{}, false
	}
	if address.AccountID != account.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "address_not_found"})
		return models.Address{}, false
	}
	return address, true
}
