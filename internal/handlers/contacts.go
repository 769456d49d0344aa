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

type contactRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type contactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func toContactResponse(contact models.Contact) contactResponse {
	return contactResponse{
		ID:        contact.ID,
		Name:      contact.Name,
		Email:     contact.Email,
		Phone:     contact.Phone,
		CreatedAt: contact.CreatedAt,
	}
}

func (h HandlerSet) CreateContact(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	contact := models.Contact{
		ID:        ids.New(),
		AccountID: account.ID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	}

	if err := h.contacts.Create(c.Request.Context(), contact); err != nil {
		h.log.Error().Err(err).Msg("create contact failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"contact": toContactResponse(contact)})
}

func (h HandlerSet) ListContacts(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	contacts, err := h.contacts.ListByAccount(c.Request.Context(), account.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("list contacts failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	items := make([]contactResponse, 0, len(contacts))
	for _, contact := range contacts {
		items = append(items, toContactResponse(contact))
	}
	c.JSON(http.StatusOK, gin.H{"contacts": items})
}

func (h HandlerSet) UpdateContact(c *gin.Context) {
	contact, ok := h.ownedContact(c)
	if !ok {
		return
	}

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	contact.Name = req.Name
	contact.Email = req.Email
	contact.Phone = req.Phone

	if err := h.contacts.Update(c.Request.Context(), contact); err != nil {
		h.log.Error().Err(err).Msg("update contact failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contact": toContactResponse(contact)})
}

func (h HandlerSet) DeleteContact(c *gin.Context) {
	contact, ok := h.ownedContact(c)
	if !ok {
		return
	}

	if err := h.contacts.Delete(c.Request.Context(), contact.ID); err != nil {
		h.log.Error().Err(err).Msg("delete contact failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h HandlerSet) ownedContact(c *gin.Context) (models.Contact, bool) {
	account, ok := currentAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return models.Contact{}, false
	}

	contact, err := h.contacts.GetByID(c.Request.Context(), c.Param("contactId"))
	if err != nil {
		if errors.Is(err, repository.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "contact_not_found"})
		} else {
			h.log.Error().Err(err).Msg("load contact failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return models.Contact{}, false
	}
	if contact.AccountID != account.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "contact_not_found"})
		return models.Contact{}, false
	}
	return contact, true
}
