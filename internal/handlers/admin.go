package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) AdminListAccounts(c *gin.Context) {
	limit, offset := pageParams(c)

	accounts, err := h.accounts.List(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("admin list accounts failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	items := make([]profileResponse, 0, len(accounts))
	for _, account := range accounts {
		items = append(items, toProfile(account))
	}
	c.JSON(http.StatusOK, gin.H{"accounts": items})
}

func (h HandlerSet) AdminListOrders(c *gin.Context) {
	limit, offset := pageParams(c)

	orders, err := h.orders.ListAll(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("admin list orders failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": items})
}
