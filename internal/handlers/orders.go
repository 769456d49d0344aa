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

type orderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerID string             `json:"customerId" binding:"required"`
	Currency   string             `json:"currency" binding:"required,len=3"`
	Items      []orderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type orderItemResponse struct {
	ProductID      string `json:"productId"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
}

type orderResponse struct {
	ID         string              `json:"id"`
	StoreID    string              `json:"storeId"`
	CustomerID string              `json:"customerId"`
	Status     string              `json:"status"`
	TotalCents int64               `json:"totalCents"`
	Currency   string              `json:"currency"`
	Items      []orderItemResponse `json:"items,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func toOrderResponse(order models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ProductID:      item.ProductID,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
		})
	}
	return orderResponse{
		ID:         order.ID,
		StoreID:    order.StoreID,
		CustomerID: order.CustomerID,
		Status:     string(order.Status),
		TotalCents: order.TotalCents,
		Currency:   order.Currency,
		Items:      items,
		CreatedAt:  order.CreatedAt,
	}
}

func (h HandlerSet) CreateOrder(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	orderID := ids.New()
	order := models.Order{
		ID:         orderID,
		StoreID:    store.ID,
		CustomerID: req.CustomerID,
		Status:     models.OrderStatusPending,
		Currency:   req.Currency,
	}

	// Unit prices come from the catalog at order time, not from the caller.
	for _, item := range req.Items {
		product, err := h.products.GetByID(c.Request.Context(), item.ProductID)
		if err != nil || product.StoreID != store.ID {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown_product"})
			return
		}
		order.Items = append(order.Items, models.OrderItem{
			ID:             ids.New(),
			OrderID:        orderID,
			ProductID:      product.ID,
			Quantity:       item.Quantity,
			UnitPriceCents: product.PriceCents,
		})
		order.TotalCents += product.PriceCents * int64(item.Quantity)
	}

	if err := h.orders.Create(c.Request.Context(), order); err != nil {
		h.log.Error().Err(err).Msg("create order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"order": toOrderResponse(order)})
}

func (h HandlerSet) ListOrders(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	limit, offset := pageParams(c)
	orders, err := h.orders.ListByStore(c.Request.Context(), store.ID, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("list orders failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	items := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items = append(items, toOrderResponse(order))
	}
	c.JSON(http.StatusOK, gin.H{"orders": items})
}

func (h HandlerSet) GetOrder(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	order, ok := h.storeOrder(c, store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": toOrderResponse(order)})
}

func (h HandlerSet) UpdateOrderStatus(c *gin.Context) {
	store, ok := h.ownedStore(c)
	if !ok {
		return
	}

	order, ok := h.storeOrder(c, store)
	if !ok {
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required,oneof=pending paid shipped cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input"})
		return
	}

	if err := h.orders.UpdateStatus(c.Request.Context(), order.ID, order.Status, req.Status); err != nil {
		if errors.Is(err, repository.ErrOrderStatusChange) {
			c.JSON(http.StatusConflict, gin.H{"error": "status_transition_not_allowed"})
			return
		}
		h.log.Error().Err(err).Msg("update order status failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		return
	}

	order.Status = req.Status
	c.JSON(http.StatusOK, gin.H{"order": toOrderResponse(order)})
}

func (h HandlerSet) storeOrder(c *gin.Context, store models.Store) (models.Order, bool) {
	order, err := h.orders.GetByID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
		} else {
			h.log.Error().Err(err).Msg("load order failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
		}
		return models.Order{}, false
	}
	if order.StoreID != store.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found"})
		return models.Order{}, false
	}
	return order, true
}
