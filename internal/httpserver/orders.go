package httpserver

import (
	"net/http"

	"veggi-storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlers) myOrders(c *gin.Context) {
	orders, err := h.backend.MyOrders(c.Request.Context(), sessionFrom(c).Token())
	if err != nil {
		respondBackendError(c, h.logger, err, "Could not load orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.backend.GetOrder(c.Request.Context(), sessionFrom(c).Token(), c.Param("id"))
	if err != nil {
		respondBackendError(c, h.logger, err, "Order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *handlers) allOrders(c *gin.Context) {
	orders, err := h.backend.AllOrders(c.Request.Context(), sessionFrom(c).Token())
	if err != nil {
		respondBackendError(c, h.logger, err, "Could not load orders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req orderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !domain.ValidOrderStatus(req.Status) {
		respondError(c, http.StatusUnprocessableEntity, "Status must be Processing, Shipped or Delivered")
		return
	}
	order, err := h.backend.UpdateOrderStatus(c.Request.Context(), sessionFrom(c).Token(), c.Param("id"), req.Status)
	if err != nil {
		respondBackendError(c, h.logger, err, "Could not update order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

func (h *handlers) deleteOrder(c *gin.Context) {
	if err := h.backend.DeleteOrder(c.Request.Context(), sessionFrom(c).Token(), c.Param("id")); err != nil {
		respondBackendError(c, h.logger, err, "Could not delete order")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
