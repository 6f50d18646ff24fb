package httpserver

import (
	"net/http"

	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type addCartItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

type cartResponse struct {
	Items      []domain.CartLineItem `json:"items"`
	Count      int                   `json:"count"`
	Total      decimal.Decimal       `json:"total"`
	Persistent bool                  `json:"persistent"`
}

func cartView(sess *session.Session) cartResponse {
	return cartResponse{
		Items:      sess.Cart.Items(),
		Count:      sess.Cart.Count(),
		Total:      sess.Cart.Total(),
		Persistent: sess.Cart.Persistent(),
	}
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartView(sessionFrom(c)))
}

// addCartItem looks the product up so price, name and image come from the
// catalog rather than the browser.
func (h *handlers) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "productId is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 {
		respondError(c, http.StatusBadRequest, "Quantity must be positive")
		return
	}
	product, err := h.backend.GetProduct(c.Request.Context(), req.ProductID)
	if err != nil {
		respondBackendError(c, h.logger, err, "Product not found")
		return
	}
	sess := sessionFrom(c)
	sess.Cart.Add(c.Request.Context(), product.CartLine(req.Quantity), req.Quantity)
	c.JSON(http.StatusOK, cartView(sess))
}

// updateCartItem sets the quantity; zero or less removes the line.
func (h *handlers) updateCartItem(c *gin.Context) {
	var req updateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "quantity is required")
		return
	}
	sess := sessionFrom(c)
	sess.Cart.UpdateQuantity(c.Request.Context(), c.Param("id"), *req.Quantity)
	c.JSON(http.StatusOK, cartView(sess))
}

func (h *handlers) removeCartItem(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Cart.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, cartView(sess))
}

func (h *handlers) clearCart(c *gin.Context) {
	sess := sessionFrom(c)
	sess.Cart.Clear(c.Request.Context())
	c.JSON(http.StatusOK, cartView(sess))
}
