package httpserver

import (
	"errors"
	"io"
	"net/http"

	"veggi-storefront/internal/domain"
	"veggi-storefront/internal/payment"
	"veggi-storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type checkoutRequest struct {
	ShippingInfo  domain.ShippingInfo `json:"shippingInfo"`
	PaymentMethod checkout.Method     `json:"paymentMethod"`
}

type paymentCompletedRequest struct {
	PaymentID string `json:"paymentId" binding:"required"`
}

type paymentErrorRequest struct {
	Error string `json:"error"`
}

type checkoutStatusResponse struct {
	State  checkout.State   `json:"state"`
	Last   checkout.Outcome `json:"last"`
	Totals checkout.Totals  `json:"totals"`
}

func (h *handlers) checkoutStatus(c *gin.Context) {
	orch := sessionFrom(c).Checkout
	c.JSON(http.StatusOK, checkoutStatusResponse{
		State:  orch.State(),
		Last:   orch.Last(),
		Totals: orch.Totals(),
	})
}

func (h *handlers) submitCheckout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid checkout payload")
		return
	}
	sess := sessionFrom(c)
	out, err := sess.Checkout.Submit(c.Request.Context(), checkout.Request{
		Shipping: req.ShippingInfo,
		Method:   req.PaymentMethod,
		User:     sess.User(),
		Token:    sess.Token(),
	})
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, out)
		return
	case errors.Is(err, checkout.ErrInFlight):
		respondError(c, http.StatusConflict, "Your order is already being processed")
		return
	case err != nil:
		h.logger.Error("checkout failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, checkout.MsgOrderFailed)
		return
	}
	status := http.StatusOK
	if out.State == checkout.StateCompleted {
		status = http.StatusCreated
	}
	c.JSON(status, out)
}

func (h *handlers) paymentCompleted(c *gin.Context) {
	var req paymentCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "paymentId is required")
		return
	}
	sess := sessionFrom(c)
	h.settlePayment(c, sess.Checkout, sess.Payment.Complete(req.PaymentID))
}

func (h *handlers) paymentDismissed(c *gin.Context) {
	sess := sessionFrom(c)
	h.settlePayment(c, sess.Checkout, sess.Payment.Dismiss())
}

func (h *handlers) paymentError(c *gin.Context) {
	// The gateway message is optional; without one the generic failure
	// message is shown.
	var req paymentErrorRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug("unreadable payment error callback", zap.Error(err))
	}
	sess := sessionFrom(c)
	h.settlePayment(c, sess.Checkout, sess.Payment.Fail(req.Error))
}

// settlePayment reports the outcome the widget callback produced.
func (h *handlers) settlePayment(c *gin.Context, orch *checkout.Orchestrator, err error) {
	switch {
	case errors.Is(err, payment.ErrNotStarted):
		respondError(c, http.StatusConflict, "No payment in progress")
		return
	case errors.Is(err, payment.ErrAlreadySettled):
		respondError(c, http.StatusConflict, "Payment already processed")
		return
	case err != nil:
		h.logger.Error("settle payment", zap.Error(err))
		respondError(c, http.StatusInternalServerError, checkout.MsgPaymentFailed)
		return
	}
	c.JSON(http.StatusOK, orch.Last())
}
