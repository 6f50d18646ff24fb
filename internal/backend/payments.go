package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"veggi-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// HashRequest asks the backend to sign a hosted payment.
type HashRequest struct {
	Amount     decimal.Decimal    `json:"amount"`
	UserID     string             `json:"userId"`
	OrderItems []domain.OrderItem `json:"orderItems"`
}

// HashResponse is the signed payload handed to the payment widget.
type HashResponse struct {
	MerchantID string `json:"merchantId"`
	OrderID    string `json:"orderId"`
	Hash       string `json:"hash"`
}

// PaymentHash fetches the signature for a hosted payment. Every failure is
// reported as a hash failure so callers can tell it apart from order errors.
func (c *Client) PaymentHash(ctx context.Context, token string, in HashRequest) (*HashResponse, error) {
	var out HashResponse
	if _, err := c.call(ctx, http.MethodPost, c.paymentBase, "/payments/hash", token, in, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			c.logger.Sugar().Errorf("hash error: status=%d body=%q", apiErr.Status, apiErr.Message)
			return nil, fmt.Errorf("Payment hash failed: %d", apiErr.Status)
		}
		return nil, fmt.Errorf("Payment hash failed: %w", err)
	}
	if out.Hash == "" || out.MerchantID == "" {
		return nil, errors.New("Payment hash failed: incomplete response")
	}
	return &out, nil
}

// ConfirmPayment marks the order paid after the gateway reported completion.
func (c *Client) ConfirmPayment(ctx context.Context, token, orderID string, in domain.PaymentConfirmation) error {
	_, err := c.call(ctx, http.MethodPut, c.paymentBase, "/order/"+url.PathEscape(orderID)+"/pay", token, in, nil)
	return err
}
