package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses an admin may set.
const (
	OrderStatusProcessing = "Processing"
	OrderStatusShipped    = "Shipped"
	OrderStatusDelivered  = "Delivered"
)

type Order struct {
	ID            string          `json:"_id"`
	User          string          `json:"user,omitempty"`
	OrderItems    []OrderItem     `json:"orderItems"`
	ShippingInfo  *ShippingInfo   `json:"shippingInfo,omitempty"`
	PaymentInfo   *PaymentInfo    `json:"paymentInfo,omitempty"`
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	OrderStatus   string          `json:"orderStatus"`
	PaidAt        *time.Time      `json:"paidAt,omitempty"`
	DeliveredAt   *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt     *time.Time      `json:"createdAt,omitempty"`
}

// Validate rejects orders the backend returned without an identifier.
func (o Order) Validate() error {
	if o.ID == "" {
		return errors.New("order: missing _id")
	}
	return nil
}

// ValidOrderStatus reports whether s is one of the admin-settable statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}
