package domain

import "github.com/shopspring/decimal"

const (
	// PaymentIDCashOnDelivery marks an order settled physically at delivery.
	PaymentIDCashOnDelivery = "COD"
	// PaymentIDPending marks an order awaiting the hosted payment gateway.
	PaymentIDPending = "PENDING"

	PaymentStatusPending = "Pending"
	PaymentStatusPaid    = "paid"
)

// ShippingInfo is the delivery address captured on the checkout form.
type ShippingInfo struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PhoneNo    string `json:"phoneNo"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentInfo is the payment reference attached to an order.
type PaymentInfo struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// OrderItem is a line of an order. Product mirrors the product id; the
// backend schema requires it.
type OrderItem struct {
	Product  string          `json:"product"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
}

// OrderSubmission is the payload of POST /order/new.
type OrderSubmission struct {
	OrderItems    []OrderItem     `json:"orderItems"`
	ShippingInfo  ShippingInfo    `json:"shippingInfo"`
	PaymentInfo   PaymentInfo     `json:"paymentInfo"`
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

// PaymentConfirmation is the payload of PUT /order/:id/pay.
type PaymentConfirmation struct {
	Status    string `json:"status"`
	PaymentID string `json:"paymentId"`
}
