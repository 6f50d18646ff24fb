package domain

import "github.com/shopspring/decimal"

// CartLineItem is one product held in a shopper's cart.
type CartLineItem struct {
	ID       string          `json:"id"`
	Product  string          `json:"product,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Quantity int             `json:"quantity"`
	Stock    int             `json:"stock"`
}

// LineTotal is price times quantity.
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
