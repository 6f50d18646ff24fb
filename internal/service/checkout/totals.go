package checkout

import (
	"strconv"
	"strings"

	"veggi-storefront/internal/domain"

	"github.com/shopspring/decimal"
)

// DefaultShippingFee is the flat delivery charge added to every order.
var DefaultShippingFee = decimal.NewFromInt(50)

type Totals struct {
	ItemsPrice    decimal.Decimal `json:"itemsPrice"`
	ShippingPrice decimal.Decimal `json:"shippingPrice"`
	TaxPrice      decimal.Decimal `json:"taxPrice"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
}

func ComputeTotals(items []domain.CartLineItem, shippingFee decimal.Decimal) Totals {
	itemsPrice := decimal.Zero
	for _, item := range items {
		itemsPrice = itemsPrice.Add(item.LineTotal())
	}
	tax := decimal.Zero
	return Totals{
		ItemsPrice:    itemsPrice,
		ShippingPrice: shippingFee,
		TaxPrice:      tax,
		TotalPrice:    itemsPrice.Add(shippingFee).Add(tax),
	}
}

// Amount is the total formatted the way the gateway expects it.
func (t Totals) Amount() string {
	return t.TotalPrice.StringFixed(2)
}

func orderItems(items []domain.CartLineItem) []domain.OrderItem {
	out := make([]domain.OrderItem, 0, len(items))
	for _, item := range items {
		product := item.ID
		if product == "" {
			product = item.Product
		}
		out = append(out, domain.OrderItem{
			Product:  product,
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: item.Quantity,
		})
	}
	return out
}

// itemSummary renders "Carrots x 2, Leeks x 1".
func itemSummary(items []domain.CartLineItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Name+" x "+strconv.Itoa(item.Quantity))
	}
	return strings.Join(parts, ", ")
}
