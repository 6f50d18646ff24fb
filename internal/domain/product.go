package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// PlaceholderImage is used for cart lines of products without images.
const PlaceholderImage = "/assets/placeholder.png"

type ProductImage struct {
	Image string `json:"image"`
}

type Review struct {
	User    string `json:"user,omitempty"`
	Name    string `json:"name,omitempty"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type Product struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description,omitempty"`
	Ratings      float64         `json:"ratings"`
	Images       []ProductImage  `json:"images"`
	Category     string          `json:"category,omitempty"`
	UnitType     string          `json:"unitType,omitempty"`
	Stock        int             `json:"stock"`
	Freshness    string          `json:"freshness,omitempty"`
	Origin       string          `json:"origin,omitempty"`
	Seller       string          `json:"seller,omitempty"`
	NumOfReviews int             `json:"numOfReviews"`
	Reviews      []Review        `json:"reviews,omitempty"`
	CreatedAt    *time.Time      `json:"createdAt,omitempty"`
}

// Validate checks the fields the storefront relies on.
func (p Product) Validate() error {
	if p.ID == "" {
		return errors.New("product: missing _id")
	}
	if p.Name == "" {
		return errors.New("product: missing name")
	}
	if p.Price.IsNegative() {
		return errors.New("product: negative price")
	}
	return nil
}

// PrimaryImage returns the first image or the placeholder.
func (p Product) PrimaryImage() string {
	if len(p.Images) > 0 && p.Images[0].Image != "" {
		return p.Images[0].Image
	}
	return PlaceholderImage
}

// CartLine builds the cart line item for this product.
func (p Product) CartLine(quantity int) CartLineItem {
	return CartLineItem{
		ID:       p.ID,
		Product:  p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Image:    p.PrimaryImage(),
		Quantity: quantity,
		Stock:    p.Stock,
	}
}

// ProductPage is one page of the catalog listing.
type ProductPage struct {
	Products              []Product `json:"products"`
	ProductsCount         int       `json:"productsCount"`
	ResPerPage            int       `json:"resPerPage"`
	FilteredProductsCount int       `json:"filteredProductsCount"`
	TotalPages            int       `json:"totalPages"`
}

// ProductInput is the admin create/update payload.
type ProductInput struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	UnitType    string          `json:"unitType"`
	Stock       int             `json:"stock"`
	Freshness   string          `json:"freshness"`
	Origin      string          `json:"origin"`
	Seller      string          `json:"seller"`
	Images      []ProductImage  `json:"images"`
}
