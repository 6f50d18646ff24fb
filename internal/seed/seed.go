package seed

import (
	"context"
	"fmt"
	"strings"

	"veggi-storefront/internal/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Catalog is the admin side of the product API.
type Catalog interface {
	ListProducts(ctx context.Context, page int, keyword string) (*domain.ProductPage, error)
	CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error)
}

type productSeed struct {
	Name        string
	Price       string
	Description string
	Category    string
	UnitType    string
	Stock       int
	Freshness   string
	Origin      string
	Seller      string
	Image       string
}

var demoProducts = []productSeed{
	{
		Name:        "Demo Carrots",
		Price:       "180",
		Description: "Crunchy upcountry carrots for demo purposes",
		Category:    "Vegetables",
		UnitType:    "kg",
		Stock:       50,
		Freshness:   "Harvested today",
		Origin:      "Nuwara Eliya",
		Seller:      "Demo Farm",
		Image:       "/assets/demo/carrots.jpg",
	},
	{
		Name:        "Demo Spinach",
		Price:       "90",
		Description: "Leafy spinach bunch for demo purposes",
		Category:    "Leafy Greens",
		UnitType:    "bunch",
		Stock:       30,
		Freshness:   "Harvested today",
		Origin:      "Kandy",
		Seller:      "Demo Farm",
		Image:       "/assets/demo/spinach.jpg",
	},
}

// Apply creates the demo catalog for manual testing. Products whose name is
// already listed are skipped, so running it twice is harmless.
func Apply(ctx context.Context, catalog Catalog, token string, logger *zap.Logger) (int, error) {
	created := 0
	for _, p := range demoProducts {
		exists, err := listed(ctx, catalog, p.Name)
		if err != nil {
			return created, fmt.Errorf("look up product %s: %w", p.Name, err)
		}
		if exists {
			logger.Debug("seed product exists", zap.String("name", p.Name))
			continue
		}
		if _, err := catalog.CreateProduct(ctx, token, p.input()); err != nil {
			return created, fmt.Errorf("create product %s: %w", p.Name, err)
		}
		created++
	}
	return created, nil
}

func listed(ctx context.Context, catalog Catalog, name string) (bool, error) {
	page, err := catalog.ListProducts(ctx, 1, name)
	if err != nil {
		return false, err
	}
	for _, p := range page.Products {
		if strings.EqualFold(p.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (p productSeed) input() domain.ProductInput {
	return domain.ProductInput{
		Name:        p.Name,
		Price:       decimal.RequireFromString(p.Price),
		Description: p.Description,
		Category:    p.Category,
		UnitType:    p.UnitType,
		Stock:       p.Stock,
		Freshness:   p.Freshness,
		Origin:      p.Origin,
		Seller:      p.Seller,
		Images:      []domain.ProductImage{{Image: p.Image}},
	}
}
