package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"veggi-storefront/internal/domain"
)

type productResponse struct {
	Success bool           `json:"success"`
	Product domain.Product `json:"product"`
}

// ListProducts returns one catalog page filtered by keyword.
func (c *Client) ListProducts(ctx context.Context, page int, keyword string) (*domain.ProductPage, error) {
	if page < 1 {
		page = 1
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("search", keyword)

	var out domain.ProductPage
	if _, err := c.call(ctx, http.MethodGet, c.apiBase, "/products?"+q.Encode(), "", nil, &out); err != nil {
		return nil, err
	}
	valid := out.Products[:0]
	for _, p := range out.Products {
		if err := p.Validate(); err != nil {
			c.logger.Sugar().Warnf("dropping invalid product from listing: %v", err)
			continue
		}
		valid = append(valid, p)
	}
	out.Products = valid
	if out.TotalPages == 0 {
		out.TotalPages = totalPages(out.FilteredProductsCount, out.ResPerPage)
	}
	return &out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out productResponse
	if _, err := c.call(ctx, http.MethodGet, c.apiBase, "/products/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	if err := out.Product.Validate(); err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &out.Product, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, in domain.ProductInput) (*domain.Product, error) {
	var out productResponse
	if _, err := c.call(ctx, http.MethodPost, c.apiBase, "/products/new", token, in, &out); err != nil {
		return nil, err
	}
	if err := out.Product.Validate(); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &out.Product, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, in domain.ProductInput) (*domain.Product, error) {
	var out productResponse
	if _, err := c.call(ctx, http.MethodPut, c.apiBase, "/products/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	if err := out.Product.Validate(); err != nil {
		return nil, fmt.Errorf("update product %s: %w", id, err)
	}
	return &out.Product, nil
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	_, err := c.call(ctx, http.MethodDelete, c.apiBase, "/products/"+url.PathEscape(id), token, nil, nil)
	return err
}

func totalPages(count, perPage int) int {
	if perPage <= 0 || count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}
