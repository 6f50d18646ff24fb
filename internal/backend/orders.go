package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"veggi-storefront/internal/domain"
)

type orderResponse struct {
	Success bool         `json:"success"`
	Order   domain.Order `json:"order"`
}

type ordersResponse struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
}

// CreateOrder submits a new order and returns it as stored by the backend.
func (c *Client) CreateOrder(ctx context.Context, token string, in domain.OrderSubmission) (*domain.Order, error) {
	var out orderResponse
	if _, err := c.call(ctx, http.MethodPost, c.apiBase, "/order/new", token, in, &out); err != nil {
		return nil, err
	}
	if err := out.Order.Validate(); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &out.Order, nil
}

func (c *Client) GetOrder(ctx context.Context, token, id string) (*domain.Order, error) {
	var out orderResponse
	if _, err := c.call(ctx, http.MethodGet, c.apiBase, "/order/"+url.PathEscape(id), token, nil, &out); err != nil {
		return nil, err
	}
	if err := out.Order.Validate(); err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return &out.Order, nil
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]domain.Order, error) {
	return c.listOrders(ctx, token, "/order/myorders")
}

// AllOrders lists every order; admin only.
func (c *Client) AllOrders(ctx context.Context, token string) ([]domain.Order, error) {
	return c.listOrders(ctx, token, "/order")
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, id, status string) (*domain.Order, error) {
	var out orderResponse
	body := map[string]string{"status": status}
	if _, err := c.call(ctx, http.MethodPut, c.apiBase, "/order/"+url.PathEscape(id), token, body, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, token, id string) error {
	_, err := c.call(ctx, http.MethodDelete, c.apiBase, "/order/"+url.PathEscape(id), token, nil, nil)
	return err
}

func (c *Client) listOrders(ctx context.Context, token, path string) ([]domain.Order, error) {
	var out ordersResponse
	if _, err := c.call(ctx, http.MethodGet, c.apiBase, path, token, nil, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		out.Orders = []domain.Order{}
	}
	return out.Orders, nil
}
