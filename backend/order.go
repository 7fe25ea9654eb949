package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// CreateOrder places an order from the submitted cart snapshot.
func (c *Client) CreateOrder(ctx context.Context, req PlaceOrderRequest) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrders fetches the caller's order history.
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder fetches one order.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/orders/%s", url.PathEscape(id)), nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CancelOrder requests cancellation; the backend only honors it for
// orders still in the pending status.
func (c *Client) CancelOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/api/orders/%s/cancel", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, nil, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// DecrementStock asks the backend to reserve stock for the given lines.
func (c *Client) DecrementStock(ctx context.Context, items []CartItem) error {
	body := struct {
		Items []CartItem `json:"items"`
	}{Items: items}
	return c.do(ctx, http.MethodPost, "/api/products/stock/decrement", body, nil)
}
