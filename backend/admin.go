package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Admin calls. The route guard keeps these behind the admin role; the
// backend enforces it again on its side.

// ListUsers fetches all accounts.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateUserRole changes an account's role.
func (c *Client) UpdateUserRole(ctx context.Context, userID, role string) (*User, error) {
	var user User
	path := fmt.Sprintf("/api/admin/users/%s/role", url.PathEscape(userID))
	body := struct {
		Role string `json:"role"`
	}{Role: role}
	if err := c.do(ctx, http.MethodPut, path, body, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes an account.
func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/users/%s", url.PathEscape(userID)), nil, nil)
}

// ListAllOrders fetches every order, optionally filtered by status.
func (c *Client) ListAllOrders(ctx context.Context, status string) ([]Order, error) {
	path := "/api/admin/orders"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var orders []Order
	if err := c.do(ctx, http.MethodGet, path, nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus requests a server-side status transition.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status string) (*Order, error) {
	var order Order
	path := fmt.Sprintf("/api/admin/orders/%s/status", url.PathEscape(orderID))
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	if err := c.do(ctx, http.MethodPut, path, body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// CreateProduct adds a catalog entry.
func (c *Client) CreateProduct(ctx context.Context, product Product) (*Product, error) {
	var created Product
	if err := c.do(ctx, http.MethodPost, "/api/admin/products", product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateProduct replaces a catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, product Product) (*Product, error) {
	var updated Product
	path := fmt.Sprintf("/api/admin/products/%s", url.PathEscape(product.ID))
	if err := c.do(ctx, http.MethodPut, path, product, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/admin/products/%s", url.PathEscape(id)), nil, nil)
}
