package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Cart calls return the updated cart so local view state can reconcile
// against the server copy after every mutation.

// GetCart fetches the cart for userID (a username, or the anonymous
// session ID before login).
func (c *Client) GetCart(ctx context.Context, userID string) ([]CartItem, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/carts/%s", url.PathEscape(userID)), nil, &cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// AddCartItem adds an item (or increments the matching line) and returns
// the server's cart.
func (c *Client) AddCartItem(ctx context.Context, userID string, item CartItem) ([]CartItem, error) {
	var cart Cart
	path := fmt.Sprintf("/api/carts/%s/items", url.PathEscape(userID))
	if err := c.do(ctx, http.MethodPost, path, item, &cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// UpdateCartItem sets the quantity of one cart line and returns the
// server's cart.
func (c *Client) UpdateCartItem(ctx context.Context, userID, productID, variantID string, quantity int32) ([]CartItem, error) {
	var cart Cart
	path := fmt.Sprintf("/api/carts/%s/items/%s/%s", url.PathEscape(userID), url.PathEscape(productID), url.PathEscape(variantID))
	body := CartItem{ProductID: productID, VariantID: variantID, Quantity: quantity}
	if err := c.do(ctx, http.MethodPut, path, body, &cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// RemoveCartItem deletes one cart line and returns the server's cart.
func (c *Client) RemoveCartItem(ctx context.Context, userID, productID, variantID string) ([]CartItem, error) {
	var cart Cart
	path := fmt.Sprintf("/api/carts/%s/items/%s/%s", url.PathEscape(userID), url.PathEscape(productID), url.PathEscape(variantID))
	if err := c.do(ctx, http.MethodDelete, path, nil, &cart); err != nil {
		return nil, err
	}
	return cart.Items, nil
}

// EmptyCart drops the whole cart.
func (c *Client) EmptyCart(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/carts/%s", url.PathEscape(userID)), nil, nil)
}
