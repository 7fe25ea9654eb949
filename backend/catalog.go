package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ProductPage is a filtered slice of the catalog.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}

// ListProducts fetches one page of the catalog; query carries the encoded
// filter/pagination state.
func (c *Client) ListProducts(ctx context.Context, query url.Values) (*ProductPage, error) {
	path := "/api/products"
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}
	var page ProductPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProduct fetches a single product with its variants.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/products/%s", url.PathEscape(id)), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// ListCategories fetches all catalog categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}
