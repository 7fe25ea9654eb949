package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Address mutations return the authoritative address list; the backend
// owns default-flag bookkeeping, the storefront only displays it.

// ListAddresses fetches the caller's address book.
func (c *Client) ListAddresses(ctx context.Context) ([]Address, error) {
	var addresses []Address
	if err := c.do(ctx, http.MethodGet, "/api/users/me/addresses", nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// AddAddress appends an address and returns the updated list.
func (c *Client) AddAddress(ctx context.Context, street, city string) ([]Address, error) {
	var addresses []Address
	body := Address{Street: street, City: city}
	if err := c.do(ctx, http.MethodPost, "/api/users/me/addresses", body, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// SetDefaultAddress marks one address as the default and returns the
// updated list, which carries exactly one default entry.
func (c *Client) SetDefaultAddress(ctx context.Context, id string) ([]Address, error) {
	var addresses []Address
	path := fmt.Sprintf("/api/users/me/addresses/%s/default", url.PathEscape(id))
	if err := c.do(ctx, http.MethodPut, path, nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}

// DeleteAddress removes an address and returns the updated list.
func (c *Client) DeleteAddress(ctx context.Context, id string) ([]Address, error) {
	var addresses []Address
	path := fmt.Sprintf("/api/users/me/addresses/%s", url.PathEscape(id))
	if err := c.do(ctx, http.MethodDelete, path, nil, &addresses); err != nil {
		return nil, err
	}
	return addresses, nil
}
