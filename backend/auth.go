package backend

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, reg Registration) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register", reg, nil)
}

// GetProfile resolves the user behind the current bearer token.
func (c *Client) GetProfile(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/api/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
