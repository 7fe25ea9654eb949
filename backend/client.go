// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TokenSource yields the bearer token for the current session, or "" when
// the session is anonymous.
type TokenSource interface {
	Token() string
}

// Error is a non-2xx response from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// IsAuthError reports whether err is a session-expiry signal (HTTP 401),
// the only status code the storefront gives protocol-level meaning to.
func IsAuthError(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is an HTTP 404 from the backend.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Status == http.StatusNotFound
}

// Client issues authenticated requests against the backend REST API.
type Client struct {
	addr          string
	httpClient    *http.Client
	tokens        TokenSource
	onAuthExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithTokenSource attaches a bearer token source to every request.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithAuthExpiredHook registers the callback invoked on HTTP 401 before
// the error is returned to the caller. The hook is expected to clear the
// session; the Client itself holds no session state.
func WithAuthExpiredHook(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// WithHTTPClient overrides the underlying transport (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client for the backend at addr (host:port).
func New(addr string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		addr: addr,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type errorEnvelope struct {
	Error string `json:"error"`
}

// do issues one request and decodes the JSON response into out (when out
// is non-nil). Bodies are JSON-encoded. A non-2xx status becomes an
// *Error; 401 additionally fires the auth-expired hook.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, fmt.Sprintf("http://%s%s", c.addr, path), body)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		msg := string(raw)
		var envelope errorEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Error != "" {
			msg = envelope.Error
		}
		if resp.StatusCode == http.StatusUnauthorized && c.onAuthExpired != nil {
			c.onAuthExpired()
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}
