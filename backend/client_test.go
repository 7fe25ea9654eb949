package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

// newTestClient points a Client at an httptest server.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append(opts, WithHTTPClient(srv.Client()))
	return New(strings.TrimPrefix(srv.URL, "http://"), 5*time.Second, opts...)
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var authorization string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(Product{ID: "p1"})
	}, WithTokenSource(staticToken("tok-123")))

	_, err := client.GetProduct(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", authorization)
}

func TestDo_AnonymousSendsNoAuthorizationHeader(t *testing.T) {
	var authorization string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]Category{})
	}, WithTokenSource(staticToken("")))

	_, err := client.ListCategories(context.Background())

	require.NoError(t, err)
	assert.Empty(t, authorization)
}

func TestDo_ErrorEnvelopeBecomesBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "product not found"})
	})

	_, err := client.GetProduct(context.Background(), "nope")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusNotFound, be.Status)
	assert.Equal(t, "product not found", be.Message)
}

func TestDo_PlainTextErrorBodyKept(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := client.ListCategories(context.Background())

	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadGateway, be.Status)
	assert.Equal(t, "upstream exploded", strings.TrimSpace(be.Message))
}

func TestDo_UnauthorizedFiresAuthExpiredHook(t *testing.T) {
	hookFired := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "token expired"})
	}, WithAuthExpiredHook(func() { hookFired = true }))

	_, err := client.GetProfile(context.Background())

	require.Error(t, err)
	assert.True(t, IsAuthError(err))
	assert.True(t, hookFired, "401 must clear the session before the error propagates")
}

func TestDo_OtherStatusesDoNotFireHook(t *testing.T) {
	hookFired := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, WithAuthExpiredHook(func() { hookFired = true }))

	_, err := client.GetProfile(context.Background())

	require.Error(t, err)
	assert.False(t, IsAuthError(err))
	assert.False(t, hookFired)
}

func TestDo_EncodesRequestBodyAsJSON(t *testing.T) {
	var (
		contentType string
		received    Credentials
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(LoginResult{Token: "tok"})
	})

	result, err := client.Login(context.Background(), Credentials{Email: "an@example.com", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "an@example.com", received.Email)
	assert.Equal(t, "tok", result.Token)
}

func TestListProducts_EncodesQuery(t *testing.T) {
	var rawQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(ProductPage{Total: 0})
	})

	query := map[string][]string{"category": {"ao-thun"}, "page": {"2"}}
	_, err := client.ListProducts(context.Background(), query)

	require.NoError(t, err)
	assert.Contains(t, rawQuery, "category=ao-thun")
	assert.Contains(t, rawQuery, "page=2")
}
