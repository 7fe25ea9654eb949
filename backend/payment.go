package backend

import (
	"context"
	"net/http"
	"net/url"
)

// PayURLResult carries the gateway-hosted payment page to redirect the
// browser to.
type PayURLResult struct {
	PayURL string `json:"payUrl"`
}

// CreateMoMoPayment asks the backend's MoMo integration for a redirect URL.
func (c *Client) CreateMoMoPayment(ctx context.Context, orderID string, amount int64) (string, error) {
	body := struct {
		OrderID string `json:"orderId"`
		Amount  int64  `json:"amount"`
	}{OrderID: orderID, Amount: amount}
	var result PayURLResult
	if err := c.do(ctx, http.MethodPost, "/api/payments/momo", body, &result); err != nil {
		return "", err
	}
	return result.PayURL, nil
}

// CreateVNPayPayment asks the backend's VNPay integration for a redirect URL.
func (c *Client) CreateVNPayPayment(ctx context.Context, orderID string, amount int64) (string, error) {
	body := struct {
		OrderID string `json:"orderId"`
		Amount  int64  `json:"amount"`
	}{OrderID: orderID, Amount: amount}
	var result PayURLResult
	if err := c.do(ctx, http.MethodPost, "/api/payments/vnpay", body, &result); err != nil {
		return "", err
	}
	return result.PayURL, nil
}

// VerifyResult is the backend's verdict on a gateway return.
type VerifyResult struct {
	OrderID   string `json:"orderId"`
	Confirmed bool   `json:"confirmed"`
	Message   string `json:"message,omitempty"`
}

// VerifyMoMoReturn forwards the raw MoMo return parameters for
// verification. The storefront never trusts them as proof of payment.
func (c *Client) VerifyMoMoReturn(ctx context.Context, params url.Values) (*VerifyResult, error) {
	var result VerifyResult
	if err := c.do(ctx, http.MethodGet, "/api/payments/momo/verify?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyVNPayReturn forwards the raw VNPay return parameters for
// verification.
func (c *Client) VerifyVNPayReturn(ctx context.Context, params url.Values) (*VerifyResult, error) {
	var result VerifyResult
	if err := c.do(ctx, http.MethodGet, "/api/payments/vnpay/verify?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
