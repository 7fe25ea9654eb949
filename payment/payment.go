// Package payment handles gateway return visits: parse the
// provider-specific query parameters, forward them for verification
// exactly once, and report the verdict. Query parameters are never
// trusted as proof of payment.
package payment

import (
	"context"
	"net/url"
	"sync"

	"github.com/pkg/errors"

	"github.com/clothex/storefront/backend"
)

// Provider identifies the gateway that produced a return visit.
type Provider string

const (
	ProviderMoMo  Provider = "momo"
	ProviderVNPay Provider = "vnpay"
)

// Gateway result codes meaning "approved".
const (
	momoSuccessCode  = "0"
	vnpaySuccessCode = "00"
)

// ErrUnrecognized is returned when the query string matches no known
// provider; no verification call is issued in that case.
var ErrUnrecognized = errors.New("payment: unrecognizable return parameters")

// Return is a parsed gateway return.
type Return struct {
	Provider    Provider
	OrderID     string
	GatewayOK   bool // gateway-reported result; display only, never proof
	Amount      string
	Transaction string
	Raw         url.Values
}

// ParseReturn detects the provider from its field names and extracts the
// common fields. The full raw query is kept for the verify call.
func ParseReturn(query url.Values) (*Return, error) {
	switch {
	case query.Get("partnerCode") != "" || query.Get("resultCode") != "":
		orderID := query.Get("orderId")
		if orderID == "" {
			return nil, ErrUnrecognized
		}
		return &Return{
			Provider:    ProviderMoMo,
			OrderID:     orderID,
			GatewayOK:   query.Get("resultCode") == momoSuccessCode,
			Amount:      query.Get("amount"),
			Transaction: query.Get("transId"),
			Raw:         query,
		}, nil

	case query.Get("vnp_TxnRef") != "" || query.Get("vnp_ResponseCode") != "":
		orderID := query.Get("vnp_TxnRef")
		if orderID == "" {
			return nil, ErrUnrecognized
		}
		return &Return{
			Provider:    ProviderVNPay,
			OrderID:     orderID,
			GatewayOK:   query.Get("vnp_ResponseCode") == vnpaySuccessCode,
			Amount:      query.Get("vnp_Amount"),
			Transaction: query.Get("vnp_TransactionNo"),
			Raw:         query,
		}, nil
	}

	return nil, ErrUnrecognized
}

// Verifier is the slice of the backend client the processor needs.
type Verifier interface {
	VerifyMoMoReturn(ctx context.Context, params url.Values) (*backend.VerifyResult, error)
	VerifyVNPayReturn(ctx context.Context, params url.Values) (*backend.VerifyResult, error)
}

// Outcome is the terminal verdict for one return visit.
type Outcome struct {
	Provider  Provider
	OrderID   string
	Confirmed bool
	Message   string
}

// Processor verifies gateway returns at most once per order. A repeated
// invocation (a re-rendered return page) replays the recorded outcome
// without another verify call; a failed verification is terminal for
// that visit, with no retry.
type Processor struct {
	mu       sync.Mutex
	verifier Verifier
	outcomes map[string]*Outcome
}

// NewProcessor creates a Processor backed by verifier.
func NewProcessor(verifier Verifier) *Processor {
	return &Processor{
		verifier: verifier,
		outcomes: make(map[string]*Outcome),
	}
}

// Process parses query and verifies the return, once.
func (p *Processor) Process(ctx context.Context, query url.Values) (*Outcome, error) {
	ret, err := ParseReturn(query)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	key := string(ret.Provider) + ":" + ret.OrderID
	if outcome, ok := p.outcomes[key]; ok {
		p.mu.Unlock()
		return outcome, nil
	}
	p.mu.Unlock()

	verify := p.verifier.VerifyMoMoReturn
	if ret.Provider == ProviderVNPay {
		verify = p.verifier.VerifyVNPayReturn
	}
	result, err := verify(ctx, ret.Raw)

	outcome := &Outcome{Provider: ret.Provider, OrderID: ret.OrderID}
	if err != nil {
		outcome.Message = err.Error()
	} else {
		outcome.Confirmed = result.Confirmed
		outcome.Message = result.Message
	}

	// Recorded even on failure: the verification is one-shot for this
	// visit.
	p.mu.Lock()
	p.outcomes[key] = outcome
	p.mu.Unlock()

	if err != nil {
		return outcome, errors.Wrap(err, "verify payment return")
	}
	return outcome, nil
}
