// Package checkout drives the order placement flow for one session.
package checkout

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/clothex/storefront/address"
	"github.com/clothex/storefront/backend"
	"github.com/clothex/storefront/cart"
)

// Stage is the checkout flow state.
type Stage string

const (
	StageLoading    Stage = "loading"
	StageReady      Stage = "ready"
	StageSubmitting Stage = "submitting"
	StageSuccess    Stage = "success"
	StageFailed     Stage = "failed"
)

// Payment methods accepted at checkout.
const (
	MethodCash  = "cash"
	MethodMoMo  = "momo"
	MethodVNPay = "vnpay"
)

var (
	// ErrNotReady refuses confirmation while the flow is loading or already
	// submitting.
	ErrNotReady = errors.New("checkout: flow is not ready")
	// ErrEmptyCart refuses confirmation without items; no remote call is made.
	ErrEmptyCart = errors.New("checkout: cart is empty")
	// ErrNoAddress refuses confirmation without a shipping address; no
	// remote call is made.
	ErrNoAddress = errors.New("checkout: no shipping address selected")
	// ErrUnknownMethod refuses unrecognized payment methods.
	ErrUnknownMethod = errors.New("checkout: unknown payment method")
)

// Service is the slice of the backend client the flow needs.
type Service interface {
	CreateOrder(ctx context.Context, req backend.PlaceOrderRequest) (*backend.Order, error)
	DecrementStock(ctx context.Context, items []backend.CartItem) error
	CancelOrder(ctx context.Context, id string) (*backend.Order, error)
	CreateMoMoPayment(ctx context.Context, orderID string, amount int64) (string, error)
	CreateVNPayPayment(ctx context.Context, orderID string, amount int64) (string, error)
}

// Result is the outcome of a confirmed checkout. For gateway methods
// RedirectURL points at the gateway-hosted payment page and the flow stays
// in StageSubmitting until the return visit; for cash the cart is cleared
// and the flow reaches StageSuccess.
type Result struct {
	OrderID     string
	RedirectURL string
}

// Flow is the checkout state machine for one session.
type Flow struct {
	mu        sync.Mutex
	stage     Stage
	cart      *cart.State
	addresses *address.Book
	svc       Service

	selectedAddress string
	method          string
	lastErr         error
}

// NewFlow creates a flow in the loading stage; Prepare moves it to ready.
func NewFlow(svc Service, cartState *cart.State, book *address.Book) *Flow {
	return &Flow{
		stage:     StageLoading,
		cart:      cartState,
		addresses: book,
		svc:       svc,
	}
}

// Prepare seeds cart and address state from the server and moves the flow
// to ready.
func (f *Flow) Prepare(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.cart.Load(ctx); err != nil {
		return err
	}
	if err := f.addresses.Load(ctx); err != nil {
		return err
	}
	f.stage = StageReady
	f.lastErr = nil
	return nil
}

// Stage returns the current stage.
func (f *Flow) Stage() Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// LastError returns the error of the most recent failed submission.
func (f *Flow) LastError() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// SelectAddress picks the shipping address for this checkout.
func (f *Flow) SelectAddress(id string) error {
	if f.addresses.Get(id) == nil {
		return address.ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectedAddress = id
	return nil
}

// SelectMethod picks the payment method for this checkout.
func (f *Flow) SelectMethod(method string) error {
	switch method {
	case MethodCash, MethodMoMo, MethodVNPay:
	default:
		return ErrUnknownMethod
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.method = method
	return nil
}

// Confirm submits the order. Preconditions (non-empty cart, selected
// address) are checked before any remote call. Order creation always
// precedes the stock decrement, for every payment method; a failed
// decrement cancels the fresh order best-effort. Any remote failure
// returns the flow to ready with no partial local mutation surviving.
func (f *Flow) Confirm(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stage != StageReady {
		return nil, ErrNotReady
	}

	items := f.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}
	shipping := f.addresses.Get(f.selectedAddress)
	if shipping == nil {
		return nil, ErrNoAddress
	}
	method := f.method
	if method == "" {
		method = MethodCash
	}

	f.stage = StageSubmitting

	order, err := f.svc.CreateOrder(ctx, backend.PlaceOrderRequest{
		UserID:          f.cart.UserID(),
		Items:           items,
		ShippingAddress: *shipping,
		PaymentMethod:   method,
		TotalPrice:      total(items),
	})
	if err != nil {
		return nil, f.fail(errors.Wrap(err, "create order"))
	}

	if err := f.svc.DecrementStock(ctx, items); err != nil {
		// The order exists but its stock was never reserved; undo the
		// order rather than leave the two out of step.
		f.svc.CancelOrder(ctx, order.ID) //nolint:errcheck
		return nil, f.fail(errors.Wrap(err, "decrement stock"))
	}

	switch method {
	case MethodCash:
		if err := f.cart.Clear(ctx); err != nil {
			return nil, f.fail(errors.Wrap(err, "clear cart"))
		}
		f.stage = StageSuccess
		return &Result{OrderID: order.ID}, nil

	case MethodMoMo, MethodVNPay:
		create := f.svc.CreateMoMoPayment
		if method == MethodVNPay {
			create = f.svc.CreateVNPayPayment
		}
		payURL, err := create(ctx, order.ID, order.TotalPrice)
		if err != nil {
			f.svc.CancelOrder(ctx, order.ID) //nolint:errcheck
			return nil, f.fail(errors.Wrap(err, "request payment url"))
		}
		// Stays in submitting; completion is observed by the payment
		// return handler.
		return &Result{OrderID: order.ID, RedirectURL: payURL}, nil
	}

	return nil, f.fail(ErrUnknownMethod)
}

// Settle finalizes a gateway checkout after the return visit.
func (f *Flow) Settle(confirmed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if confirmed {
		f.stage = StageSuccess
		return
	}
	f.stage = StageReady
}

// fail records the error and returns the flow to ready. Callers hold f.mu.
func (f *Flow) fail(err error) error {
	f.stage = StageReady
	f.lastErr = err
	return err
}

func total(items []backend.CartItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.Price * int64(item.Quantity)
	}
	return sum
}
