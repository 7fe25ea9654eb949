// Package cart holds the per-session cart view state and its optimistic
// mutations against the backend cart resource.
package cart

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/clothex/storefront/backend"
	"github.com/clothex/storefront/optimistic"
)

var (
	// ErrQuantityTooLow rejects quantity updates below 1 before any
	// network call; callers treat removal as a distinct operation.
	ErrQuantityTooLow = errors.New("cart: quantity must be at least 1")
	// ErrItemNotFound rejects mutations on lines absent from the local view.
	ErrItemNotFound = errors.New("cart: item not in cart")
)

// Key is the identity key matching a local cart line to its server
// counterpart.
type Key struct {
	ProductID string
	VariantID string
}

// Service is the slice of the backend client the cart needs.
type Service interface {
	GetCart(ctx context.Context, userID string) ([]backend.CartItem, error)
	AddCartItem(ctx context.Context, userID string, item backend.CartItem) ([]backend.CartItem, error)
	UpdateCartItem(ctx context.Context, userID, productID, variantID string, quantity int32) ([]backend.CartItem, error)
	RemoveCartItem(ctx context.Context, userID, productID, variantID string) ([]backend.CartItem, error)
	EmptyCart(ctx context.Context, userID string) error
}

// State is one user's cart view. Mutations are strictly sequenced: a
// second mutation on the cart waits for the first to reconcile or roll
// back, so a stale response can never overwrite a newer confirmed state.
// (Sequencing the whole cart subsumes the per-identity-key requirement.)
type State struct {
	flow   sync.Mutex
	view   *optimistic.View[[]backend.CartItem]
	svc    Service
	userID string
}

// NewState creates an empty cart view for userID.
func NewState(svc Service, userID string) *State {
	return &State{
		view:   optimistic.NewView([]backend.CartItem{}, cloneItems),
		svc:    svc,
		userID: userID,
	}
}

func cloneItems(items []backend.CartItem) []backend.CartItem {
	out := make([]backend.CartItem, len(items))
	copy(out, items)
	return out
}

// UserID returns the cart owner (username, or anonymous session ID).
func (s *State) UserID() string {
	return s.userID
}

// Items returns a copy of the current view.
func (s *State) Items() []backend.CartItem {
	return s.view.Get()
}

// Size returns the total quantity across all lines.
func (s *State) Size() int {
	size := 0
	for _, item := range s.view.Get() {
		size += int(item.Quantity)
	}
	return size
}

// Load seeds the view from the server.
func (s *State) Load(ctx context.Context) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	items, err := s.svc.GetCart(ctx, s.userID)
	if err != nil {
		return errors.Wrap(err, "load cart")
	}
	s.view.Set(items)
	return nil
}

// Add puts an item in the cart, or bumps the quantity of the line already
// holding its identity key.
func (s *State) Add(ctx context.Context, item backend.CartItem) error {
	if item.Quantity < 1 {
		return ErrQuantityTooLow
	}

	s.flow.Lock()
	defer s.flow.Unlock()

	return optimistic.Run(ctx, s.view, optimistic.Command[[]backend.CartItem]{
		Apply: func(items []backend.CartItem) []backend.CartItem {
			key := Key{item.ProductID, item.VariantID}
			for i := range items {
				if (Key{items[i].ProductID, items[i].VariantID}) == key {
					items[i].Quantity += item.Quantity
					return items
				}
			}
			return append(items, item)
		},
		Commit: func(ctx context.Context) ([]backend.CartItem, bool, error) {
			remote, err := s.svc.AddCartItem(ctx, s.userID, item)
			return remote, err == nil, err
		},
		Merge: mergeItems,
	})
}

// UpdateQuantity sets the quantity of the line identified by
// (productID, variantID). Values below 1 are rejected without a network
// call and leave local state untouched.
func (s *State) UpdateQuantity(ctx context.Context, productID, variantID string, quantity int32) error {
	if quantity < 1 {
		return ErrQuantityTooLow
	}

	s.flow.Lock()
	defer s.flow.Unlock()

	if !s.contains(productID, variantID) {
		return ErrItemNotFound
	}

	return optimistic.Run(ctx, s.view, optimistic.Command[[]backend.CartItem]{
		Apply: func(items []backend.CartItem) []backend.CartItem {
			for i := range items {
				if items[i].ProductID == productID && items[i].VariantID == variantID {
					items[i].Quantity = quantity
				}
			}
			return items
		},
		Commit: func(ctx context.Context) ([]backend.CartItem, bool, error) {
			remote, err := s.svc.UpdateCartItem(ctx, s.userID, productID, variantID, quantity)
			return remote, err == nil, err
		},
		Merge: mergeItems,
	})
}

// Remove drops the line identified by (productID, variantID).
func (s *State) Remove(ctx context.Context, productID, variantID string) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	if !s.contains(productID, variantID) {
		return ErrItemNotFound
	}

	return optimistic.Run(ctx, s.view, optimistic.Command[[]backend.CartItem]{
		Apply: func(items []backend.CartItem) []backend.CartItem {
			out := items[:0]
			for _, item := range items {
				if item.ProductID == productID && item.VariantID == variantID {
					continue
				}
				out = append(out, item)
			}
			return out
		},
		Commit: func(ctx context.Context) ([]backend.CartItem, bool, error) {
			remote, err := s.svc.RemoveCartItem(ctx, s.userID, productID, variantID)
			return remote, err == nil, err
		},
		Merge: mergeItems,
	})
}

// Clear empties the cart locally and remotely.
func (s *State) Clear(ctx context.Context) error {
	s.flow.Lock()
	defer s.flow.Unlock()

	return optimistic.Run(ctx, s.view, optimistic.Command[[]backend.CartItem]{
		Apply: func([]backend.CartItem) []backend.CartItem { return nil },
		Commit: func(ctx context.Context) ([]backend.CartItem, bool, error) {
			return nil, false, s.svc.EmptyCart(ctx, s.userID)
		},
	})
}

// MigrateFrom moves every line of the anonymous cart into this one, then
// empties the anonymous cart. Per-line failures are reported but do not
// abort the remaining lines.
func (s *State) MigrateFrom(ctx context.Context, anonymous *State) error {
	var firstErr error
	for _, item := range anonymous.Items() {
		if err := s.Add(ctx, item); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := anonymous.Clear(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

func (s *State) contains(productID, variantID string) bool {
	for _, item := range s.view.Get() {
		if item.ProductID == productID && item.VariantID == variantID {
			return true
		}
	}
	return false
}

// mergeItems reconciles the local view with the server's cart. Server
// values win per identity key; local ordering is kept for lines the
// server confirms, lines the server omits are dropped, and lines only the
// server knows are appended.
func mergeItems(local, remote []backend.CartItem) []backend.CartItem {
	byKey := make(map[Key]backend.CartItem, len(remote))
	for _, item := range remote {
		byKey[Key{item.ProductID, item.VariantID}] = item
	}

	merged := make([]backend.CartItem, 0, len(remote))
	seen := make(map[Key]bool, len(remote))
	for _, item := range local {
		key := Key{item.ProductID, item.VariantID}
		if server, ok := byKey[key]; ok {
			merged = append(merged, server)
			seen[key] = true
		}
	}
	for _, item := range remote {
		if !seen[Key{item.ProductID, item.VariantID}] {
			merged = append(merged, item)
		}
	}
	return merged
}
