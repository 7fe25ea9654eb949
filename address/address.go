// Package address manages the per-user shipping address book. The
// collection is capped client-side and the backend's list is
// authoritative after every mutation.
package address

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/clothex/storefront/backend"
	"github.com/clothex/storefront/optimistic"
)

// MaxAddresses caps the address book; the sixth add is rejected before
// any network call.
const MaxAddresses = 5

var (
	// ErrLimitReached signals the client-side capacity check.
	ErrLimitReached = errors.Errorf("address: at most %d addresses allowed", MaxAddresses)
	// ErrNotFound rejects mutations on addresses absent from the local view.
	ErrNotFound = errors.New("address: no such address")
)

// Service is the slice of the backend client the address book needs.
type Service interface {
	ListAddresses(ctx context.Context) ([]backend.Address, error)
	AddAddress(ctx context.Context, street, city string) ([]backend.Address, error)
	SetDefaultAddress(ctx context.Context, id string) ([]backend.Address, error)
	DeleteAddress(ctx context.Context, id string) ([]backend.Address, error)
}

// Book is one user's address book view. Mutations are sequenced the same
// way cart mutations are.
type Book struct {
	flow sync.Mutex
	view *optimistic.View[[]backend.Address]
	svc  Service
}

// NewBook creates an empty address book view.
func NewBook(svc Service) *Book {
	return &Book{
		view: optimistic.NewView([]backend.Address{}, cloneAddresses),
		svc:  svc,
	}
}

func cloneAddresses(addresses []backend.Address) []backend.Address {
	out := make([]backend.Address, len(addresses))
	copy(out, addresses)
	return out
}

// Addresses returns a copy of the current view.
func (b *Book) Addresses() []backend.Address {
	return b.view.Get()
}

// Default returns the current default address, or nil.
func (b *Book) Default() *backend.Address {
	for _, a := range b.view.Get() {
		if a.IsDefault {
			return &a
		}
	}
	return nil
}

// Get returns the address with the given id, or nil.
func (b *Book) Get(id string) *backend.Address {
	for _, a := range b.view.Get() {
		if a.ID == id {
			return &a
		}
	}
	return nil
}

// Load seeds the view from the server.
func (b *Book) Load(ctx context.Context) error {
	b.flow.Lock()
	defer b.flow.Unlock()

	addresses, err := b.svc.ListAddresses(ctx)
	if err != nil {
		return errors.Wrap(err, "load addresses")
	}
	b.view.Set(addresses)
	return nil
}

// Add appends an address. The capacity check short-circuits before the
// network call; on success the server's list replaces local state.
func (b *Book) Add(ctx context.Context, street, city string) error {
	b.flow.Lock()
	defer b.flow.Unlock()

	if len(b.view.Get()) >= MaxAddresses {
		return ErrLimitReached
	}

	return optimistic.Run(ctx, b.view, optimistic.Command[[]backend.Address]{
		Apply: func(addresses []backend.Address) []backend.Address {
			// Optimistic display only; the server assigns the real ID and
			// default flag.
			return append(addresses, backend.Address{
				Street:    street,
				City:      city,
				IsDefault: len(addresses) == 0,
			})
		},
		Commit: func(ctx context.Context) ([]backend.Address, bool, error) {
			remote, err := b.svc.AddAddress(ctx, street, city)
			return remote, err == nil, err
		},
	})
}

// SetDefault marks one address as the default. The client only computes
// default status for optimistic display; the server's list is
// authoritative.
func (b *Book) SetDefault(ctx context.Context, id string) error {
	b.flow.Lock()
	defer b.flow.Unlock()

	if b.Get(id) == nil {
		return ErrNotFound
	}

	return optimistic.Run(ctx, b.view, optimistic.Command[[]backend.Address]{
		Apply: func(addresses []backend.Address) []backend.Address {
			for i := range addresses {
				addresses[i].IsDefault = addresses[i].ID == id
			}
			return addresses
		},
		Commit: func(ctx context.Context) ([]backend.Address, bool, error) {
			remote, err := b.svc.SetDefaultAddress(ctx, id)
			return remote, err == nil, err
		},
	})
}

// Delete removes an address. When the deleted entry was the default, the
// first remaining address is promoted for local display until the
// server's list arrives.
func (b *Book) Delete(ctx context.Context, id string) error {
	b.flow.Lock()
	defer b.flow.Unlock()

	if b.Get(id) == nil {
		return ErrNotFound
	}

	return optimistic.Run(ctx, b.view, optimistic.Command[[]backend.Address]{
		Apply: func(addresses []backend.Address) []backend.Address {
			wasDefault := false
			out := addresses[:0]
			for _, a := range addresses {
				if a.ID == id {
					wasDefault = a.IsDefault
					continue
				}
				out = append(out, a)
			}
			if wasDefault && len(out) > 0 {
				out[0].IsDefault = true
			}
			return out
		},
		Commit: func(ctx context.Context) ([]backend.Address, bool, error) {
			remote, err := b.svc.DeleteAddress(ctx, id)
			return remote, err == nil, err
		},
	})
}
