package cart

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothex/storefront/backend"
)

// fakeService records calls and plays back scripted responses.
type fakeService struct {
	calls int

	cart    []backend.CartItem
	failNth int // fail the n-th mutating call (1-based), 0 = never
	mutated int
}

func (f *fakeService) failNow() bool {
	f.mutated++
	return f.failNth != 0 && f.mutated == f.failNth
}

func (f *fakeService) GetCart(ctx context.Context, userID string) ([]backend.CartItem, error) {
	f.calls++
	return cloneItems(f.cart), nil
}

func (f *fakeService) AddCartItem(ctx context.Context, userID string, item backend.CartItem) ([]backend.CartItem, error) {
	f.calls++
	if f.failNow() {
		return nil, errors.New("backend down")
	}
	for i := range f.cart {
		if f.cart[i].ProductID == item.ProductID && f.cart[i].VariantID == item.VariantID {
			f.cart[i].Quantity += item.Quantity
			return cloneItems(f.cart), nil
		}
	}
	f.cart = append(f.cart, item)
	return cloneItems(f.cart), nil
}

func (f *fakeService) UpdateCartItem(ctx context.Context, userID, productID, variantID string, quantity int32) ([]backend.CartItem, error) {
	f.calls++
	if f.failNow() {
		return nil, errors.New("backend down")
	}
	for i := range f.cart {
		if f.cart[i].ProductID == productID && f.cart[i].VariantID == variantID {
			f.cart[i].Quantity = quantity
		}
	}
	return cloneItems(f.cart), nil
}

func (f *fakeService) RemoveCartItem(ctx context.Context, userID, productID, variantID string) ([]backend.CartItem, error) {
	f.calls++
	if f.failNow() {
		return nil, errors.New("backend down")
	}
	out := f.cart[:0]
	for _, item := range f.cart {
		if item.ProductID == productID && item.VariantID == variantID {
			continue
		}
		out = append(out, item)
	}
	f.cart = out
	return cloneItems(f.cart), nil
}

func (f *fakeService) EmptyCart(ctx context.Context, userID string) error {
	f.calls++
	if f.failNow() {
		return errors.New("backend down")
	}
	f.cart = nil
	return nil
}

func item(product, variant string, qty int32) backend.CartItem {
	return backend.CartItem{
		ProductID: product,
		VariantID: variant,
		Name:      "shirt",
		Price:     10,
		Quantity:  qty,
	}
}

func seeded(t *testing.T, items ...backend.CartItem) (*State, *fakeService) {
	t.Helper()
	svc := &fakeService{cart: cloneItems(items)}
	state := NewState(svc, "u1")
	require.NoError(t, state.Load(context.Background()))
	svc.calls = 0
	return state, svc
}

func TestUpdateQuantity_BelowOneRejectedWithoutNetworkCall(t *testing.T) {
	state, svc := seeded(t, item("p1", "v1", 2))

	err := state.UpdateQuantity(context.Background(), "p1", "v1", 0)

	require.ErrorIs(t, err, ErrQuantityTooLow)
	assert.Zero(t, svc.calls, "no network call may be issued")
	assert.Equal(t, []backend.CartItem{item("p1", "v1", 2)}, state.Items())
}

func TestUpdateQuantity_UnknownItemRejectedWithoutNetworkCall(t *testing.T) {
	state, svc := seeded(t, item("p1", "v1", 2))

	err := state.UpdateQuantity(context.Background(), "p9", "v9", 3)

	require.ErrorIs(t, err, ErrItemNotFound)
	assert.Zero(t, svc.calls)
}

func TestUpdateQuantity_FailureRestoresExactSnapshot(t *testing.T) {
	before := []backend.CartItem{item("p1", "v1", 2), item("p2", "v1", 1)}
	state, svc := seeded(t, before...)
	svc.failNth = 1

	err := state.UpdateQuantity(context.Background(), "p1", "v1", 5)

	require.Error(t, err)
	assert.Equal(t, before, state.Items(), "rollback must be a full snapshot restore")
}

func TestUpdateQuantity_MergesServerFieldsByIdentityKey(t *testing.T) {
	state, svc := seeded(t, item("p1", "v1", 2))
	// Server knows a newer price for the line.
	svc.cart[0].Price = 8

	require.NoError(t, state.UpdateQuantity(context.Background(), "p1", "v1", 3))

	items := state.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int32(3), items[0].Quantity)
	assert.Equal(t, int64(8), items[0].Price, "server value wins on merge")
}

func TestRemove_FailureRestoresExactSnapshot(t *testing.T) {
	before := []backend.CartItem{item("p1", "v1", 2)}
	state, svc := seeded(t, before...)
	svc.failNth = 1

	err := state.Remove(context.Background(), "p1", "v1")

	require.Error(t, err)
	assert.Equal(t, before, state.Items())
}

func TestAdd_FailureRestoresExactSnapshot(t *testing.T) {
	before := []backend.CartItem{item("p1", "v1", 1)}
	state, svc := seeded(t, before...)
	svc.failNth = 1

	err := state.Add(context.Background(), item("p2", "v2", 1))

	require.Error(t, err)
	assert.Equal(t, before, state.Items())
}

func TestAdd_BumpsExistingLine(t *testing.T) {
	state, _ := seeded(t, item("p1", "v1", 1))

	require.NoError(t, state.Add(context.Background(), item("p1", "v1", 2)))

	items := state.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int32(3), items[0].Quantity)
}

// Two rapid decrements on the same line where the second remote call
// fails: the displayed quantity must equal the last server-confirmed
// value, never an intermediate optimistic one.
func TestRapidDecrement_SecondCallFails(t *testing.T) {
	state, svc := seeded(t, item("p1", "v1", 2))
	svc.failNth = 2

	// First decrement: 2 -> 1, confirmed by the server.
	require.NoError(t, state.UpdateQuantity(context.Background(), "p1", "v1", 1))
	// Second decrement goes below 1, i.e. removal — and the call fails.
	err := state.Remove(context.Background(), "p1", "v1")
	require.Error(t, err)

	items := state.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int32(1), items[0].Quantity, "must show the last server-confirmed quantity")
}

func TestClear_EmptiesLocallyAndRemotely(t *testing.T) {
	state, svc := seeded(t, item("p1", "v1", 2))

	require.NoError(t, state.Clear(context.Background()))

	assert.Empty(t, state.Items())
	assert.Empty(t, svc.cart)
}

func TestMigrateFrom_MovesItemsAndEmptiesSource(t *testing.T) {
	guestSvc := &fakeService{cart: []backend.CartItem{item("p1", "v1", 2)}}
	guest := NewState(guestSvc, "anon")
	require.NoError(t, guest.Load(context.Background()))

	userSvc := &fakeService{}
	user := NewState(userSvc, "u1")
	require.NoError(t, user.Load(context.Background()))

	require.NoError(t, user.MigrateFrom(context.Background(), guest))

	require.Len(t, user.Items(), 1)
	assert.Equal(t, int32(2), user.Items()[0].Quantity)
	assert.Empty(t, guest.Items())
	assert.Empty(t, guestSvc.cart)
}

func TestMergeItems_DropsLinesTheServerOmits(t *testing.T) {
	local := []backend.CartItem{item("p1", "v1", 2), item("p2", "v1", 1)}
	remote := []backend.CartItem{item("p1", "v1", 2)}

	merged := mergeItems(local, remote)

	require.Len(t, merged, 1)
	assert.Equal(t, "p1", merged[0].ProductID)
}

func TestMergeItems_AppendsServerOnlyLines(t *testing.T) {
	local := []backend.CartItem{item("p1", "v1", 2)}
	remote := []backend.CartItem{item("p1", "v1", 2), item("p3", "v1", 4)}

	merged := mergeItems(local, remote)

	require.Len(t, merged, 2)
	assert.Equal(t, "p3", merged[1].ProductID)
}
