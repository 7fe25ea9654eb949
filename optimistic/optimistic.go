// Package optimistic implements the mutation pattern shared by the
// storefront's server-owned collections: apply a change to the local view
// immediately, issue the remote call, then either reconcile the server's
// response into the view or restore the exact pre-mutation snapshot.
package optimistic

import (
	"context"
	"sync"
)

// View is a guarded local copy of a server-owned value. Get always
// returns a deep copy so snapshots cannot alias live state.
type View[T any] struct {
	mu    sync.Mutex
	value T
	clone func(T) T
}

// NewView creates a View seeded with initial. clone must produce a deep
// copy of T.
func NewView[T any](initial T, clone func(T) T) *View[T] {
	return &View[T]{value: clone(initial), clone: clone}
}

// Get returns a deep copy of the current value.
func (v *View[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.clone(v.value)
}

// Set replaces the current value.
func (v *View[T]) Set(value T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.value = value
}

// Command is one optimistic mutation.
//
// Apply produces the optimistic local value from the current one. Commit
// performs the remote call and may return the server's view of the value
// (ok=false when the endpoint returns no body to reconcile). Merge
// reconciles the local value with the server's, preferring server fields;
// when nil the server value replaces the local one outright.
type Command[T any] struct {
	Apply  func(T) T
	Commit func(context.Context) (T, bool, error)
	Merge  func(local, remote T) T
}

// Run executes cmd against view. On commit failure the view is restored
// to the exact snapshot taken before Apply, never a partial undo, and the
// error is returned for the caller to surface.
func Run[T any](ctx context.Context, view *View[T], cmd Command[T]) error {
	snapshot := view.Get()

	view.Set(cmd.Apply(view.Get()))

	remote, ok, err := cmd.Commit(ctx)
	if err != nil {
		view.Set(snapshot)
		return err
	}
	if !ok {
		return nil
	}
	if cmd.Merge != nil {
		view.Set(cmd.Merge(view.Get(), remote))
		return nil
	}
	view.Set(remote)
	return nil
}
