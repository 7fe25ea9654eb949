package optimistic

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cloneInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}

func TestRun_CommitFailureRestoresExactSnapshot(t *testing.T) {
	view := NewView([]int{1, 2, 3}, cloneInts)

	err := Run(context.Background(), view, Command[[]int]{
		Apply: func(v []int) []int { return append(v, 4) },
		Commit: func(context.Context) ([]int, bool, error) {
			return nil, false, errors.New("boom")
		},
	})

	require.Error(t, err)
	assert.Equal(t, []int{1, 2, 3}, view.Get())
}

func TestRun_ServerValueReplacesLocalWithoutMerge(t *testing.T) {
	view := NewView([]int{1}, cloneInts)

	err := Run(context.Background(), view, Command[[]int]{
		Apply: func(v []int) []int { return append(v, 2) },
		Commit: func(context.Context) ([]int, bool, error) {
			return []int{9, 9}, true, nil
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []int{9, 9}, view.Get())
}

func TestRun_MergeSeesOptimisticAndRemote(t *testing.T) {
	view := NewView([]int{1}, cloneInts)

	var mergedLocal, mergedRemote []int
	err := Run(context.Background(), view, Command[[]int]{
		Apply: func(v []int) []int { return append(v, 2) },
		Commit: func(context.Context) ([]int, bool, error) {
			return []int{7}, true, nil
		},
		Merge: func(local, remote []int) []int {
			mergedLocal, mergedRemote = local, remote
			return remote
		},
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, mergedLocal)
	assert.Equal(t, []int{7}, mergedRemote)
	assert.Equal(t, []int{7}, view.Get())
}

func TestRun_NoRemoteBodyKeepsOptimisticValue(t *testing.T) {
	view := NewView([]int{1}, cloneInts)

	err := Run(context.Background(), view, Command[[]int]{
		Apply: func(v []int) []int { return nil },
		Commit: func(context.Context) ([]int, bool, error) {
			return nil, false, nil
		},
	})

	require.NoError(t, err)
	assert.Empty(t, view.Get())
}

func TestView_GetReturnsCopy(t *testing.T) {
	view := NewView([]int{1, 2}, cloneInts)

	got := view.Get()
	got[0] = 99

	assert.Equal(t, []int{1, 2}, view.Get())
}
