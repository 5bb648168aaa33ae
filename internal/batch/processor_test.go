package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessor_Process(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("Sequential", func(t *testing.T) {
		p, err := NewProcessor[int](10)
		require.NoError(t, err)

		var seen []int
		var sizes []int
		err = p.Process(context.Background(), items, func(_ context.Context, batch []int, _ int) error {
			seen = append(seen, batch...)
			sizes = append(sizes, len(batch))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, items, seen)
		assert.Equal(t, []int{10, 10, 5}, sizes)
	})

	t.Run("StopsOnError", func(t *testing.T) {
		p, _ := NewProcessor[int](10)
		var calls int
		err := p.Process(context.Background(), items, func(_ context.Context, _ []int, i int) error {
			calls++
			if i == 1 {
				return errors.New("fail")
			}
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch 1 failed")
		assert.Equal(t, 2, calls)
	})

	t.Run("EmptyItems", func(t *testing.T) {
		p, _ := NewProcessor[int](DefaultSize)
		called := false
		err := p.Process(context.Background(), nil, func(context.Context, []int, int) error {
			called = true
			return nil
		})
		require.NoError(t, err)
		assert.False(t, called)
	})

	t.Run("NilCallback", func(t *testing.T) {
		p, _ := NewProcessor[int](DefaultSize)
		assert.ErrorIs(t, p.Process(context.Background(), items, nil), ErrNilCallback)
	})

	t.Run("Cancelled", func(t *testing.T) {
		p, _ := NewProcessor[int](5)
		ctx, cancel := context.WithCancel(context.Background())
		err := p.Process(ctx, items, func(_ context.Context, _ []int, i int) error {
			if i == 0 {
				cancel()
			}
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProcessor_ProcessConcurrent(t *testing.T) {
	items := make([]int, 25)

	p, _ := NewProcessor[int](5)
	var processed atomic.Int32
	var mu sync.Mutex
	var last Progress
	p.WithProgress(func(pr Progress) {
		mu.Lock()
		defer mu.Unlock()
		if pr.ProcessedItems > last.ProcessedItems {
			last = pr
		}
	})

	err := p.ProcessConcurrent(context.Background(), items, func(_ context.Context, batch []int, _ int) error {
		processed.Add(int32(len(batch)))
		return nil
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(25), processed.Load())
	assert.Equal(t, 25, last.ProcessedItems)
	assert.Equal(t, 5, last.ProcessedBatches)
	assert.InDelta(t, 100.0, last.Percent(), 1e-9)

	err = p.ProcessConcurrent(context.Background(), items, func(_ context.Context, _ []int, i int) error {
		if i%2 == 0 {
			return errors.New("boom")
		}
		return nil
	}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 0 failed")
	assert.Contains(t, err.Error(), "batch 4 failed")
}

func TestNewProcessor_InvalidSize(t *testing.T) {
	_, err := NewProcessor[int](0)
	require.ErrorIs(t, err, ErrInvalidSize)
	_, err = NewProcessor[int](2000)
	require.ErrorIs(t, err, ErrInvalidSize)
}

func TestProcessor_Bounds(t *testing.T) {
	p, _ := NewProcessor[string](4)
	assert.Equal(t, [][2]int{{0, 4}, {4, 8}, {8, 9}}, p.Bounds(9))
	assert.Empty(t, p.Bounds(0))
	assert.Equal(t, 4, p.Size())
	assert.Zero(t, Progress{}.Percent())
}
