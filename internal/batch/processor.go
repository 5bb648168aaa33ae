package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Batch size limits.
const (
	DefaultSize = 100
	MinSize     = 1
	MaxSize     = 1000
)

// Common batch processing errors.
var (
	ErrInvalidSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback = errors.New("batch callback cannot be nil")
)

// Func processes one batch. index is the 0-based batch number.
type Func[T any] func(ctx context.Context, items []T, index int) error

// ProgressFunc is called after each completed batch.
type ProgressFunc func(p Progress)

// Progress reports how far processing has got.
type Progress struct {
	TotalItems       int
	ProcessedItems   int
	TotalBatches     int
	ProcessedBatches int
}

// Percent returns completion in the range 0-100.
func (p Progress) Percent() float64 {
	if p.TotalItems == 0 {
		return 0
	}
	const hundred = 100
	return float64(p.ProcessedItems) / float64(p.TotalItems) * hundred
}

// Processor splits work into batches of a fixed size.
type Processor[T any] struct {
	size       int
	onProgress ProgressFunc

	mu       sync.Mutex
	progress Progress
}

// NewProcessor creates a processor with the given batch size.
func NewProcessor[T any](size int) (*Processor[T], error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}
	return &Processor[T]{size: size}, nil
}

// WithProgress sets a progress callback.
func (p *Processor[T]) WithProgress(fn ProgressFunc) *Processor[T] {
	p.onProgress = fn
	return p
}

// Size returns the configured batch size.
func (p *Processor[T]) Size() int {
	return p.size
}

// Bounds returns [start, end) index pairs for total items.
func (p *Processor[T]) Bounds(total int) [][2]int {
	n := (total + p.size - 1) / p.size
	out := make([][2]int, n)
	for i := range n {
		start := i * p.size
		out[i] = [2]int{start, min(start+p.size, total)}
	}
	return out
}

// Process runs fn over each batch in order and stops at the first error.
// An empty slice is a no-op.
func (p *Processor[T]) Process(ctx context.Context, items []T, fn Func[T]) error {
	if fn == nil {
		return ErrNilCallback
	}

	bounds := p.Bounds(len(items))
	p.reset(len(items), len(bounds))

	for i, b := range bounds {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, items[b[0]:b[1]], i); err != nil {
			return fmt.Errorf("batch %d failed: %w", i, err)
		}
		p.advance(b[1] - b[0])
	}
	return nil
}

// ProcessConcurrent runs up to limit batches at once. All batch errors are
// joined into the returned error.
func (p *Processor[T]) ProcessConcurrent(ctx context.Context, items []T, fn Func[T], limit int) error {
	if fn == nil {
		return ErrNilCallback
	}
	if limit < 1 {
		limit = 1
	}

	bounds := p.Bounds(len(items))
	p.reset(len(items), len(bounds))

	sem := make(chan struct{}, limit)
	errs := make([]error, len(bounds))
	var wg sync.WaitGroup

	for i, b := range bounds {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if err := fn(ctx, items[b[0]:b[1]], i); err != nil {
				errs[i] = fmt.Errorf("batch %d failed: %w", i, err)
				return
			}
			p.advance(b[1] - b[0])
		}()
	}

	wg.Wait()
	return errors.Join(errs...)
}

func (p *Processor[T]) reset(items, batches int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.progress = Progress{TotalItems: items, TotalBatches: batches}
}

func (p *Processor[T]) advance(items int) {
	p.mu.Lock()
	p.progress.ProcessedItems += items
	p.progress.ProcessedBatches++
	snapshot := p.progress
	p.mu.Unlock()

	if p.onProgress != nil {
		p.onProgress(snapshot)
	}
}
