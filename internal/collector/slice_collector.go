package collector

import "context"

// SliceCollector replays a fixed sequence of items.
type SliceCollector[T any] struct {
	items []T
	err   error
}

func NewSliceCollector[T any](items ...T) *SliceCollector[T] {
	return &SliceCollector[T]{items: items}
}

// WithError makes the collector emit err after the last item.
func (sc *SliceCollector[T]) WithError(err error) *SliceCollector[T] {
	sc.err = err
	return sc
}

func (sc *SliceCollector[T]) Collect(ctx context.Context) (<-chan Result[T], error) {
	results := make(chan Result[T])
	go func() {
		defer close(results)
		for _, item := range sc.items {
			select {
			case <-ctx.Done():
				return
			case results <- Result[T]{Result: item}:
			}
		}
		if sc.err != nil {
			select {
			case <-ctx.Done():
			case results <- Result[T]{Err: sc.err}:
			}
		}
	}()
	return results, nil
}
