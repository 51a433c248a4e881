package collector

import "context"

type Result[T any] struct {
	Result T
	Err    error
}

// Collector produces an ordered sequence of results. The channel is closed at end of input.
type Collector[T any] interface {
	Collect(ctx context.Context) (<-chan Result[T], error)
}

// Func adapts a plain function to the Collector interface.
type Func[T any] func(ctx context.Context) (<-chan Result[T], error)

func (f Func[T]) Collect(ctx context.Context) (<-chan Result[T], error) {
	return f(ctx)
}

// Map converts every successful result of c with fn, preserving order and errors.
func Map[In, Out any](c Collector[In], fn func(In) Out) Collector[Out] {
	return Func[Out](func(ctx context.Context) (<-chan Result[Out], error) {
		in, err := c.Collect(ctx)
		if err != nil {
			return nil, err
		}

		out := make(chan Result[Out])
		go func() {
			defer close(out)
			for res := range in {
				var mapped Result[Out]
				if res.Err != nil {
					mapped.Err = res.Err
				} else {
					mapped.Result = fn(res.Result)
				}
				select {
				case <-ctx.Done():
					return
				case out <- mapped:
				}
			}
		}()

		return out, nil
	})
}
