package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/docstream/internal/collector"
)

// Runner drives chunks from a collector through a chain of stages on a single
// goroutine. A stage is never re-entered before its previous step returned, so a
// blocking stage holds back the source.
type Runner struct {
	name   string
	stages []Stage
}

func NewRunner(name string, stages ...Stage) *Runner {
	return &Runner{name: name, stages: stages}
}

// Run starts the chain and returns its output. The channel is closed after the
// stages are drained or after the first error, which is delivered as the last result.
func (r *Runner) Run(ctx context.Context, src collector.Collector[Chunk]) (<-chan collector.Result[Chunk], error) {
	in, err := src.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start collector: %w", err)
	}

	out := make(chan collector.Result[Chunk])
	go func() {
		defer close(out)

		emit := func(res collector.Result[Chunk]) bool {
			select {
			case <-ctx.Done():
				return false
			case out <- res:
				return true
			}
		}

		processed := 0
		for {
			select {
			case <-ctx.Done():
				slog.Info("Runner context cancelled, stopping",
					"runner", r.name,
					"processed", processed,
				)
				emit(collector.Result[Chunk]{Err: ctx.Err()})
				return
			case res, ok := <-in:
				if !ok {
					chunks, err := r.drain(ctx)
					for _, c := range chunks {
						if !emit(collector.Result[Chunk]{Result: c}) {
							return
						}
					}
					if err != nil {
						emit(collector.Result[Chunk]{Err: err})
						return
					}
					slog.Debug("Runner completed", "runner", r.name, "processed", processed)
					return
				}

				if res.Err != nil {
					slog.Error("Source error, stopping runner", "error", res.Err, "runner", r.name)
					emit(collector.Result[Chunk]{Err: res.Err})
					return
				}

				chunks, err := r.push(ctx, 0, []Chunk{res.Result})
				for _, c := range chunks {
					if !emit(collector.Result[Chunk]{Result: c}) {
						return
					}
				}
				if err != nil {
					emit(collector.Result[Chunk]{Err: err})
					return
				}
				processed++
			}
		}
	}()

	return out, nil
}

// push feeds chunks into stages[from:] and returns what falls out of the last stage.
// When a stage fails, whatever it already produced still travels through the stages
// after it and is returned alongside the error.
func (r *Runner) push(ctx context.Context, from int, chunks []Chunk) ([]Chunk, error) {
	for i := from; i < len(r.stages) && len(chunks) > 0; i++ {
		var next []Chunk
		for _, c := range chunks {
			produced, err := r.stages[i].Process(ctx, c)
			next = append(next, produced...)
			if err != nil {
				stageErr := fmt.Errorf("stage %d: %w", i, err)
				out, downErr := r.push(ctx, i+1, next)
				if downErr != nil {
					slog.Warn("Downstream stage failed after an earlier error",
						"runner", r.name,
						"error", downErr,
					)
				}
				return out, stageErr
			}
		}
		chunks = next
	}
	return chunks, nil
}

// drain flushes stages in order, pushing each stage's leftovers through the stages after it.
func (r *Runner) drain(ctx context.Context) ([]Chunk, error) {
	var out []Chunk
	for i, s := range r.stages {
		flushed, flushErr := s.Flush(ctx)
		chunks, err := r.push(ctx, i+1, flushed)
		out = append(out, chunks...)
		if flushErr != nil {
			return out, fmt.Errorf("stage %d flush: %w", i, flushErr)
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}
