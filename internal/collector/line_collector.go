package collector

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
)

const defaultMaxLineSize = 4 * 1024 * 1024

// LineCollector emits every non-empty line of a reader as a raw chunk.
type LineCollector struct {
	reader      io.Reader
	maxLineSize int
}

type LineCollectorOption func(*LineCollector)

func WithMaxLineSize(size int) LineCollectorOption {
	return func(c *LineCollector) {
		c.maxLineSize = size
	}
}

func NewLineCollector(r io.Reader, opts ...LineCollectorOption) *LineCollector {
	c := &LineCollector{
		reader:      r,
		maxLineSize: defaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (lc *LineCollector) Collect(ctx context.Context) (<-chan Result[[]byte], error) {
	if lc.reader == nil {
		return nil, fmt.Errorf("line collector: reader is nil")
	}

	scanner := bufio.NewScanner(lc.reader)
	scanner.Buffer(make([]byte, 0, 64*1024), lc.maxLineSize)

	results := make(chan Result[[]byte])
	go func() {
		defer close(results)

		lines := 0
		for scanner.Scan() {
			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			chunk := make([]byte, len(line))
			copy(chunk, line)

			select {
			case <-ctx.Done():
				return
			case results <- Result[[]byte]{Result: chunk}:
				lines++
			}
		}

		if err := scanner.Err(); err != nil {
			slog.Error("failed to scan input", "error", err, "lines", lines)
			select {
			case <-ctx.Done():
			case results <- Result[[]byte]{Err: fmt.Errorf("failed to scan input: %w", err)}:
			}
			return
		}
		slog.Debug("Reader exhausted, stopping collection", "lines", lines)
	}()

	return results, nil
}
