package collector

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
)

// CSVCollector emits one document per CSV row, keyed by the header row.
// Rows are read sequentially so their order is preserved.
type CSVCollector struct {
	reader io.Reader
	comma  rune
}

type CSVCollectorOption func(*CSVCollector)

func WithComma(comma rune) CSVCollectorOption {
	return func(c *CSVCollector) {
		c.comma = comma
	}
}

func NewCSVCollector(r io.Reader, opts ...CSVCollectorOption) *CSVCollector {
	c := &CSVCollector{
		reader: r,
		comma:  ',',
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (cc *CSVCollector) Collect(ctx context.Context) (<-chan Result[document.Document], error) {
	if cc.reader == nil {
		return nil, fmt.Errorf("csv collector: reader is nil")
	}

	csvReader := csv.NewReader(cc.reader)
	csvReader.Comma = cc.comma
	csvReader.ReuseRecord = true

	headers, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	headers = append([]string(nil), headers...)

	results := make(chan Result[document.Document])
	go func() {
		defer close(results)

		rows := 0
		for {
			row, err := csvReader.Read()
			if errors.Is(err, io.EOF) {
				slog.Debug("CSV exhausted, stopping collection", "rows", rows)
				return
			}

			var res Result[document.Document]
			if err != nil {
				slog.Error("Error reading CSV row", "error", err, "rows", rows)
				res.Err = fmt.Errorf("failed to read csv row %d: %w", rows+1, err)
			} else {
				doc := make(document.Document, len(headers))
				for i, h := range headers {
					doc[h] = row[i]
				}
				res.Result = doc
			}

			select {
			case <-ctx.Done():
				return
			case results <- res:
			}
			if res.Err != nil {
				return
			}
			rows++
		}
	}()

	return results, nil
}
