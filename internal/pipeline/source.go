package pipeline

import (
	"context"
	"io"

	"github.com/DjordjeVuckovic/docstream/internal/apperr"
	"github.com/DjordjeVuckovic/docstream/internal/codec"
	"github.com/DjordjeVuckovic/docstream/internal/collector"
	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/stream"
)

// NewLineSource reads NDJSON from r. In raw mode every line becomes a raw chunk; in
// structured mode lines are decoded up front and a bad line ends the stream.
func NewLineSource(r io.Reader, mode stream.Mode, c codec.Codec) collector.Collector[stream.Chunk] {
	lines := collector.NewLineCollector(r)
	if mode == stream.Raw {
		return collector.Map[[]byte, stream.Chunk](lines, stream.RawChunk)
	}

	return collector.Func[stream.Chunk](func(ctx context.Context) (<-chan collector.Result[stream.Chunk], error) {
		in, err := lines.Collect(ctx)
		if err != nil {
			return nil, err
		}

		out := make(chan collector.Result[stream.Chunk])
		go func() {
			defer close(out)
			for res := range in {
				var next collector.Result[stream.Chunk]
				if res.Err != nil {
					next.Err = res.Err
				} else if doc, err := c.Decode(res.Result); err != nil {
					next.Err = apperr.NewDecode(res.Result, err)
				} else {
					next.Result = stream.DocChunk(doc)
				}

				select {
				case <-ctx.Done():
					return
				case out <- next:
				}
				if next.Err != nil {
					return
				}
			}
		}()
		return out, nil
	})
}

// NewCSVSource emits one document per CSV row; the tagger must take structured input.
func NewCSVSource(r io.Reader, opts ...collector.CSVCollectorOption) collector.Collector[stream.Chunk] {
	return collector.Map[document.Document, stream.Chunk](collector.NewCSVCollector(r, opts...), stream.DocChunk)
}
