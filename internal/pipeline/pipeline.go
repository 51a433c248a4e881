// Package pipeline assembles a tagger and an optional batching sink from a pipeline
// definition and runs them over a source.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/docstream/internal/codec"
	"github.com/DjordjeVuckovic/docstream/internal/collector"
	"github.com/DjordjeVuckovic/docstream/internal/config"
	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/sink"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/DjordjeVuckovic/docstream/internal/stream"
	"github.com/DjordjeVuckovic/docstream/internal/tagger"
)

// Summary reports what one run did.
type Summary struct {
	Read     int64         `json:"read"`
	Filtered int64         `json:"filtered"`
	// Tagged counts sequence numbers handed out; zero without auto-increment.
	Tagged   int64         `json:"tagged"`
	Emitted  int64         `json:"emitted"`
	Batches  int64         `json:"batches"`
	Failed   int64         `json:"failed_batches"`
	Stored   int64         `json:"stored"`
	Duration time.Duration `json:"duration"`

	BulkLatency LatencyStats `json:"bulk_latency"`
}

type Option func(*Pipeline)

// WithOutput sets where emitted chunks are written, one per line. Output is discarded by default.
func WithOutput(w io.Writer) Option {
	return func(p *Pipeline) {
		p.out = w
	}
}

func WithCodec(c codec.Codec) Option {
	return func(p *Pipeline) {
		p.codec = c
	}
}

// WithOnBulkWrite observes every settled bulk insert.
func WithOnBulkWrite(fn func(sink.BulkWriteEvent)) Option {
	return func(p *Pipeline) {
		p.onBulkWrite = fn
	}
}

type Pipeline struct {
	name        string
	spec        *config.PipelineSpec
	codec       codec.Codec
	out         io.Writer
	onBulkWrite func(sink.BulkWriteEvent)

	tagger  *tagger.Tagger
	sink    *sink.BatchSink
	latency latencyRecorder

	read     atomic.Int64
	filtered atomic.Int64
	emitted  atomic.Int64
}

// New builds the stages described by spec. inserter is required only when the sink is enabled.
func New(spec *config.PipelineSpec, inserter storage.BulkInserter, opts ...Option) (*Pipeline, error) {
	if spec == nil {
		spec = config.Default()
	}

	p := &Pipeline{
		name:  spec.Metadata.Name,
		spec:  spec,
		codec: codec.NewJSON(),
		out:   io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}

	input, err := spec.Tagger.Input()
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", p.name, err)
	}
	output, err := spec.Tagger.Output()
	if err != nil {
		return nil, fmt.Errorf("pipeline %s: %w", p.name, err)
	}
	// The sink only accepts documents.
	if spec.Sink.Enabled {
		output = stream.Structured
	}

	taggerOpts := []tagger.Option{
		tagger.WithAutoIncrement(spec.Tagger.AutoIncrement),
		tagger.WithIgnoreUndecodable(spec.Tagger.IgnoreUndecodable),
		tagger.WithInputMode(input),
		tagger.WithOutputMode(output),
		tagger.WithCodec(p.codec),
		tagger.WithOnFiltered(func(doc document.Document) {
			p.filtered.Add(1)
			slog.Debug("Document filtered", "pipeline", p.name, "fields", len(doc))
		}),
	}
	if keep := NewFilter(spec.Tagger.Filter); keep != nil {
		taggerOpts = append(taggerOpts, tagger.WithFilter(keep))
	}
	if len(spec.Tagger.Mutate) > 0 {
		taggerOpts = append(taggerOpts, tagger.WithMutator(tagger.NewMergeMutator(spec.Tagger.Mutate)))
	}
	p.tagger = tagger.New(taggerOpts...)

	if spec.Sink.Enabled {
		sinkOpts := []sink.Option{
			sink.WithName(p.name),
			sink.WithPassThrough(spec.Sink.PassThrough),
			sink.WithOnBulkWrite(func(e sink.BulkWriteEvent) {
				p.latency.record(e.Duration)
				if p.onBulkWrite != nil {
					p.onBulkWrite(e)
				}
			}),
		}
		if spec.Sink.WaterMark > 0 {
			sinkOpts = append(sinkOpts, sink.WithWaterMark(spec.Sink.WaterMark))
		}
		p.sink, err = sink.New(inserter, sinkOpts...)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w", p.name, err)
		}
	}

	return p, nil
}

// InputMode is the chunk kind the pipeline expects from its source.
func (p *Pipeline) InputMode() stream.Mode {
	m, _ := p.spec.Tagger.Input()
	return m
}

// Run drives src through the stages and writes every emitted chunk to the output.
// It stops at the first error; the summary reflects the work done up to that point.
func (p *Pipeline) Run(ctx context.Context, src collector.Collector[stream.Chunk]) (*Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	slog.Info("🛫 Starting pipeline run",
		"pipeline", p.name,
		"sink_enabled", p.sink != nil,
		"water_mark", p.spec.Sink.WaterMark,
		"pass_through", p.spec.Sink.PassThrough,
		"time", start,
	)

	counted := collector.Map[stream.Chunk, stream.Chunk](src, func(c stream.Chunk) stream.Chunk {
		p.read.Add(1)
		return c
	})

	stages := []stream.Stage{p.tagger}
	if p.sink != nil {
		stages = append(stages, p.sink)
	}

	results, err := stream.NewRunner(p.name, stages...).Run(ctx, counted)
	if err != nil {
		slog.Error("Error starting pipeline", "error", err, "pipeline", p.name)
		return p.summary(start), err
	}

	w := bufio.NewWriter(p.out)
	var runErr error
	for res := range results {
		if res.Err != nil {
			runErr = res.Err
			break
		}
		if err := p.write(w, res.Result); err != nil {
			runErr = err
			break
		}
	}
	if err := w.Flush(); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to write output: %w", err)
	}

	summary := p.summary(start)
	slog.Info("Pipeline run completed",
		"pipeline", p.name,
		"duration", summary.Duration,
		"read", summary.Read,
		"filtered", summary.Filtered,
		"tagged", summary.Tagged,
		"emitted", summary.Emitted,
		"batches", summary.Batches,
		"failed_batches", summary.Failed,
		"stored", summary.Stored,
		"bulk_p95", summary.BulkLatency.P95,
		"error", runErr,
	)

	return summary, runErr
}

func (p *Pipeline) write(w *bufio.Writer, c stream.Chunk) error {
	line := c.Raw
	if !c.IsRaw() {
		var err error
		if line, err = p.codec.Encode(c.Doc); err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
	}
	if _, err := w.Write(line); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	p.emitted.Add(1)
	return nil
}

func (p *Pipeline) summary(start time.Time) *Summary {
	s := &Summary{
		Read:     p.read.Load(),
		Filtered: p.filtered.Load(),
		Tagged:   p.tagger.Counter(),
		Emitted:  p.emitted.Load(),
		Duration: time.Since(start),
	}
	if p.sink != nil {
		stats := p.sink.Stats()
		s.Batches = stats.Batches
		s.Failed = stats.FailedBatches
		s.Stored = stats.Written
		s.BulkLatency = p.latency.stats()
	}
	return s
}
