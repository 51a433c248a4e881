// Package sink implements a stage that groups documents into fixed-size batches and
// writes each batch to a storage backend with a single bulk insert.
package sink

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DjordjeVuckovic/docstream/internal/apperr"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/DjordjeVuckovic/docstream/internal/stream"
	"github.com/google/uuid"
)

const DefaultWaterMark = 50

type State int32

const (
	Idle State = iota
	Flushing
)

func (s State) String() string {
	if s == Flushing {
		return "flushing"
	}
	return "idle"
}

// BulkWriteEvent describes one settled bulk insert, successful or not.
type BulkWriteEvent struct {
	BatchID  uuid.UUID
	Sequence int64
	Size     int
	Final    bool
	Result   *storage.BulkResult
	Err      error
	Duration time.Duration
}

type Stats struct {
	Accepted      int64
	Batches       int64
	FailedBatches int64
	Written       int64
}

type Option func(*BatchSink)

// WithWaterMark sets how many documents are buffered before a bulk insert is issued.
func WithWaterMark(n int) Option {
	return func(s *BatchSink) {
		s.waterMark = n
	}
}

// WithPassThrough forwards every accepted document to the stage output.
func WithPassThrough(enabled bool) Option {
	return func(s *BatchSink) {
		s.passThrough = enabled
	}
}

func WithOnBulkWrite(fn func(BulkWriteEvent)) Option {
	return func(s *BatchSink) {
		s.onBulkWrite = fn
	}
}

func WithName(name string) Option {
	return func(s *BatchSink) {
		s.name = name
	}
}

type BatchSink struct {
	// mu is held for a whole Process or Flush step, including the bulk insert,
	// so callers queue behind an in-flight write.
	mu sync.Mutex

	name        string
	inserter    storage.BulkInserter
	waterMark   int
	passThrough bool
	onBulkWrite func(BulkWriteEvent)

	buffer []storage.InsertOp
	state  atomic.Int32

	accepted      atomic.Int64
	batches       atomic.Int64
	failedBatches atomic.Int64
	written       atomic.Int64
}

func New(inserter storage.BulkInserter, opts ...Option) (*BatchSink, error) {
	if inserter == nil {
		return nil, apperr.NewConfiguration("batch sink: bulk inserter is required")
	}

	s := &BatchSink{
		name:      "batch-sink",
		inserter:  inserter,
		waterMark: DefaultWaterMark,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.waterMark <= 0 {
		return nil, apperr.NewConfiguration("batch sink: water mark must be positive")
	}
	s.buffer = make([]storage.InsertOp, 0, s.waterMark)

	return s, nil
}

func (s *BatchSink) Process(ctx context.Context, c stream.Chunk) ([]stream.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Doc == nil {
		if c.IsRaw() {
			return nil, apperr.NewConfiguration("batch sink: received a raw chunk, upstream must emit documents")
		}
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []stream.Chunk
	if s.passThrough {
		out = []stream.Chunk{c}
	}

	s.buffer = append(s.buffer, storage.NewInsertOp(c.Doc))
	s.accepted.Add(1)

	if len(s.buffer) < s.waterMark {
		return out, nil
	}
	return out, s.flush(ctx, false)
}

// Flush writes whatever is still buffered. It is called once at end of input.
func (s *BatchSink) Flush(ctx context.Context) ([]stream.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.buffer) == 0 {
		return nil, nil
	}
	return nil, s.flush(ctx, true)
}

func (s *BatchSink) State() State {
	return State(s.state.Load())
}

func (s *BatchSink) Stats() Stats {
	return Stats{
		Accepted:      s.accepted.Load(),
		Batches:       s.batches.Load(),
		FailedBatches: s.failedBatches.Load(),
		Written:       s.written.Load(),
	}
}

func (s *BatchSink) flush(ctx context.Context, final bool) error {
	batch := s.buffer
	s.buffer = make([]storage.InsertOp, 0, s.waterMark)

	s.state.Store(int32(Flushing))
	start := time.Now()
	// The write must settle even if the caller gives up.
	res, err := s.inserter.BulkInsert(context.WithoutCancel(ctx), batch)
	duration := time.Since(start)
	s.state.Store(int32(Idle))

	seq := s.batches.Add(1)
	event := BulkWriteEvent{
		BatchID:  uuid.New(),
		Sequence: seq,
		Size:     len(batch),
		Final:    final,
		Result:   res,
		Err:      err,
		Duration: duration,
	}
	if s.onBulkWrite != nil {
		s.onBulkWrite(event)
	}

	if err != nil {
		s.failedBatches.Add(1)
		slog.Error("Error saving bulk documents",
			"error", err,
			"count", len(batch),
			"sink", s.name,
			"batch", seq,
			"final", final,
		)
		return apperr.NewSinkWrite(len(batch), err)
	}

	s.written.Add(int64(len(batch)))
	slog.Debug("Bulk documents saved successfully",
		"count", len(batch),
		"sink", s.name,
		"batch", seq,
		"final", final,
		"duration", duration,
	)
	return nil
}
