// Package tagger implements a stage that decodes, filters, mutates and sequence-tags
// documents, in that order.
package tagger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/DjordjeVuckovic/docstream/internal/apperr"
	"github.com/DjordjeVuckovic/docstream/internal/codec"
	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/stream"
)

type Option func(*Tagger)

// WithAutoIncrement sets the field that receives the sequence number of each accepted document.
func WithAutoIncrement(field string) Option {
	return func(t *Tagger) {
		t.autoIncrement = field
	}
}

// WithIgnoreUndecodable holds raw chunks that fail to decode and prepends them to the next chunk
// instead of failing the stream.
func WithIgnoreUndecodable(ignore bool) Option {
	return func(t *Tagger) {
		t.ignoreUndecodable = ignore
	}
}

func WithInputMode(m stream.Mode) Option {
	return func(t *Tagger) {
		t.inputMode = m
	}
}

func WithOutputMode(m stream.Mode) Option {
	return func(t *Tagger) {
		t.outputMode = m
	}
}

// WithFilter drops documents for which keep returns false.
func WithFilter(keep func(document.Document) bool) Option {
	return func(t *Tagger) {
		t.filter = keep
	}
}

func WithMutator(m Mutator) Option {
	return func(t *Tagger) {
		t.mutator = m
	}
}

func WithCodec(c codec.Codec) Option {
	return func(t *Tagger) {
		t.codec = c
	}
}

// WithOnFiltered registers the observer for dropped documents.
func WithOnFiltered(fn func(document.Document)) Option {
	return func(t *Tagger) {
		t.onFiltered = fn
	}
}

type Tagger struct {
	mu sync.Mutex

	autoIncrement     string
	ignoreUndecodable bool
	inputMode         stream.Mode
	outputMode        stream.Mode
	filter            func(document.Document) bool
	mutator           Mutator
	codec             codec.Codec
	onFiltered        func(document.Document)

	counter int64
	pending []byte
}

// New creates a tagger. Without options it accepts documents and emits their JSON encoding.
func New(opts ...Option) *Tagger {
	t := &Tagger{
		inputMode:  stream.Structured,
		outputMode: stream.Raw,
		codec:      codec.NewJSON(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tagger) Process(_ context.Context, c stream.Chunk) ([]stream.Chunk, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	doc, ok, err := t.decode(c)
	if err != nil || !ok {
		return nil, err
	}

	if t.filter != nil && !t.filter(doc) {
		if t.onFiltered != nil {
			t.onFiltered(doc)
		}
		return nil, nil
	}

	if t.mutator != nil {
		doc = t.mutator.Apply(doc)
	}
	if doc == nil {
		return nil, nil
	}

	if t.autoIncrement != "" {
		doc[t.autoIncrement] = t.counter
		t.counter++
	}

	if t.outputMode == stream.Raw {
		raw, err := t.codec.Encode(doc)
		if err != nil {
			return nil, apperr.NewEncode(err)
		}
		return []stream.Chunk{stream.RawChunk(raw)}, nil
	}
	return []stream.Chunk{stream.DocChunk(doc)}, nil
}

// Flush drops any fragment still waiting for its continuation.
func (t *Tagger) Flush(_ context.Context) ([]stream.Chunk, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.pending) > 0 {
		slog.Warn("Discarding undecodable fragment at end of input", "bytes", len(t.pending))
		t.pending = nil
	}
	return nil, nil
}

// Counter returns the next sequence number to be assigned.
func (t *Tagger) Counter() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counter
}

func (t *Tagger) decode(c stream.Chunk) (document.Document, bool, error) {
	if t.inputMode == stream.Structured {
		if c.Doc == nil {
			return nil, false, nil
		}
		return c.Doc, true, nil
	}

	raw := c.Raw
	if len(t.pending) > 0 {
		joined := make([]byte, 0, len(t.pending)+len(raw))
		joined = append(joined, t.pending...)
		raw = append(joined, raw...)
		t.pending = nil
	}
	if len(raw) == 0 {
		return nil, false, nil
	}

	doc, err := t.codec.Decode(raw)
	if err != nil {
		if t.ignoreUndecodable {
			t.pending = raw
			slog.Debug("Holding undecodable fragment", "bytes", len(raw))
			return nil, false, nil
		}
		return nil, false, apperr.NewDecode(raw, err)
	}
	return doc, true, nil
}
