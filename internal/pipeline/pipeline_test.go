package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/docstream/internal/apperr"
	"github.com/DjordjeVuckovic/docstream/internal/codec"
	"github.com/DjordjeVuckovic/docstream/internal/collector"
	"github.com/DjordjeVuckovic/docstream/internal/config"
	"github.com/DjordjeVuckovic/docstream/internal/sink"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/DjordjeVuckovic/docstream/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/docstream/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ndjson = `{"title":"a","lang":"en"}
{"title":"b","lang":"de"}

{"lang":"en"}
{"title":"c","lang":"en","score":3}
`

func newSpec() *config.PipelineSpec {
	spec := config.Default()
	spec.Metadata.Name = "test"
	return spec
}

func TestPipeline_StoresInBatches(t *testing.T) {
	store := in_mem.NewInMemStorer()
	spec := newSpec()
	spec.Tagger.AutoIncrement = "seq"
	spec.Sink.WaterMark = 2

	var events []sink.BulkWriteEvent
	var out bytes.Buffer
	p, err := New(spec, store, WithOutput(&out), WithOnBulkWrite(func(e sink.BulkWriteEvent) {
		events = append(events, e)
	}))
	require.NoError(t, err)

	summary, err := p.Run(t.Context(), NewLineSource(strings.NewReader(ndjson), p.InputMode(), codec.NewJSON()))
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2}, store.BatchSizes())
	assert.Len(t, events, 2)
	assert.False(t, events[1].Final)
	assert.Empty(t, out.String(), "nothing is emitted without pass-through")

	docs := store.Documents()
	require.Len(t, docs, 4)
	for i, doc := range docs {
		assert.Equal(t, int64(i), doc["seq"])
	}

	assert.Equal(t, int64(4), summary.Read)
	assert.Equal(t, int64(4), summary.Tagged)
	assert.Equal(t, int64(2), summary.Batches)
	assert.Equal(t, int64(4), summary.Stored)
	assert.Zero(t, summary.Emitted)
}

func TestPipeline_FilterAndMutate(t *testing.T) {
	store := in_mem.NewInMemStorer()
	spec := newSpec()
	spec.Tagger.AutoIncrement = "seq"
	spec.Tagger.Mutate = map[string]any{"source": "kaggle"}
	spec.Tagger.Filter = &config.FilterSpec{
		RequiredFields: []string{"title"},
		Match:          map[string]any{"lang": "en"},
	}

	p, err := New(spec, store)
	require.NoError(t, err)

	summary, err := p.Run(t.Context(), NewLineSource(strings.NewReader(ndjson), p.InputMode(), codec.NewJSON()))
	require.NoError(t, err)

	docs := store.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0]["title"])
	assert.Equal(t, "c", docs[1]["title"])
	for i, doc := range docs {
		assert.Equal(t, "kaggle", doc["source"])
		assert.Equal(t, int64(i), doc["seq"])
	}
	assert.Equal(t, int64(2), summary.Filtered)
	assert.Equal(t, []int{2}, store.BatchSizes())
}

func TestPipeline_PassThroughMatchesStored(t *testing.T) {
	store := in_mem.NewInMemStorer()
	spec := newSpec()
	spec.Sink.PassThrough = true
	spec.Sink.WaterMark = 3

	var out bytes.Buffer
	p, err := New(spec, store, WithOutput(&out))
	require.NoError(t, err)

	summary, err := p.Run(t.Context(), NewLineSource(strings.NewReader(ndjson), p.InputMode(), codec.NewJSON()))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	c := codec.NewJSON()
	for i, doc := range store.Documents() {
		got, err := c.Decode([]byte(lines[i]))
		require.NoError(t, err)
		assert.Equal(t, doc, got)
	}
	assert.Equal(t, int64(4), summary.Emitted)
	assert.Equal(t, []int{3, 1}, store.BatchSizes())
}

func TestPipeline_WithoutSinkWritesTaggedLines(t *testing.T) {
	spec := newSpec()
	spec.Sink.Enabled = false
	spec.Tagger.AutoIncrement = "n"

	var out bytes.Buffer
	p, err := New(spec, nil, WithOutput(&out))
	require.NoError(t, err)

	input := "{\"a\":1}\n{\"a\":2}\n"
	_, err = p.Run(t.Context(), NewLineSource(strings.NewReader(input), p.InputMode(), codec.NewJSON()))
	require.NoError(t, err)

	assert.Equal(t, "{\"a\":1,\"n\":0}\n{\"a\":2,\"n\":1}\n", out.String())
}

func TestPipeline_StructuredInput(t *testing.T) {
	store := in_mem.NewInMemStorer()
	spec := newSpec()
	spec.Tagger.InputMode = "structured"

	p, err := New(spec, store)
	require.NoError(t, err)
	assert.Equal(t, stream.Structured, p.InputMode())

	_, err = p.Run(t.Context(), NewLineSource(strings.NewReader(ndjson), p.InputMode(), codec.NewJSON()))
	require.NoError(t, err)
	assert.Len(t, store.Documents(), 4)

	_, err = p.Run(t.Context(), NewLineSource(strings.NewReader("{\"a\":1}\nnot json\n"), p.InputMode(), codec.NewJSON()))
	var decodeErr *apperr.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
}

func TestPipeline_DecodeErrorStopsRun(t *testing.T) {
	store := in_mem.NewInMemStorer()
	p, err := New(newSpec(), store)
	require.NoError(t, err)

	input := "{\"a\":1}\n{\"a\":\n{\"a\":3}\n"
	_, err = p.Run(t.Context(), NewLineSource(strings.NewReader(input), p.InputMode(), codec.NewJSON()))

	var decodeErr *apperr.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Empty(t, store.Documents(), "the pending batch is not written after a failure")
}

func TestPipeline_IgnoreUndecodableReassemblesSplitLines(t *testing.T) {
	store := in_mem.NewInMemStorer()
	spec := newSpec()
	spec.Tagger.IgnoreUndecodable = true

	p, err := New(spec, store)
	require.NoError(t, err)

	src := collector.NewSliceCollector(
		stream.RawChunk([]byte(`{"title":`)),
		stream.RawChunk([]byte(`"split"}`)),
		stream.RawChunk([]byte(`{"title":"whole"}`)),
	)
	_, err = p.Run(t.Context(), src)
	require.NoError(t, err)

	docs := store.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "split", docs[0]["title"])
	assert.Equal(t, "whole", docs[1]["title"])
}

type failingInserter struct {
	calls int
}

func (f *failingInserter) BulkInsert(_ context.Context, _ []storage.InsertOp) (*storage.BulkResult, error) {
	f.calls++
	return nil, errors.New("connection refused")
}

func TestPipeline_SinkFailureIsNotRetried(t *testing.T) {
	ins := &failingInserter{}
	spec := newSpec()
	spec.Sink.WaterMark = 1

	p, err := New(spec, ins)
	require.NoError(t, err)

	summary, err := p.Run(t.Context(), NewLineSource(strings.NewReader(ndjson), p.InputMode(), codec.NewJSON()))

	var writeErr *apperr.SinkWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, 1, ins.calls)
	assert.Equal(t, int64(1), summary.Failed)
}

func TestPipeline_PassThroughKeepsItemOfFailedBatch(t *testing.T) {
	ins := &failingInserter{}
	spec := newSpec()
	spec.Sink.PassThrough = true
	spec.Sink.WaterMark = 2

	var out bytes.Buffer
	p, err := New(spec, ins, WithOutput(&out))
	require.NoError(t, err)

	input := "{\"a\":1}\n{\"a\":2}\n"
	_, err = p.Run(t.Context(), NewLineSource(strings.NewReader(input), p.InputMode(), codec.NewJSON()))

	var writeErr *apperr.SinkWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, 1, ins.calls)
	assert.Equal(t, "{\"a\":1}\n{\"a\":2}\n", out.String())
}

func TestPipeline_SourceError(t *testing.T) {
	store := in_mem.NewInMemStorer()
	p, err := New(newSpec(), store)
	require.NoError(t, err)

	boom := errors.New("disk gone")
	src := collector.NewSliceCollector(stream.RawChunk([]byte(`{"a":1}`))).WithError(boom)
	_, err = p.Run(t.Context(), src)
	assert.ErrorIs(t, err, boom)
}

func TestNew_Errors(t *testing.T) {
	_, err := New(newSpec(), nil)
	var cfgErr *apperr.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	spec := newSpec()
	spec.Tagger.OutputMode = "xml"
	_, err = New(spec, in_mem.NewInMemStorer())
	assert.ErrorContains(t, err, "unknown stream mode")
}

func TestNewFilter(t *testing.T) {
	assert.Nil(t, NewFilter(nil))
	assert.Nil(t, NewFilter(&config.FilterSpec{}))

	keep := NewFilter(&config.FilterSpec{
		RequiredFields: []string{"id"},
		Match:          map[string]any{"score": 3, "tags": []any{"x"}},
	})
	tests := []struct {
		name string
		doc  map[string]any
		want bool
	}{
		{name: "json float matches yaml int", doc: map[string]any{"id": "1", "score": float64(3), "tags": []any{"x"}}, want: true},
		{name: "different number", doc: map[string]any{"id": "1", "score": 3.5, "tags": []any{"x"}}, want: false},
		{name: "missing required", doc: map[string]any{"score": 3, "tags": []any{"x"}}, want: false},
		{name: "missing match field", doc: map[string]any{"id": "1", "tags": []any{"x"}}, want: false},
		{name: "different list", doc: map[string]any{"id": "1", "score": 3, "tags": []any{"y"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keep(tt.doc))
		})
	}
}

func TestPipeline_RecordsBulkLatency(t *testing.T) {
	store := in_mem.NewInMemStorer()
	spec := newSpec()
	spec.Sink.WaterMark = 1

	p, err := New(spec, store)
	require.NoError(t, err)

	summary, err := p.Run(t.Context(), NewLineSource(strings.NewReader(ndjson), p.InputMode(), codec.NewJSON()))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.BulkLatency.SampleCount)
	assert.LessOrEqual(t, summary.BulkLatency.Min, summary.BulkLatency.Max)
}

func TestNewCSVSource(t *testing.T) {
	store := in_mem.NewInMemStorer()
	spec := newSpec()
	spec.Tagger.InputMode = "structured"
	spec.Tagger.AutoIncrement = "row"

	p, err := New(spec, store)
	require.NoError(t, err)

	_, err = p.Run(t.Context(), NewCSVSource(strings.NewReader("title,lang\na,en\nb,de\n")))
	require.NoError(t, err)

	docs := store.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "b", docs[1]["title"])
	assert.Equal(t, int64(1), docs[1]["row"])
}
