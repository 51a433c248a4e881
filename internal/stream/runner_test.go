package stream

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/docstream/internal/collector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStage tags every chunk with its name and, when batch > 0, holds
// chunks back until batch of them arrived or the stage is flushed.
type recordingStage struct {
	name   string
	batch  int
	held   []Chunk
	log    *[]string
	failOn string
	// forwardOnFail makes the failing step still return its chunk.
	forwardOnFail bool
	flushes       int
}

func (s *recordingStage) Process(_ context.Context, c Chunk) ([]Chunk, error) {
	*s.log = append(*s.log, fmt.Sprintf("%s:process:%s", s.name, c.Raw))
	out := RawChunk(append(append([]byte{}, c.Raw...), s.name...))
	if string(c.Raw) == s.failOn {
		if s.forwardOnFail {
			return []Chunk{out}, errors.New("stage failed")
		}
		return nil, errors.New("stage failed")
	}
	if s.batch == 0 {
		return []Chunk{out}, nil
	}
	s.held = append(s.held, out)
	if len(s.held) < s.batch {
		return nil, nil
	}
	released := s.held
	s.held = nil
	return released, nil
}

func (s *recordingStage) Flush(_ context.Context) ([]Chunk, error) {
	s.flushes++
	*s.log = append(*s.log, s.name+":flush")
	released := s.held
	s.held = nil
	return released, nil
}

func collect(t *testing.T, results <-chan collector.Result[Chunk]) ([]string, error) {
	t.Helper()
	var out []string
	for res := range results {
		if res.Err != nil {
			return out, res.Err
		}
		out = append(out, string(res.Result.Raw))
	}
	return out, nil
}

func rawSource(items ...string) *collector.SliceCollector[Chunk] {
	chunks := make([]Chunk, len(items))
	for i, it := range items {
		chunks[i] = RawChunk([]byte(it))
	}
	return collector.NewSliceCollector(chunks...)
}

func TestRunner_ChainsStagesInOrder(t *testing.T) {
	var log []string
	a := &recordingStage{name: "a", log: &log}
	b := &recordingStage{name: "b", log: &log}

	results, err := NewRunner("test", a, b).Run(t.Context(), rawSource("1", "2"))
	require.NoError(t, err)

	out, err := collect(t, results)
	require.NoError(t, err)
	assert.Equal(t, []string{"1ab", "2ab"}, out)
	assert.Equal(t, []string{
		"a:process:1", "b:process:1a",
		"a:process:2", "b:process:2a",
		"a:flush", "b:flush",
	}, log)
}

func TestRunner_DrainPushesLeftoversDownstream(t *testing.T) {
	var log []string
	a := &recordingStage{name: "a", batch: 2, log: &log}
	b := &recordingStage{name: "b", batch: 10, log: &log}

	results, err := NewRunner("test", a, b).Run(t.Context(), rawSource("1", "2", "3"))
	require.NoError(t, err)

	out, err := collect(t, results)
	require.NoError(t, err)
	assert.Equal(t, []string{"1ab", "2ab", "3ab"}, out)
	assert.Equal(t, []string{
		"a:process:1",
		"a:process:2", "b:process:1a", "b:process:2a",
		"a:process:3",
		"a:flush", "b:process:3a",
		"b:flush",
	}, log)
	assert.Equal(t, 1, a.flushes)
	assert.Equal(t, 1, b.flushes)
}

func TestRunner_StageErrorEndsStream(t *testing.T) {
	var log []string
	a := &recordingStage{name: "a", log: &log, failOn: "2"}
	b := &recordingStage{name: "b", log: &log}

	results, err := NewRunner("test", a, b).Run(t.Context(), rawSource("1", "2", "3"))
	require.NoError(t, err)

	out, err := collect(t, results)
	assert.EqualError(t, err, "stage 0: stage failed")
	assert.Equal(t, []string{"1ab"}, out)
	assert.NotContains(t, log, "a:process:3")
	assert.Zero(t, a.flushes, "a failed stream is not drained")
}

func TestRunner_ChunksProducedWithErrorAreEmittedFirst(t *testing.T) {
	var log []string
	a := &recordingStage{name: "a", log: &log, failOn: "2", forwardOnFail: true}
	b := &recordingStage{name: "b", log: &log}

	results, err := NewRunner("test", a, b).Run(t.Context(), rawSource("1", "2", "3"))
	require.NoError(t, err)

	out, err := collect(t, results)
	assert.EqualError(t, err, "stage 0: stage failed")
	assert.Equal(t, []string{"1ab", "2ab"}, out)
	assert.Contains(t, log, "b:process:2a")
	assert.NotContains(t, log, "a:process:3")
}

func TestRunner_SourceErrorEndsStream(t *testing.T) {
	var log []string
	a := &recordingStage{name: "a", log: &log}
	boom := errors.New("read failed")

	results, err := NewRunner("test", a).Run(t.Context(), rawSource("1").WithError(boom))
	require.NoError(t, err)

	out, err := collect(t, results)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"1a"}, out)
	assert.Zero(t, a.flushes)
}

func TestRunner_NoStagesForwardsInput(t *testing.T) {
	results, err := NewRunner("test").Run(t.Context(), rawSource("x", "y"))
	require.NoError(t, err)

	out, err := collect(t, results)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, out)
}

func TestRunner_CollectorStartError(t *testing.T) {
	boom := errors.New("cannot open")
	src := collector.Func[Chunk](func(context.Context) (<-chan collector.Result[Chunk], error) {
		return nil, boom
	})

	_, err := NewRunner("test").Run(t.Context(), src)
	assert.ErrorIs(t, err, boom)
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	in := make(chan collector.Result[Chunk])
	src := collector.Func[Chunk](func(context.Context) (<-chan collector.Result[Chunk], error) {
		return in, nil
	})

	results, err := NewRunner("test").Run(ctx, src)
	require.NoError(t, err)
	cancel()

	for res := range results {
		if res.Err != nil {
			assert.ErrorIs(t, res.Err, context.Canceled)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "raw", want: Raw},
		{in: " Text ", want: Raw},
		{in: "structured", want: Structured},
		{in: "object", want: Structured},
		{in: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.String(), got.String())
		})
	}
}
