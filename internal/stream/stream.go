// Package stream defines the transform-stage contract shared by pipeline stages
// and a runner that drives a chain of stages over a collector.
package stream

import (
	"context"
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
)

// Mode selects whether a stage side carries raw bytes or structured documents.
type Mode int

const (
	Structured Mode = iota
	Raw
)

func (m Mode) String() string {
	switch m {
	case Structured:
		return "structured"
	case Raw:
		return "raw"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structured", "object":
		return Structured, nil
	case "raw", "text":
		return Raw, nil
	default:
		return 0, fmt.Errorf("unknown stream mode %q", s)
	}
}

// Chunk is one unit flowing between stages: raw bytes or a document.
type Chunk struct {
	Raw []byte
	Doc document.Document
}

func RawChunk(b []byte) Chunk {
	return Chunk{Raw: b}
}

func DocChunk(d document.Document) Chunk {
	return Chunk{Doc: d}
}

func (c Chunk) IsRaw() bool {
	return c.Doc == nil && c.Raw != nil
}

// Stage processes one chunk at a time. Process returns the chunks produced for the
// input (possibly none). Flush is called once at end of input and returns any
// remaining chunks. An error from either is terminal for the stream.
type Stage interface {
	Process(ctx context.Context, c Chunk) ([]Chunk, error)
	Flush(ctx context.Context) ([]Chunk, error)
}
