package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
)

var (
	ErrNotObject    = errors.New("chunk is not an object")
	ErrTrailingData = errors.New("chunk has data after the object")
)

// Codec converts between raw chunks and documents.
type Codec interface {
	Decode(raw []byte) (document.Document, error)
	Encode(doc document.Document) ([]byte, error)
}

// JSON treats every chunk as exactly one JSON object.
// Integral numbers that fit in an int64 decode as int64, all other numbers as float64.
type JSON struct{}

func NewJSON() JSON {
	return JSON{}
}

func (JSON) Decode(raw []byte) (document.Document, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var doc document.Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotObject
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}

	for k, v := range doc {
		n, err := normalizeNumbers(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", k, err)
		}
		doc[k] = n
	}
	return doc, nil
}

func (JSON) Encode(doc document.Document) ([]byte, error) {
	return json.Marshal(doc)
}

func normalizeNumbers(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		return val.Float64()
	case map[string]any:
		for k, item := range val {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			val[k] = n
		}
		return val, nil
	case []any:
		for i, item := range val {
			n, err := normalizeNumbers(item)
			if err != nil {
				return nil, err
			}
			val[i] = n
		}
		return val, nil
	default:
		return v, nil
	}
}
