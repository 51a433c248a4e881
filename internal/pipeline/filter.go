package pipeline

import (
	"reflect"

	"github.com/DjordjeVuckovic/docstream/internal/config"
	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
)

// NewFilter builds a keep predicate from filter rules. A nil spec keeps everything.
func NewFilter(spec *config.FilterSpec) func(document.Document) bool {
	if spec == nil || (len(spec.RequiredFields) == 0 && len(spec.Match) == 0) {
		return nil
	}

	return func(doc document.Document) bool {
		if !document.ContainsFields(doc, spec.RequiredFields) {
			return false
		}
		for field, want := range spec.Match {
			got, ok := doc[field]
			if !ok || !equalValues(got, want) {
				return false
			}
		}
		return true
	}
}

// equalValues compares numbers by value, since YAML decodes integers as int and
// JSON decodes them as int64 or float64.
func equalValues(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
