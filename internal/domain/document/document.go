package document

import "fmt"

// IDField is the key sinks look up when a backend needs a document identifier.
const IDField = "_id"

// Document is a structured record flowing through a pipeline.
// Values are expected to be JSON-representable.
type Document map[string]any

func (d Document) ContainsField(field string) bool {
	_, ok := d[field]
	return ok
}

// Merge overlays the fields of partial onto d. Keys present in both take the value from partial.
func (d Document) Merge(partial Document) Document {
	if d == nil {
		d = make(Document, len(partial))
	}
	for k, v := range partial {
		d[k] = v
	}
	return d
}

// Clone returns a shallow copy of d.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// ID returns the string form of the document identifier, if one is set.
func (d Document) ID() (string, bool) {
	v, ok := d[IDField]
	if !ok || v == nil {
		return "", false
	}
	switch id := v.(type) {
	case string:
		return id, id != ""
	case fmt.Stringer:
		return id.String(), true
	default:
		return fmt.Sprint(id), true
	}
}

func ContainsFields(doc Document, fields []string) bool {
	for _, field := range fields {
		if !doc.ContainsField(field) {
			return false
		}
	}
	return true
}
