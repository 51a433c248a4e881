package tagger

import "github.com/DjordjeVuckovic/docstream/internal/domain/document"

// Mutator rewrites a document before it is tagged.
type Mutator interface {
	Apply(doc document.Document) document.Document
}

// FuncMutator replaces the document with the function's return value.
type FuncMutator func(doc document.Document) document.Document

func (f FuncMutator) Apply(doc document.Document) document.Document {
	return f(doc)
}

// MergeMutator overlays a static partial document onto every document.
type MergeMutator struct {
	Partial document.Document
}

func NewMergeMutator(partial document.Document) MergeMutator {
	return MergeMutator{Partial: partial}
}

func (m MergeMutator) Apply(doc document.Document) document.Document {
	return doc.Merge(m.Partial)
}
