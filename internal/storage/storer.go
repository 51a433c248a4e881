package storage

import (
	"context"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
)

// InsertOp is a single insert request inside a bulk write.
type InsertOp struct {
	Document document.Document
}

func NewInsertOp(doc document.Document) InsertOp {
	return InsertOp{Document: doc}
}

// BulkResult is what a backend reports for one bulk write.
type BulkResult struct {
	Inserted    int64
	Failed      int64
	InsertedIDs []string
}

// BulkInserter writes an ordered batch of inserts in one call.
// A nil error means the whole batch was accepted; the result may be partial otherwise.
type BulkInserter interface {
	BulkInsert(ctx context.Context, ops []InsertOp) (*BulkResult, error)
}

type Type string

const (
	Mongo Type = "mongo"
	ES    Type = "es"
	PG    Type = "pg"
	Kafka Type = "kafka"
	Redis Type = "redis"
	InMem Type = "in_mem"
)

func Types() []Type {
	return []Type{Mongo, ES, PG, Kafka, Redis, InMem}
}

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}

func Documents(ops []InsertOp) []document.Document {
	docs := make([]document.Document, len(ops))
	for i, op := range ops {
		docs[i] = op.Document
	}
	return docs
}
