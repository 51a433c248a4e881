package in_mem

import (
	"context"
	"log/slog"
	"sync"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/google/uuid"
)

type InMemStorer struct {
	storageLock sync.RWMutex
	documents   []document.Document
	batches     [][]document.Document
}

func NewInMemStorer() *InMemStorer {
	return &InMemStorer{}
}

func (s *InMemStorer) BulkInsert(ctx context.Context, ops []storage.InsertOp) (*storage.BulkResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	batch := make([]document.Document, 0, len(ops))
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		id, ok := op.Document.ID()
		if !ok {
			id = uuid.NewString()
		}
		ids = append(ids, id)
		batch = append(batch, op.Document)
	}
	s.documents = append(s.documents, batch...)
	s.batches = append(s.batches, batch)

	slog.Debug("Saved documents to in-memory storage", "count", len(batch), "total", len(s.documents))
	return &storage.BulkResult{Inserted: int64(len(batch)), InsertedIDs: ids}, nil
}

func (s *InMemStorer) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Documents returns every stored document in insertion order.
func (s *InMemStorer) Documents() []document.Document {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()
	out := make([]document.Document, len(s.documents))
	copy(out, s.documents)
	return out
}

// BatchSizes returns the size of every bulk insert received so far.
func (s *InMemStorer) BatchSizes() []int {
	s.storageLock.RLock()
	defer s.storageLock.RUnlock()
	sizes := make([]int, len(s.batches))
	for i, b := range s.batches {
		sizes[i] = len(b)
	}
	return sizes
}
