package pg

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const DefaultTable = "documents"

var copyColumns = []string{"id", "body", "inserted_at"}

// Storer writes documents as jsonb rows with COPY.
type Storer struct {
	pool  *ConnectionPool
	db    *pgxpool.Pool
	table string
}

func NewStorer(ctx context.Context, pool *ConnectionPool, table string) (*Storer, error) {
	if table == "" {
		table = DefaultTable
	}
	s := &Storer{pool: pool, db: pool.conn, table: table}

	if err := s.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Storer) EnsureTable(ctx context.Context) error {
	cmd := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            id          TEXT PRIMARY KEY,
            body        JSONB NOT NULL,
            inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
        );
    `, pgx.Identifier{s.table}.Sanitize())

	if _, err := s.db.Exec(ctx, cmd); err != nil {
		return fmt.Errorf("failed to ensure table %s: %w", s.table, err)
	}
	return nil
}

func (s *Storer) BulkInsert(ctx context.Context, ops []storage.InsertOp) (*storage.BulkResult, error) {
	if len(ops) == 0 {
		return &storage.BulkResult{}, nil
	}

	rows, ids, err := toRows(ops, time.Now())
	if err != nil {
		return &storage.BulkResult{Failed: int64(len(ops))}, err
	}

	n, err := s.db.CopyFrom(
		ctx,
		pgx.Identifier{s.table},
		copyColumns,
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return &storage.BulkResult{Failed: int64(len(ops))}, fmt.Errorf("failed to bulk insert documents: %w", err)
	}

	slog.Debug("Bulk copy completed", "rows", n, "table", s.table)
	return &storage.BulkResult{Inserted: n, InsertedIDs: ids}, nil
}

func (s *Storer) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Storer) Close(_ context.Context) error {
	s.pool.Close()
	return nil
}

func toRows(ops []storage.InsertOp, now time.Time) ([][]any, []string, error) {
	rows := make([][]any, len(ops))
	ids := make([]string, len(ops))

	for i, op := range ops {
		id, ok := op.Document.ID()
		if !ok {
			id = uuid.NewString()
		}

		body := op.Document
		if body.ContainsField(document.IDField) {
			body = body.Clone()
			delete(body, document.IDField)
		}

		bodyJSON, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal document %d: %w", i, err)
		}

		rows[i] = []any{id, bodyJSON, now}
		ids[i] = id
	}
	return rows, ids, nil
}
