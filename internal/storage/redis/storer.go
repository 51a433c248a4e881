package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Stream   string
	// MaxLen caps the stream length approximately; zero leaves it unbounded.
	MaxLen int64
}

// Storer appends documents to a Redis stream, one XADD per document in a single pipeline.
type Storer struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewStorer(ctx context.Context, config Config) (*Storer, error) {
	if config.Addr == "" || config.Stream == "" {
		return nil, fmt.Errorf("redis configuration is incomplete: address or stream is missing")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Storer{client: client, stream: config.Stream, maxLen: config.MaxLen}, nil
}

func (s *Storer) BulkInsert(ctx context.Context, ops []storage.InsertOp) (*storage.BulkResult, error) {
	if len(ops) == 0 {
		return &storage.BulkResult{}, nil
	}

	args, err := s.toXAddArgs(ops)
	if err != nil {
		return &storage.BulkResult{Failed: int64(len(ops))}, err
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(args))
	for i, a := range args {
		cmds[i] = pipe.XAdd(ctx, a)
	}
	_, execErr := pipe.Exec(ctx)

	result := &storage.BulkResult{}
	for _, cmd := range cmds {
		if cmd.Err() != nil {
			result.Failed++
			continue
		}
		result.Inserted++
		result.InsertedIDs = append(result.InsertedIDs, cmd.Val())
	}

	if execErr != nil {
		return result, fmt.Errorf("failed to append %d out of %d documents: %w", result.Failed, len(ops), execErr)
	}

	slog.Debug("Appended batch to stream", "count", result.Inserted, "stream", s.stream)
	return result, nil
}

func (s *Storer) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Storer) Close(_ context.Context) error {
	return s.client.Close()
}

func (s *Storer) toXAddArgs(ops []storage.InsertOp) ([]*redis.XAddArgs, error) {
	args := make([]*redis.XAddArgs, len(ops))
	for i, op := range ops {
		id, ok := op.Document.ID()
		if !ok {
			id = uuid.NewString()
		}
		body, err := json.Marshal(op.Document)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal document %d: %w", i, err)
		}

		a := &redis.XAddArgs{
			Stream: s.stream,
			Values: map[string]any{"doc_id": id, "body": string(body)},
		}
		if s.maxLen > 0 {
			a.MaxLen = s.maxLen
			a.Approx = true
		}
		args[i] = a
	}
	return args, nil
}
