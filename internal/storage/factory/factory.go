package factory

import (
	"context"
	"fmt"

	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/DjordjeVuckovic/docstream/internal/storage/es"
	"github.com/DjordjeVuckovic/docstream/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/docstream/internal/storage/kafka"
	"github.com/DjordjeVuckovic/docstream/internal/storage/mongo"
	"github.com/DjordjeVuckovic/docstream/internal/storage/pg"
	"github.com/DjordjeVuckovic/docstream/internal/storage/redis"
)

type closer interface {
	Close(ctx context.Context) error
}

// NewBulkInserter creates the storage backend selected by cfg.Type.
func NewBulkInserter(ctx context.Context, cfg *StorageConfig) (storage.BulkInserter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("storage configuration is nil")
	}

	switch cfg.Type {
	case storage.Mongo:
		if cfg.Mongo == nil {
			return nil, fmt.Errorf("invalid config for MongoDB storage: mongo config is missing")
		}
		return mongo.NewStorer(ctx, *cfg.Mongo)

	case storage.ES:
		if cfg.Es == nil {
			return nil, fmt.Errorf("invalid config for Elasticsearch storage: es config is missing")
		}
		return es.NewStorer(ctx, *cfg.Es)

	case storage.PG:
		if cfg.Pg == nil {
			return nil, fmt.Errorf("invalid config for PostgreSQL storage: pg config is missing")
		}
		pool, err := pg.NewConnectionPool(ctx, *cfg.Pg)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		storer, err := pg.NewStorer(ctx, pool, cfg.Pg.Table)
		if err != nil {
			pool.Close()
			return nil, err
		}
		return storer, nil

	case storage.Kafka:
		if cfg.Kafka == nil {
			return nil, fmt.Errorf("invalid config for Kafka storage: kafka config is missing")
		}
		return kafka.NewStorer(*cfg.Kafka)

	case storage.Redis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("invalid config for Redis storage: redis config is missing")
		}
		return redis.NewStorer(ctx, *cfg.Redis)

	case storage.InMem:
		return in_mem.NewInMemStorer(), nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedStorer), cfg.Type)
	}
}

// Close releases the backend's resources if it holds any.
func Close(ctx context.Context, inserter storage.BulkInserter) error {
	if c, ok := inserter.(closer); ok {
		return c.Close(ctx)
	}
	return nil
}
