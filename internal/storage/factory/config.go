package factory

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/DjordjeVuckovic/docstream/internal/storage/es"
	"github.com/DjordjeVuckovic/docstream/internal/storage/kafka"
	"github.com/DjordjeVuckovic/docstream/internal/storage/mongo"
	"github.com/DjordjeVuckovic/docstream/internal/storage/pg"
	"github.com/DjordjeVuckovic/docstream/internal/storage/redis"
	"github.com/DjordjeVuckovic/docstream/pkg/utils"
)

type StorageConfig struct {
	storage.Type
	Mongo *mongo.ClientConfig
	Pg    *pg.PoolConfig
	Es    *es.ClientConfig
	Kafka *kafka.Config
	Redis *redis.Config
}

func LoadEnv() (*StorageConfig, error) {
	storageType := (storage.Type)(os.Getenv("STORAGE_TYPE"))
	if storageType == "" {
		slog.Error("STORAGE_TYPE environment variable is not set")
		return nil, fmt.Errorf("STORAGE_TYPE environment variable is not set")
	}
	if !slices.Contains(storage.Types(), storageType) {
		slog.Error("Invalid STORAGE_TYPE environment variable value", "value", storageType)
		return nil, fmt.Errorf(
			"invalid STORAGE_TYPE environment variable value: %s, expected one of %v",
			storageType,
			storage.Types())
	}

	cfg := &StorageConfig{Type: storageType}

	switch storageType {
	case storage.Mongo:
		cfg.Mongo = &mongo.ClientConfig{
			URI:        os.Getenv("MONGO_URI"),
			Database:   os.Getenv("MONGO_DATABASE"),
			Collection: os.Getenv("MONGO_COLLECTION"),
			Username:   os.Getenv("MONGO_USERNAME"),
			Password:   os.Getenv("MONGO_PASSWORD"),
			Ordered:    os.Getenv("MONGO_ORDERED") == "true",
		}
		if cfg.Mongo.URI == "" || cfg.Mongo.Database == "" || cfg.Mongo.Collection == "" {
			slog.Error("MongoDB configuration is incomplete", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
			return nil, fmt.Errorf("mongodb configuration is incomplete: uri, database or collection is missing")
		}

	case storage.ES:
		cfg.Es = &es.ClientConfig{
			Addresses: utils.SplitList(os.Getenv("ES_ADDRESSES"), ","),
			IndexName: os.Getenv("ES_INDEX_NAME"),
			Username:  os.Getenv("ES_USERNAME"),
			Password:  os.Getenv("ES_PASSWORD"),
			Workers:   intEnv("ES_BULK_WORKERS", 0),
		}
		if len(cfg.Es.Addresses) == 0 || cfg.Es.IndexName == "" {
			slog.Error("Elasticsearch configuration is incomplete", "addresses", cfg.Es.Addresses, "indexName", cfg.Es.IndexName)
			return nil, fmt.Errorf("elasticsearch configuration is incomplete: addresses or index name is missing")
		}

	case storage.PG:
		cfg.Pg = &pg.PoolConfig{
			ConnStr:  os.Getenv("PG_CONNECTION_STRING"),
			Table:    os.Getenv("PG_TABLE"),
			MaxConns: int32(intEnv("PG_MAX_CONNS", 0)),
		}
		if cfg.Pg.ConnStr == "" {
			slog.Error("PostgreSQL connection string is not set")
			return nil, fmt.Errorf("PostgreSQL connection string is not set")
		}

	case storage.Kafka:
		cfg.Kafka = &kafka.Config{
			Brokers:      utils.SplitList(os.Getenv("KAFKA_BROKERS"), ","),
			Topic:        os.Getenv("KAFKA_TOPIC"),
			WriteTimeout: time.Duration(intEnv("KAFKA_WRITE_TIMEOUT_MS", 0)) * time.Millisecond,
		}
		if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.Topic == "" {
			slog.Error("Kafka configuration is incomplete", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
			return nil, fmt.Errorf("kafka configuration is incomplete: brokers or topic is missing")
		}

	case storage.Redis:
		cfg.Redis = &redis.Config{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intEnv("REDIS_DB", 0),
			Stream:   os.Getenv("REDIS_STREAM"),
			MaxLen:   int64(intEnv("REDIS_STREAM_MAXLEN", 0)),
		}
		if cfg.Redis.Addr == "" || cfg.Redis.Stream == "" {
			slog.Error("Redis configuration is incomplete", "addr", cfg.Redis.Addr, "stream", cfg.Redis.Stream)
			return nil, fmt.Errorf("redis configuration is incomplete: address or stream is missing")
		}
	}

	return cfg, nil
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("Ignoring non-numeric environment variable", "key", key, "value", v)
		return def
	}
	return n
}
