package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type Config struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Storer publishes every document of a batch as one message, keyed by document id.
type Storer struct {
	writer  messageWriter
	topic   string
	brokers []string
}

func NewStorer(config Config) (*Storer, error) {
	if len(config.Brokers) == 0 || config.Topic == "" {
		return nil, fmt.Errorf("kafka configuration is incomplete: brokers or topic is missing")
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.Hash{},
	}
	if config.WriteTimeout > 0 {
		w.WriteTimeout = config.WriteTimeout
	}

	return &Storer{writer: w, topic: config.Topic, brokers: config.Brokers}, nil
}

func (s *Storer) BulkInsert(ctx context.Context, ops []storage.InsertOp) (*storage.BulkResult, error) {
	if len(ops) == 0 {
		return &storage.BulkResult{}, nil
	}

	msgs, ids, err := toMessages(ops, time.Now())
	if err != nil {
		return &storage.BulkResult{Failed: int64(len(ops))}, err
	}

	err = s.writer.WriteMessages(ctx, msgs...)
	if err == nil {
		slog.Debug("Published batch", "count", len(msgs), "topic", s.topic)
		return &storage.BulkResult{Inserted: int64(len(msgs)), InsertedIDs: ids}, nil
	}

	result := &storage.BulkResult{Failed: int64(len(msgs))}
	var writeErrs kafka.WriteErrors
	if errors.As(err, &writeErrs) {
		result.Failed = int64(writeErrs.Count())
		result.Inserted = int64(len(msgs)) - result.Failed
		for i, e := range writeErrs {
			if e == nil {
				result.InsertedIDs = append(result.InsertedIDs, ids[i])
			}
		}
	}
	return result, fmt.Errorf("failed to publish %d out of %d documents: %w", result.Failed, len(msgs), err)
}

// Ping succeeds when any broker accepts a connection.
func (s *Storer) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range s.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("no kafka broker reachable: %w", lastErr)
}

func (s *Storer) Close(_ context.Context) error {
	return s.writer.Close()
}

func toMessages(ops []storage.InsertOp, now time.Time) ([]kafka.Message, []string, error) {
	msgs := make([]kafka.Message, len(ops))
	ids := make([]string, len(ops))
	for i, op := range ops {
		id, ok := op.Document.ID()
		if !ok {
			id = uuid.NewString()
		}
		value, err := json.Marshal(op.Document)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal document %d: %w", i, err)
		}
		msgs[i] = kafka.Message{
			Key:   []byte(id),
			Value: value,
			Time:  now,
		}
		ids[i] = id
	}
	return msgs, ids, nil
}
