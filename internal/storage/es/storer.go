package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"
)

type Storer struct {
	client    *elasticsearch.TypedClient
	indexName string
	config    ClientConfig
}

func NewStorer(ctx context.Context, config ClientConfig) (*Storer, error) {
	client, err := newClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}
	storer := &Storer{
		client:    client,
		indexName: config.IndexName,
		config:    config,
	}

	if err := storer.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return storer, nil
}

func (e *Storer) BulkInsert(ctx context.Context, ops []storage.InsertOp) (*storage.BulkResult, error) {
	if len(ops) == 0 {
		return &storage.BulkResult{}, nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         e.indexName,
		Client:        e.client,
		NumWorkers:    e.config.workers(),
		FlushBytes:    5e+6, // 5MB
		FlushInterval: 30 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bulk indexer: %w", err)
	}

	result := &storage.BulkResult{InsertedIDs: make([]string, 0, len(ops))}
	var marshalFailed int64

	for _, op := range ops {
		id, body, err := toIndexRequest(op.Document)
		if err != nil {
			slog.Error("failed to marshal document", "error", err, "id", id)
			marshalFailed++
			continue
		}

		err = bi.Add(
			ctx,
			esutil.BulkIndexerItem{
				Action:     "create",
				DocumentID: id,
				Body:       bytes.NewReader(body),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						slog.Error("bulk index error", "error", err, "id", item.DocumentID)
					} else {
						slog.Error("bulk index error", "status", res.Status, "error", res.Error.Type, "reason", res.Error.Reason, "id", item.DocumentID)
					}
				},
			},
		)
		if err != nil {
			marshalFailed++
			slog.Error("failed to add document to bulk indexer", "error", err, "id", id)
			continue
		}
		result.InsertedIDs = append(result.InsertedIDs, id)
	}

	if err := bi.Close(ctx); err != nil {
		return result, fmt.Errorf("failed to close bulk indexer: %w", err)
	}

	stats := bi.Stats()
	result.Inserted = int64(stats.NumFlushed)
	result.Failed = int64(stats.NumFailed) + marshalFailed

	slog.Debug("Bulk indexing completed",
		"successful", result.Inserted,
		"failed", result.Failed,
		"total", len(ops),
		"index", e.indexName)

	if result.Failed > 0 {
		return result, fmt.Errorf("failed to index %d out of %d documents", result.Failed, len(ops))
	}
	return result, nil
}

func (e *Storer) Ping(ctx context.Context) error {
	ok, err := e.client.Ping().Do(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("elasticsearch ping was not successful")
	}
	return nil
}

// toIndexRequest splits the identifier from the body, since _id is metadata in Elasticsearch.
func toIndexRequest(doc document.Document) (string, []byte, error) {
	id, ok := doc.ID()
	if !ok {
		id = uuid.NewString()
	}

	body := doc
	if doc.ContainsField(document.IDField) {
		body = doc.Clone()
		delete(body, document.IDField)
	}

	b, err := json.Marshal(body)
	return id, b, err
}

func (e *Storer) EnsureIndex(ctx context.Context) error {
	existsRes, err := e.client.Indices.Exists(e.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}

	if existsRes {
		slog.Info("Index already exists", "index", e.indexName)
		return nil
	}

	// Documents are schemaless; field types come from dynamic mapping.
	createRes, err := e.client.Indices.Create(e.indexName).Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	if !createRes.Acknowledged {
		return fmt.Errorf("index creation was not acknowledged")
	}

	slog.Info("Index created successfully", "index", e.indexName)
	return nil
}
