package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type Storer struct {
	client     *mongo.Client
	collection *mongo.Collection
	ordered    bool
}

func NewStorer(ctx context.Context, config ClientConfig) (*Storer, error) {
	if config.Database == "" || config.Collection == "" {
		return nil, fmt.Errorf("mongodb configuration is incomplete: database or collection is missing")
	}

	client, err := newClient(ctx, config)
	if err != nil {
		return nil, err
	}

	return &Storer{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		ordered:    config.Ordered,
	}, nil
}

func (s *Storer) BulkInsert(ctx context.Context, ops []storage.InsertOp) (*storage.BulkResult, error) {
	if len(ops) == 0 {
		return &storage.BulkResult{}, nil
	}

	models, ids := toWriteModels(ops)

	res, err := s.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(s.ordered))
	result := &storage.BulkResult{InsertedIDs: ids}
	if res != nil {
		result.Inserted = res.InsertedCount
	}
	result.Failed = int64(len(ops)) - result.Inserted

	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) {
			slog.Error("bulk write error",
				"write_errors", len(bwe.WriteErrors),
				"inserted", result.Inserted,
				"collection", s.collection.Name(),
			)
		}
		return result, fmt.Errorf("failed to bulk write documents: %w", err)
	}

	slog.Debug("Bulk write completed",
		"inserted", result.Inserted,
		"total", len(ops),
		"collection", s.collection.Name(),
	)
	return result, nil
}

func (s *Storer) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Storer) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// toWriteModels assigns an ObjectID to documents without one. Documents are copied
// so the caller's map is left untouched.
func toWriteModels(ops []storage.InsertOp) ([]mongo.WriteModel, []string) {
	models := make([]mongo.WriteModel, 0, len(ops))
	ids := make([]string, 0, len(ops))
	for _, op := range ops {
		doc := bson.M(op.Document.Clone())
		if doc == nil {
			doc = bson.M{}
		}

		if id, ok := document.Document(doc).ID(); ok {
			ids = append(ids, id)
		} else {
			oid := bson.NewObjectID()
			doc[document.IDField] = oid
			ids = append(ids, oid.Hex())
		}

		models = append(models, mongo.NewInsertOneModel().SetDocument(doc))
	}
	return models, ids
}
