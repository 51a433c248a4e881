package testing

import (
	"context"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

type MongoContainer struct {
	Container testcontainers.Container
	URI       string
}

// NewMongoContainer starts a single-node replica set so bulk writes behave as in production.
func NewMongoContainer(ctx context.Context, tb testing.TB) *MongoContainer {
	tb.Helper()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7.0", mongodb.WithReplicaSet("rs0"))
	if err != nil {
		tb.Fatalf("failed to start mongodb container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(mongoContainer); err != nil {
			tb.Logf("failed to terminate mongodb container: %v", err)
		}
	})

	uri, err := mongoContainer.ConnectionString(ctx)
	if err != nil {
		tb.Fatalf("failed to get mongodb connection string: %v", err)
	}

	return &MongoContainer{
		Container: mongoContainer,
		URI:       uri,
	}
}
