//go:build integration

package es

import (
	"testing"

	"github.com/DjordjeVuckovic/docstream/internal/domain/document"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	tc "github.com/DjordjeVuckovic/docstream/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorer_BulkInsert_Integration(t *testing.T) {
	ctx := t.Context()
	container := tc.NewESContainer(ctx, t)
	index := container.IndexName(t)

	// Auto-creation is off in the container, so this also checks that the index is created.
	s, err := NewStorer(ctx, ClientConfig{
		Addresses: []string{container.Address},
		IndexName: index,
	})
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))

	ops := []storage.InsertOp{
		storage.NewInsertOp(document.Document{"_id": "one", "title": "a"}),
		storage.NewInsertOp(document.Document{"title": "b"}),
		storage.NewInsertOp(document.Document{"title": "c"}),
	}
	res, err := s.BulkInsert(ctx, ops)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Inserted)
	assert.Contains(t, res.InsertedIDs, "one")

	count, err := container.CountDocuments(ctx, index)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// "create" rejects an existing id.
	res, err = s.BulkInsert(ctx, ops[:1])
	require.Error(t, err)
	assert.Equal(t, int64(1), res.Failed)

	// Existing index is reused.
	require.NoError(t, s.EnsureIndex(ctx))

	count, err = container.CountDocuments(ctx, index)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
