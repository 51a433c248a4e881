package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DjordjeVuckovic/docstream/internal/apperr"
	"github.com/DjordjeVuckovic/docstream/internal/config"
	"github.com/DjordjeVuckovic/docstream/internal/pipeline"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/DjordjeVuckovic/docstream/internal/storage/in_mem"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "{\"title\":\"a\"}\n{\"title\":\"b\"}\n{\"title\":\"c\"}\n"

func newTestEcho(spec *config.PipelineSpec, inserter storage.BulkInserter) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.GlobalErrorHandler()
	NewIngestRouter(e, spec, inserter).Bind()
	return e
}

func ingest(e *echo.Echo, query, payload string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/ingest"+query, strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, MIMEApplicationNDJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestIngest_Summary(t *testing.T) {
	store := in_mem.NewInMemStorer()
	e := newTestEcho(config.Default(), store)

	rec := ingest(e, "?water_mark=2&auto_increment=seq", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary pipeline.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, int64(3), summary.Read)
	assert.Equal(t, int64(3), summary.Stored)
	assert.Equal(t, int64(2), summary.Batches)
	assert.Equal(t, "3", rec.Header().Get("X-Ingest-Stored"))

	assert.Equal(t, []int{2, 1}, store.BatchSizes())
	docs := store.Documents()
	require.Len(t, docs, 3)
	assert.Equal(t, int64(2), docs[2]["seq"])
}

func TestIngest_PassThrough(t *testing.T) {
	store := in_mem.NewInMemStorer()
	e := newTestEcho(config.Default(), store)

	rec := ingest(e, "?pass_through=true", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MIMEApplicationNDJSON, rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, body, rec.Body.String())
	assert.Len(t, store.Documents(), 3)
}

func TestIngest_RequestsDoNotShareCounters(t *testing.T) {
	store := in_mem.NewInMemStorer()
	e := newTestEcho(config.Default(), store)

	require.Equal(t, http.StatusOK, ingest(e, "?auto_increment=n", body).Code)
	require.Equal(t, http.StatusOK, ingest(e, "?auto_increment=n", body).Code)

	docs := store.Documents()
	require.Len(t, docs, 6)
	assert.Equal(t, int64(0), docs[3]["n"])
}

func TestIngest_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		payload    string
		inserter   storage.BulkInserter
		wantStatus int
	}{
		{name: "invalid water mark", query: "?water_mark=0", payload: body, inserter: in_mem.NewInMemStorer(), wantStatus: http.StatusBadRequest},
		{name: "invalid pass through", query: "?pass_through=maybe", payload: body, inserter: in_mem.NewInMemStorer(), wantStatus: http.StatusBadRequest},
		{name: "undecodable line", payload: "{\"a\":1}\n{\"a\"\n", inserter: in_mem.NewInMemStorer(), wantStatus: http.StatusBadRequest},
		{name: "missing storage", payload: body, inserter: nil, wantStatus: http.StatusBadRequest},
		{name: "sink write failure", payload: body, inserter: failingInserter{}, wantStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEcho(config.Default(), tt.inserter)
			rec := ingest(e, tt.query, tt.payload)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestIngest_IgnoreUndecodable(t *testing.T) {
	store := in_mem.NewInMemStorer()
	e := newTestEcho(config.Default(), store)

	rec := ingest(e, "?ignore_undecodable=true", "{\"title\":\n\"joined\"}\n")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	docs := store.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "joined", docs[0]["title"])
}

func TestPipelineHandler(t *testing.T) {
	spec := config.Default()
	spec.Tagger.AutoIncrement = "seq"
	e := newTestEcho(spec, in_mem.NewInMemStorer())

	req := httptest.NewRequest(http.MethodGet, "/pipeline", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got config.PipelineSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "seq", got.Tagger.AutoIncrement)
	assert.True(t, got.Sink.Enabled)
}

type failingInserter struct{}

func (failingInserter) BulkInsert(context.Context, []storage.InsertOp) (*storage.BulkResult, error) {
	return nil, errors.New("connection refused")
}
