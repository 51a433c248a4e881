package router

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/DjordjeVuckovic/docstream/internal/apperr"
	"github.com/DjordjeVuckovic/docstream/internal/codec"
	"github.com/DjordjeVuckovic/docstream/internal/config"
	"github.com/DjordjeVuckovic/docstream/internal/pipeline"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/labstack/echo/v4"
)

const MIMEApplicationNDJSON = "application/x-ndjson"

type IngestRouter struct {
	e        *echo.Echo
	spec     *config.PipelineSpec
	inserter storage.BulkInserter
}

// NewIngestRouter serves ingests with the given pipeline definition. Every request
// runs its own tagger and sink, so sequence numbers start at zero per request.
func NewIngestRouter(e *echo.Echo, spec *config.PipelineSpec, inserter storage.BulkInserter) *IngestRouter {
	return &IngestRouter{
		e:        e,
		spec:     spec,
		inserter: inserter,
	}
}

func (r *IngestRouter) Bind() {
	r.e.POST("/ingest", r.ingestHandler)
	r.e.GET("/pipeline", r.pipelineHandler)
}

// ingestHandler godoc
// @Summary Ingest NDJSON documents
// @Description Streams newline-delimited JSON through the tagger and the batching sink.
// @Description With pass_through the stored documents are returned as NDJSON, otherwise a run summary.
// @Tags ingest
// @Accept application/x-ndjson
// @Produce json
// @Produce application/x-ndjson
// @Param auto_increment query string false "Field receiving the sequence number"
// @Param water_mark query int false "Documents per bulk insert"
// @Param pass_through query bool false "Return stored documents"
// @Param ignore_undecodable query bool false "Join undecodable lines with the next line"
// @Success 200 {object} pipeline.Summary
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /ingest [post]
func (r *IngestRouter) ingestHandler(c echo.Context) error {
	spec, err := r.requestSpec(c)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	p, err := pipeline.New(spec, r.inserter, pipeline.WithOutput(&out))
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	src := pipeline.NewLineSource(c.Request().Body, p.InputMode(), codec.NewJSON())
	summary, err := p.Run(ctx, src)
	if err != nil {
		return err
	}

	c.Response().Header().Set("X-Ingest-Stored", strconv.FormatInt(summary.Stored, 10))
	c.Response().Header().Set("X-Ingest-Filtered", strconv.FormatInt(summary.Filtered, 10))
	if spec.Sink.PassThrough || !spec.Sink.Enabled {
		return c.Blob(http.StatusOK, MIMEApplicationNDJSON, out.Bytes())
	}
	return c.JSON(http.StatusOK, summary)
}

// pipelineHandler godoc
// @Summary Active pipeline definition
// @Tags ingest
// @Produce json
// @Success 200 {object} config.PipelineSpec
// @Router /pipeline [get]
func (r *IngestRouter) pipelineHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, r.spec)
}

// requestSpec applies query overrides to a copy of the configured definition.
func (r *IngestRouter) requestSpec(c echo.Context) (*config.PipelineSpec, error) {
	spec := *r.spec

	if v := c.QueryParam("auto_increment"); v != "" {
		spec.Tagger.AutoIncrement = v
	}
	if v := c.QueryParam("water_mark"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, apperr.NewValidation("water_mark must be a positive integer")
		}
		spec.Sink.WaterMark = n
	}
	if v := c.QueryParam("pass_through"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperr.NewValidationWrap("pass_through must be a boolean", err)
		}
		spec.Sink.PassThrough = b
	}
	if v := c.QueryParam("ignore_undecodable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, apperr.NewValidationWrap("ignore_undecodable must be a boolean", err)
		}
		spec.Tagger.IgnoreUndecodable = b
	}

	return &spec, nil
}
