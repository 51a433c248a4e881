package testing

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/testcontainers/testcontainers-go"
	tcelasticsearch "github.com/testcontainers/testcontainers-go/modules/elasticsearch"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultESImage = "docker.elastic.co/elasticsearch/elasticsearch:8.19.0"
	defaultESHeap  = "256m"
)

// ESContainer is a single-node Elasticsearch without security, reachable over plain HTTP.
// Indices are never created implicitly, so a sink has to create its own.
type ESContainer struct {
	Container testcontainers.Container
	Address   string
	client    *elasticsearch.TypedClient
}

type esOptions struct {
	image string
	heap  string
}

type ESOption func(*esOptions)

func WithESImage(image string) ESOption {
	return func(o *esOptions) {
		o.image = image
	}
}

// WithESHeap sets the JVM heap, e.g. "512m".
func WithESHeap(heap string) ESOption {
	return func(o *esOptions) {
		o.heap = heap
	}
}

func NewESContainer(ctx context.Context, tb testing.TB, opts ...ESOption) *ESContainer {
	tb.Helper()

	o := esOptions{image: defaultESImage, heap: defaultESHeap}
	for _, opt := range opts {
		opt(&o)
	}

	esContainer, err := tcelasticsearch.Run(ctx,
		o.image,
		tcelasticsearch.WithPassword(""),
		testcontainers.WithEnv(map[string]string{
			"ES_JAVA_OPTS":             fmt.Sprintf("-Xms%s -Xmx%s", o.heap, o.heap),
			"action.auto_create_index": "false",
			"cluster.routing.allocation.disk.threshold_enabled": "false",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_cluster/health?wait_for_status=yellow").
				WithPort("9200").
				WithStartupTimeout(90*time.Second),
		),
	)
	if err != nil {
		tb.Fatalf("failed to start elasticsearch container: %v", err)
	}

	tb.Cleanup(func() {
		if err := testcontainers.TerminateContainer(esContainer); err != nil {
			tb.Logf("failed to terminate elasticsearch container: %v", err)
		}
	})

	host, err := esContainer.Host(ctx)
	if err != nil {
		tb.Fatalf("failed to get elasticsearch host: %v", err)
	}

	port, err := esContainer.MappedPort(ctx, "9200")
	if err != nil {
		tb.Fatalf("failed to get elasticsearch port: %v", err)
	}

	address := fmt.Sprintf("http://%s:%s", host, port.Port())
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{Addresses: []string{address}})
	if err != nil {
		tb.Fatalf("failed to create elasticsearch client: %v", err)
	}

	return &ESContainer{
		Container: esContainer,
		Address:   address,
		client:    client,
	}
}

// IndexName derives an index name from the test name, so tests sharing a container
// write to separate indices.
func (c *ESContainer) IndexName(tb testing.TB) string {
	tb.Helper()
	name := strings.ToLower(tb.Name())
	name = strings.NewReplacer("/", "-", " ", "-", "_", "-").Replace(name)
	return "docstream-" + name
}

// CountDocuments refreshes index and returns how many documents it holds.
func (c *ESContainer) CountDocuments(ctx context.Context, index string) (int64, error) {
	if _, err := c.client.Indices.Refresh().Index(index).Do(ctx); err != nil {
		return 0, fmt.Errorf("failed to refresh index %s: %w", index, err)
	}
	res, err := c.client.Count().Index(index).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents in %s: %w", index, err)
	}
	return res.Count, nil
}
