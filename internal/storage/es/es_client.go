package es

import "github.com/elastic/go-elasticsearch/v8"

const defaultBulkWorkers = 4

type ClientConfig struct {
	Addresses []string
	IndexName string
	Username  string
	Password  string
	Workers   int
}

func (c ClientConfig) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return defaultBulkWorkers
}

func newClient(config ClientConfig) (*elasticsearch.TypedClient, error) {
	cfg := elasticsearch.Config{
		Addresses: config.Addresses,
	}

	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewTypedClient(cfg)

	return client, err
}
