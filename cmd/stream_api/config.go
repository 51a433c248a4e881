package main

import (
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/docstream/internal/config"
	"github.com/DjordjeVuckovic/docstream/internal/storage/factory"
	"github.com/DjordjeVuckovic/docstream/pkg/config/env"
)

func NewAppConfig() *AppConfig {
	return &AppConfig{
		ENV: os.Getenv("ENV"),
	}
}

type AppConfig struct {
	ENV string
}

type StreamApiConfig struct {
	Pipeline *config.PipelineSpec
	factory.StorageConfig
}

func (as *AppConfig) Load() (*StreamApiConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/stream_api/.env")
	if err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}

	pipelineSpec := config.Default()
	if path := os.Getenv("PIPELINE_CONFIG_PATH"); path != "" {
		pipelineSpec, err = config.LoadFile(path)
		if err != nil {
			slog.Error("Failed to load pipeline definition", "error", err, "path", path)
			return nil, err
		}
	}

	storageCfg, err := factory.LoadEnv()
	if err != nil {
		slog.Error("Failed to load storage configuration from environment", "error", err)
		return nil, err
	}

	return &StreamApiConfig{
		Pipeline:      pipelineSpec,
		StorageConfig: *storageCfg,
	}, nil
}
