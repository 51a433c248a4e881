package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

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

const (
	FormatNDJSON = "ndjson"
	FormatCSV    = "csv"
)

type DocImportConfig struct {
	DatasetPath string
	// DatasetFormat is ndjson or csv. CSV rows are fed to the tagger as documents.
	DatasetFormat string
	// OutputPath receives emitted documents; "-" means stdout, empty discards them.
	OutputPath string
	Pipeline   *config.PipelineSpec
	factory.StorageConfig
}

func (as *AppConfig) Load() (*DocImportConfig, error) {
	err := env.LoadDotEnv(as.ENV, "cmd/doc_import/.env", "cmd/doc_import/storage.env")
	if err != nil {
		slog.Info("Skipping .env environment variables...", "error", err)
	}
	env.SetupLogging()

	pipelineSpec := config.Default()
	if path := os.Getenv("PIPELINE_CONFIG_PATH"); path != "" {
		pipelineSpec, err = config.LoadFile(path)
		if err != nil {
			slog.Error("Failed to load pipeline definition", "error", err, "path", path)
			return nil, err
		}
	} else {
		slog.Info("PIPELINE_CONFIG_PATH is not set, using the default pipeline")
	}

	var storageCfg *factory.StorageConfig
	if pipelineSpec.Sink.Enabled {
		storageCfg, err = factory.LoadEnv()
		if err != nil {
			slog.Error("Failed to load storage configuration from environment", "error", err)
			return nil, err
		}
	} else {
		storageCfg = &factory.StorageConfig{}
	}

	dsPath := os.Getenv("DATASET_PATH")
	if dsPath == "" {
		slog.Error("DATASET_PATH environment variable is not set")
		return nil, fmt.Errorf("DATASET_PATH environment variable is not set")
	}

	format := strings.ToLower(os.Getenv("DATASET_FORMAT"))
	switch format {
	case "":
		format = FormatNDJSON
	case FormatNDJSON:
	case FormatCSV:
		pipelineSpec.Tagger.InputMode = "structured"
	default:
		return nil, fmt.Errorf("unsupported DATASET_FORMAT %q", format)
	}

	return &DocImportConfig{
		DatasetPath:   dsPath,
		DatasetFormat: format,
		OutputPath:    os.Getenv("OUTPUT_PATH"),
		Pipeline:      pipelineSpec,
		StorageConfig: *storageCfg,
	}, nil
}
