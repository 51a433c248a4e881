package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/docstream/internal/codec"
	"github.com/DjordjeVuckovic/docstream/internal/collector"
	"github.com/DjordjeVuckovic/docstream/internal/pipeline"
	"github.com/DjordjeVuckovic/docstream/internal/sink"
	"github.com/DjordjeVuckovic/docstream/internal/storage"
	"github.com/DjordjeVuckovic/docstream/internal/storage/factory"
	"github.com/DjordjeVuckovic/docstream/internal/stream"
)

func main() {
	appSettings := NewAppConfig()

	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dataFile, err := os.Open(cfg.DatasetPath)
	if err != nil {
		slog.Error("failed to open dataset", "error", err, "path", cfg.DatasetPath)
		os.Exit(1)
	}
	defer dataFile.Close()

	out, closeOut, err := openOutput(cfg.OutputPath)
	if err != nil {
		slog.Error("failed to open output", "error", err, "path", cfg.OutputPath)
		os.Exit(1)
	}
	defer closeOut()

	var inserter storage.BulkInserter
	if cfg.Pipeline.Sink.Enabled {
		slog.Info("Creating storage", "storageType", cfg.StorageConfig.Type)
		inserter, err = factory.NewBulkInserter(ctx, &cfg.StorageConfig)
		if err != nil {
			slog.Error("failed to create storage", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := factory.Close(context.WithoutCancel(ctx), inserter); err != nil {
				slog.Warn("failed to close storage", "error", err)
			}
		}()
	}

	p, err := pipeline.New(cfg.Pipeline, inserter,
		pipeline.WithOutput(out),
		pipeline.WithOnBulkWrite(func(e sink.BulkWriteEvent) {
			slog.Info("Bulk write settled",
				"batch_id", e.BatchID,
				"sequence", e.Sequence,
				"size", e.Size,
				"final", e.Final,
				"duration", e.Duration,
				"error", e.Err,
			)
		}),
	)
	if err != nil {
		slog.Error("failed to create pipeline", "error", err)
		os.Exit(1)
	}

	var src collector.Collector[stream.Chunk]
	if cfg.DatasetFormat == FormatCSV {
		src = pipeline.NewCSVSource(dataFile)
	} else {
		src = pipeline.NewLineSource(dataFile, p.InputMode(), codec.NewJSON())
	}

	if _, err := p.Run(ctx, src); err != nil {
		slog.Error("failed to run pipeline", "error", err)
		os.Exit(1)
	}
}

func openOutput(path string) (io.Writer, func(), error) {
	switch path {
	case "":
		return io.Discard, func() {}, nil
	case "-":
		return os.Stdout, func() {}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close output", "error", err)
		}
	}, nil
}
