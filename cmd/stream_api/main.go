// Package main Docstream API
// @title Docstream API
// @version 1.0
// @description Tags, filters and bulk-stores newline-delimited JSON documents
// @contact.name API Support
// @license.name Apache 2.0
// @license.url https://opensource.org/licenses/Apache-2.0
// @BasePath /
package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/DjordjeVuckovic/docstream/docs"
	"github.com/DjordjeVuckovic/docstream/internal/api/router"
	"github.com/DjordjeVuckovic/docstream/internal/api/server"
	"github.com/DjordjeVuckovic/docstream/internal/storage/factory"
	"github.com/DjordjeVuckovic/docstream/pkg/config/env"
	pkgserver "github.com/DjordjeVuckovic/docstream/pkg/server"
	"github.com/labstack/echo/v4"
)

func main() {
	appSettings := NewAppConfig()
	cfg, err := appSettings.Load()
	if err != nil {
		slog.Error("Failed to load app configuration", "error", err)
		os.Exit(1)
	}
	env.SetupLogging()

	sCfg, err := server.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	inserter, err := factory.NewBulkInserter(context.Background(), &cfg.StorageConfig)
	if err != nil {
		slog.Error("Failed to create storage", "error", err, "storageType", cfg.StorageConfig.Type)
		os.Exit(1)
	}

	var healthChecker pkgserver.HealthChecker = pkgserver.NewOkHealthChecker()
	if pinger, ok := inserter.(pkgserver.Pinger); ok {
		healthChecker = pkgserver.NewPingHealthChecker(pinger, 0)
	}

	s := server.New(sCfg, healthChecker).
		SetupMiddlewares().
		SetupErrorHandler().
		SetupHealthChecks("/health").
		SetupOpenApi("/swagger/*")

	s.Echo.GET("/", func(c echo.Context) error {
		return c.String(200, "Docstream API is running")
	})

	ingestRouter := router.NewIngestRouter(s.Echo, cfg.Pipeline, inserter)
	ingestRouter.Bind()

	go func() {
		<-s.ShutdownSignal()
		slog.Info("Shutdown started, cleaning up resources...")
	}()

	err = s.Start()
	if closeErr := factory.Close(context.Background(), inserter); closeErr != nil {
		slog.Warn("Failed to close storage", "error", closeErr)
	}
	if err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
