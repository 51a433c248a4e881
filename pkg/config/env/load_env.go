package env

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/DjordjeVuckovic/docstream/pkg/utils"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from .env files.
// ENV_PATH, when set, replaces the default paths. Files loaded first win.
func LoadDotEnv(env string, defaultPaths ...string) error {
	paths := defaultPaths
	if envPath := os.Getenv("ENV_PATH"); envPath != "" {
		paths = utils.SplitList(envPath, ",")
	} else {
		slog.Info("ENV_PATH is not set, using default paths", "defaultPaths", defaultPaths)
	}
	if len(paths) == 0 {
		return nil
	}

	err := godotenv.Load(paths...)
	if err != nil {
		if env == "local" || env == "" {
			slog.Error("Failed to load environment variables in local mode", "error", err)
			return err
		}
		slog.Debug("Skipping .env ...")
	}

	return nil
}

// LogLevel reads LOG_LEVEL (debug, info, warn, error). Unset means info.
func LogLevel() (slog.Level, error) {
	raw := os.Getenv("LOG_LEVEL")
	if raw == "" {
		return slog.LevelInfo, nil
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", raw, err)
	}
	return level, nil
}

// SetupLogging applies LOG_LEVEL to the default logger.
func SetupLogging() {
	level, err := LogLevel()
	if err != nil {
		slog.Warn("Falling back to info log level", "error", err)
	}
	slog.SetLogLoggerLevel(level)
}
