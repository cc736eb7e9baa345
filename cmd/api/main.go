package main

import (
	"database/sql"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-cz/devslog"
	"github.com/siahsang/snapfeed/internal/auth"
	"github.com/siahsang/snapfeed/internal/config"
	"github.com/siahsang/snapfeed/internal/core"
	"github.com/siahsang/snapfeed/internal/data"
	"github.com/siahsang/snapfeed/internal/database"
)

type application struct {
	config *config.Config
	logger *slog.Logger
	core   *core.Core
	auth   *auth.Auth
}

func main() {
	cfg := config.Load()
	logger := configLogger(os.Stdout, cfg)
	logger.Info("Starting application...", "store", cfg.StoreDriver, "addr", cfg.ServerAddr)

	store, db, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("Errors opening store", "error", err)
		os.Exit(1)
	}

	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("Errors closing database connection", "error", err)
			}
		}()
	}

	app := newApplication(cfg, logger, store)

	if err := app.serve(); err != nil {
		logger.Error("Errors running server", "error", err)
		os.Exit(1)
	}
}

func newApplication(cfg *config.Config, logger *slog.Logger, store data.Store) *application {
	return &application{
		config: cfg,
		logger: logger,
		auth:   auth.New(cfg.JWTSecret, cfg.TokenTTL),
		core: core.NewCore(store, logger, core.Options{
			TrendingWindow: cfg.TrendingWindow,
			TrendingLimit:  cfg.TrendingLimit,
			SuggestedLimit: cfg.SuggestedLimit,
		}),
	}
}

// openStore returns the configured store. The *sql.DB is nil for the memory
// driver.
func openStore(cfg *config.Config, logger *slog.Logger) (data.Store, *sql.DB, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using the in-memory store, data is lost on restart")
		return data.NewMemoryStore(), nil, nil
	}

	db, err := database.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Database connection established successfully")

	if cfg.MigrateOnStart {
		if err := database.Migrate(db, logger); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	return data.NewPostgresStore(db, logger, cfg.DBQueryTimeout), db, nil
}

func configLogger(out io.Writer, cfg *config.Config) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, handlerOptions))
	}

	handler := devslog.NewHandler(
		out, &devslog.Options{
			HandlerOptions:  handlerOptions,
			NewLineAfterLog: false,
		})
	return slog.New(handler)
}

func logLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}
