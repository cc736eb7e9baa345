package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/mdobak/go-xerrors"
	"github.com/siahsang/snapfeed/internal/config"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Open returns a pooled connection that has answered a ping.
func Open(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, xerrors.New(err)
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxIdleTime(cfg.DBMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, xerrors.Newf("database ping failed: %w", err)
	}

	return db, nil
}

// Migrate applies every pending up migration embedded in the binary.
func Migrate(db *sql.DB, log *slog.Logger) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return xerrors.Newf("failed to open migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return xerrors.Newf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return xerrors.Newf("failed to create migrate instance: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("No new migrations to apply")
	case err != nil:
		return xerrors.Newf("migration up failed: %w", err)
	default:
		version, _, _ := m.Version()
		log.Info("Migrations applied successfully", slog.Uint64("version", uint64(version)))
	}
	return nil
}
