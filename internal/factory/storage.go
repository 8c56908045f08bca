// Package factory constructs storage drivers from configuration.
package factory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/config"
	storepkg "github.com/careerpilot/shadowcal/internal/store"
	storepg "github.com/careerpilot/shadowcal/internal/store/postgres"
	storelite "github.com/careerpilot/shadowcal/internal/store/sqlite"
)

// NewStore returns a store.Store for the configured driver.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("SHADOWCAL_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := storepg.Bootstrap(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres bootstrap: %w", err)
		}
		log.Info().Str("driver", "postgres").Msg("store ready")
		return storepg.NewWithDB(db), nil

	case "sqlite":
		if cfg.SQLitePath == "" {
			return nil, fmt.Errorf("SHADOWCAL_SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
		db, err := storelite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("store ready")
		return storelite.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
