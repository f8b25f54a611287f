// Package factory builds configured backend implementations.
package factory

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aria-labs/aria-server/internal/config"
	storepkg "github.com/aria-labs/aria-server/internal/store"
	storepg "github.com/aria-labs/aria-server/internal/store/postgres"
	storesqlite "github.com/aria-labs/aria-server/internal/store/sqlite"
)

// NewStore selects the feedback store backend by cfg.DBDriver. SQLite
// is the self-contained default; Postgres serves multi-instance
// deployments.
func NewStore(cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		s, err := storesqlite.New(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info().Str("driver", "sqlite").Str("path", cfg.SQLitePath).Msg("feedback store ready")
		return s, nil
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("ARIA_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		s, err := storepg.New(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		log.Info().Str("driver", "postgres").Msg("feedback store ready")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}
