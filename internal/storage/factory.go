package storage

import (
	"fmt"
	"time"

	"github.com/srniranjan/dopamine-menu/internal"
	"github.com/srniranjan/dopamine-menu/internal/config"
)

// New selects the backend from configuration.
func New(cfg *config.Config, loc *time.Location, logger internal.Logger) (Store, error) {
	switch cfg.DBType {
	case "memory":
		return NewMemoryStore(cfg.DataFile, loc, logger)
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath, loc, logger)
	case "postgres":
		return NewPostgresStore(cfg.DBDSN, loc, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.DBType)
	}
}
