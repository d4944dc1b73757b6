package storage

import (
	"fmt"

	"quotes-hq/bff/pkg/audit"
	"quotes-hq/bff/pkg/config"
)

// DriverMemory selects MemoryStorage.
const DriverMemory = "memory"

// New builds the backend selected by cfg.Driver.
func New(cfg *config.AuditConfig) (audit.Storage, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStorage(), nil
	case DriverSQLite, DriverSQLite3, "":
		return NewSQLiteStorage(SQLiteConfig{
			Driver:      cfg.Driver,
			Path:        cfg.Path,
			WALMode:     true,
			BusyTimeout: cfg.BusyTimeout,
		})
	default:
		return nil, fmt.Errorf("unknown audit driver: %s", cfg.Driver)
	}
}
