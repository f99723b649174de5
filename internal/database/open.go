package database

import (
	"context"
	"fmt"

	"github.com/iliyamo/insurance-lead-desk/internal/config"
)

// OpenStore builds the Store selected by cfg.StoreDriver.  The returned
// close function releases the underlying connection pool.
func OpenStore(ctx context.Context, cfg config.Config) (Store, func() error, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return NewMemoryStore(), func() error { return nil }, nil
	case config.StoreMySQL:
		db, err := Open(ctx, cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		s := NewMySQLStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return s, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
