package storage

import (
	"context"
	"fmt"

	"taskdoc/internal/config"
	"taskdoc/internal/domain"
)

// OpenTaskStore opens the task store selected by cfg. The returned *DB is
// nil for mongo.
func OpenTaskStore(ctx context.Context, cfg *config.Config) (domain.TaskStore, *DB, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		db, err := OpenSQLite(cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return NewTaskStore(db), db, nil
	case config.DriverPostgres, config.DriverMySQL:
		db, err := Open(Dialect(cfg.Storage.Driver), cfg.Storage.DSN)
		if err != nil {
			return nil, nil, err
		}
		return NewTaskStore(db), db, nil
	case config.DriverMongo:
		store, err := OpenMongo(ctx, cfg.Storage.DSN, cfg.Storage.Database)
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
