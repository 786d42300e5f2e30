package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Checkpoint folds the SQLite write-ahead log back into the main file. It
// is a no-op for other dialects.
func (db *DB) Checkpoint(ctx context.Context) error {
	if db.dialect != SQLite {
		return nil
	}
	if _, err := db.conn.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

// Maintenance runs periodic housekeeping on a DB.
type Maintenance struct {
	db   *DB
	cron *cron.Cron
	log  *slog.Logger
}

// StartMaintenance schedules a WAL checkpoint at spec (standard cron or
// @every descriptor). An empty spec, or a non-SQLite DB, schedules nothing.
func StartMaintenance(ctx context.Context, db *DB, spec string, logger *slog.Logger) (*Maintenance, error) {
	m := &Maintenance{db: db, log: logger.With("component", "maintenance")}
	if spec == "" || db.dialect != SQLite {
		return m, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if err := db.Checkpoint(ctx); err != nil {
			m.log.Warn("checkpoint failed", "error", err)
			return
		}
		m.log.Debug("checkpoint done", "path", db.path)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule checkpoint %q: %w", spec, err)
	}
	c.Start()
	m.cron = c
	m.log.Info("checkpoint scheduled", "spec", spec)
	return m, nil
}

// Stop halts the schedule and waits for a running checkpoint to finish.
func (m *Maintenance) Stop() {
	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.cron = nil
}
