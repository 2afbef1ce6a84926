package telemetry

import (
	"database/sql"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
)

const (
	schemaVersion = 1

	createTablesSQL = `
    CREATE TABLE IF NOT EXISTS schema_versions (
        version     INTEGER PRIMARY KEY,
        applied_at  TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS control_events (
        id          INTEGER PRIMARY KEY AUTOINCREMENT,
        timestamp   INTEGER NOT NULL,
        profile     TEXT,
        cpu_temp    REAL,
        gpu_temp    REAL,
        fan_id      TEXT,
        target_duty INTEGER
    );
    CREATE INDEX IF NOT EXISTS idx_control_events_timestamp
        ON control_events (timestamp);`

	insertEventSQL = `
    INSERT INTO control_events (
        timestamp, profile, cpu_temp, gpu_temp, fan_id, target_duty
    ) VALUES (?, ?, ?, ?, ?, ?)`
)

func initSchema(db *sql.DB) error {
	errFactory := errors.New()

	tx, err := db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrStorageInit, err)
	}

	if _, err := tx.Exec(createTablesSQL); err != nil {
		tx.Rollback()
		return errFactory.Wrap(ErrStorageInit, err)
	}

	if _, err := tx.Exec(`
        INSERT OR IGNORE INTO schema_versions (version, applied_at)
        VALUES (?, datetime('now'))
    `, schemaVersion); err != nil {
		tx.Rollback()
		return errFactory.Wrap(ErrStorageInit, err)
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrStorageInit, err)
	}

	return nil
}
