package telemetry

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/mutker/tuxedoctl/internal/errors"
	"codeberg.org/mutker/tuxedoctl/internal/logger"

	_ "github.com/mattn/go-sqlite3"
)

type Repository interface {
	Store(ctx context.Context, event *ControlEvent) error
	Close() error
}

// sqliteRepository buffers events and flushes them in batches, either
// when the buffer fills or on the flush ticker.
type sqliteRepository struct {
	db  *sql.DB
	cfg Config

	mu     sync.Mutex
	buffer []*ControlEvent

	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func NewRepository(cfg Config) (Repository, error) {
	errFactory := errors.New()

	cfg = cfg.withDefaults()
	if cfg.DBPath == "" {
		return nil, errFactory.New(ErrInvalidDBPath)
	}

	logger.Debug().Msgf("Initializing telemetry repository at: %s", cfg.DBPath)

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errFactory.Wrap(ErrStorageInit, err)
	}

	repo := &sqliteRepository{
		db:            db,
		cfg:           cfg,
		buffer:        make([]*ControlEvent, 0, cfg.BatchSize),
		flushTicker:   time.NewTicker(cfg.BatchTimeout),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}
	go repo.flusher()

	return repo, nil
}

func (r *sqliteRepository) Store(_ context.Context, event *ControlEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, event)

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	errFactory := errors.New()

	close(r.shutdownChan)
	r.flushTicker.Stop()
	<-r.flushDoneChan

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		logger.Debug().Err(err).Msg("WAL checkpoint failed on close")
	}

	if err := r.db.Close(); err != nil {
		return errFactory.Wrap(ErrStorageClose, err)
	}

	return nil
}

func (r *sqliteRepository) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				logger.Warn().Err(err).Msg("Failed to flush telemetry batch")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				logger.Warn().Err(err).Msg("Failed to flush telemetry batch on shutdown")
			}
			r.mu.Unlock()
			return
		}
	}
}

// flush writes the buffered events in one transaction. Callers must hold
// the lock.
func (r *sqliteRepository) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	stmt, err := tx.Prepare(insertEventSQL)
	if err != nil {
		tx.Rollback()
		return errFactory.Wrap(ErrStorageAccess, err)
	}
	defer stmt.Close()

	for _, event := range r.buffer {
		_, err := stmt.Exec(
			event.Timestamp.Unix(),
			event.Profile,
			event.CPUTemp,
			event.GPUTemp,
			event.FanID,
			event.TargetDuty,
		)
		if err != nil {
			tx.Rollback()
			return errFactory.Wrap(ErrStorageAccess, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrStorageAccess, err)
	}

	logger.Debug().Int("events", len(r.buffer)).Msg("Flushed telemetry batch")
	r.buffer = r.buffer[:0]

	return nil
}
