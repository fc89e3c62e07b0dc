package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"research-library-be/internal/pkg/logger"

	"github.com/dgraph-io/badger/v4"
)

// BadgerConfig configures the embedded guest store.
type BadgerConfig struct {
	// Path is the data directory. Ignored when InMemory is true.
	Path string

	// InMemory keeps everything in RAM (tests, ephemeral guests).
	InMemory bool

	SyncWrites bool

	// GCInterval controls value-log GC. Zero disables it.
	GCInterval time.Duration

	Logger logger.ILogger
}

type badgerLogger struct {
	logger logger.ILogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error("Badger", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn("Badger", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug("Badger", fmt.Sprintf(format, args...), nil)
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug("Badger", fmt.Sprintf(format, args...), nil)
}

// OpenBadger opens the guest store. Caller must Close the returned DB.
func OpenBadger(cfg BadgerConfig) (*badger.DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent guest store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create guest store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open guest store: %w", err)
	}
	return db, nil
}

// RunBadgerGC runs value-log GC until ctx is done.
func RunBadgerGC(ctx context.Context, db *badger.DB, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}
