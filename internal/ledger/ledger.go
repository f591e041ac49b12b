package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "fxwire/pkg/logx"
)

var ErrClosed = errors.New("ledger closed")

// Config configures the ledger backend.
type Config struct {
	// Driver: "sqlite" (default), "file".
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Store is the dedup persistence API used by the dispatch pipeline.
//
// Both calls are single-operation transactions; callers never hold a
// lock across them, so the two scheduled jobs can share one Store.
type Store interface {
	// Record inserts id or silently does nothing if it already exists.
	Record(ctx context.Context, id, source string) error
	// WasRecorded reports whether id has been recorded.
	WasRecorded(ctx context.Context, id string) (bool, error)
	Close() error
}

// Open initializes the configured store.
func Open(cfg Config, log logx.Logger) (Store, error) {
	if log.IsZero() {
		log = logx.Nop()
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	switch driver {
	case "", "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	case "file":
		return openFile(cfg, log)
	default:
		return nil, errors.New("unknown ledger driver: " + driver)
	}
}
