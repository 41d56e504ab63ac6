package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dotcommander/arkham/internal/app"
	_ "modernc.org/sqlite"
)

// defaultBusyTimeoutMS is the SQLite busy_timeout in milliseconds.
// Override with ARKHAM_BUSY_TIMEOUT_MS.
const defaultBusyTimeoutMS = 5000

// History is the publish-history database shared by every project on the
// machine. Records are keyed by project root.
type History struct {
	db   *sql.DB
	path string
}

// OpenHistory opens (creating when missing) the history database at dbPath
// and applies pending migrations.
func OpenHistory(ctx context.Context, dbPath string) (*History, error) {
	if err := app.EnsureDBDir(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	// One connection: pragmas are per-connection and arkham is a short-lived CLI.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range historyPragmas(busyTimeoutMS()) {
		if err := retryBusy(ctx, func() error {
			_, err := db.ExecContext(ctx, pragma)
			return err
		}); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	h := &History{db: db, path: dbPath}
	if err := h.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history database: %w", err)
	}
	return h, nil
}

// Path returns the database file path.
func (h *History) Path() string { return h.path }

// Close releases the database handle.
func (h *History) Close() error { return h.db.Close() }

// busy_timeout comes first so the WAL switch waits on other processes.
func historyPragmas(busyTimeout int) []string {
	return []string{
		fmt.Sprintf("PRAGMA busy_timeout=%d", busyTimeout),
		"PRAGMA synchronous=NORMAL",
		"PRAGMA journal_mode=WAL",
	}
}

func busyTimeoutMS() int {
	if v := os.Getenv("ARKHAM_BUSY_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultBusyTimeoutMS
}

// sqliteDSN turns a plain path into a read/write/create file: URI, which
// modernc.org/sqlite needs to create the file on every platform.
func sqliteDSN(dbPath string) string {
	switch {
	case strings.HasPrefix(dbPath, "file:"):
		return dbPath
	case dbPath == ":memory:":
		return "file::memory:?cache=shared"
	default:
		return "file:" + dbPath + "?mode=rwc"
	}
}
