package store

import (
	"context"
	"embed"
	"fmt"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// migrate applies pending migrations. Concurrent arkham processes serialize
// on a lock file next to the database; in-memory databases skip the lock.
func (h *History) migrate(ctx context.Context) error {
	if !strings.Contains(h.path, ":memory:") {
		lock, err := AcquireLock(h.path + ".migrate.lock")
		if err != nil {
			return fmt.Errorf("migration lock: %w", err)
		}
		defer lock.Release()
	}
	if err := configureGoose(); err != nil {
		return err
	}
	return retryBusy(ctx, func() error { return goose.UpContext(ctx, h.db, "migrations") })
}

func configureGoose() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetVerbose(false)
	goose.SetLogger(goose.NopLogger())
	// goose names the dialect "sqlite3" whatever the driver.
	return goose.SetDialect("sqlite3")
}

// SchemaVersion returns the applied and the latest embedded migration
// versions. A database goose has never touched reports 0.
func (h *History) SchemaVersion(ctx context.Context) (current, latest int64, err error) {
	if err := configureGoose(); err != nil {
		return 0, 0, fmt.Errorf("set dialect: %w", err)
	}
	current, err = goose.GetDBVersionContext(ctx, h.db)
	if err != nil {
		current = 0
	}
	latest, err = latestMigration()
	if err != nil {
		return current, 0, err
	}
	return current, latest, nil
}

// latestMigration reads the version prefix of every embedded file
// ("00001_publishes.sql" is 1) and returns the highest.
func latestMigration() (int64, error) {
	entries, err := embedMigrations.ReadDir("migrations")
	if err != nil {
		return 0, fmt.Errorf("read migrations: %w", err)
	}
	var latest int64
	for _, e := range entries {
		prefix, _, ok := strings.Cut(e.Name(), "_")
		if e.IsDir() || !ok {
			continue
		}
		if v, err := strconv.ParseInt(prefix, 10, 64); err == nil && v > latest {
			latest = v
		}
	}
	return latest, nil
}
