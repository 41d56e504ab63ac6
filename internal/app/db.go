package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DBLocation is the resolved publish-history database path and the setting
// it came from.
type DBLocation struct {
	Path   string `json:"path"`
	Source string `json:"source"`
}

// ResolveDBLocation picks the history database, first match wins:
// --db-path, $ARKHAM_DB_PATH, db_path in settings, ~/.config/arkham/arkham.db.
func ResolveDBLocation() (DBLocation, error) {
	candidates := []DBLocation{
		{Path: getDBPathOverride(), Source: "cli(--db-path)"},
		{Path: os.Getenv("ARKHAM_DB_PATH"), Source: "env(ARKHAM_DB_PATH)"},
	}
	for _, c := range candidates {
		if c.Path != "" {
			return c.expanded()
		}
	}

	s, err := LoadSettings()
	if err != nil {
		return DBLocation{}, fmt.Errorf("failed to load config: %w", err)
	}
	if s.DBPath != "" {
		return DBLocation{Path: s.DBPath, Source: "config(" + SettingsSource() + ")"}.expanded()
	}

	dir, err := ConfigDir()
	if err != nil {
		return DBLocation{}, fmt.Errorf("failed to determine config directory: %w", err)
	}
	return DBLocation{Path: filepath.Join(dir, "arkham.db"), Source: "default"}, nil
}

// GetDBPath returns the resolved history database path.
func GetDBPath() (string, error) {
	loc, err := ResolveDBLocation()
	return loc.Path, err
}

// expanded resolves a leading "~/" against the home directory.
func (l DBLocation) expanded() (DBLocation, error) {
	rest, ok := strings.CutPrefix(l.Path, "~/")
	if !ok {
		return l, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DBLocation{}, fmt.Errorf("expand %s: %w", l.Path, err)
	}
	l.Path = filepath.Join(home, rest)
	return l, nil
}

// EnsureDBDir creates the parent directory of dbPath.
func EnsureDBDir(dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}
