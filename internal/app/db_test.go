package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func isolateDBResolution(t *testing.T) string {
	t.Helper()
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ARKHAM_CONFIG", "")
	t.Setenv("ARKHAM_DB_PATH", "")
	SetRootOverride(t.TempDir())
	return home
}

func TestResolveDBLocation_CLIOverrideWins(t *testing.T) {
	isolateDBResolution(t)
	want := filepath.Join(t.TempDir(), "nested", "cli.db")
	t.Setenv("ARKHAM_DB_PATH", filepath.Join(t.TempDir(), "env.db"))
	SetDBPathOverride(want)

	loc, err := ResolveDBLocation()
	require.NoError(t, err)
	require.Equal(t, DBLocation{Path: want, Source: "cli(--db-path)"}, loc)
	require.NoDirExists(t, filepath.Dir(want), "resolution must not touch the filesystem")
}

func TestResolveDBLocation_EnvThenDefault(t *testing.T) {
	home := isolateDBResolution(t)

	envPath := filepath.Join(t.TempDir(), "env.db")
	t.Setenv("ARKHAM_DB_PATH", envPath)
	path, err := GetDBPath()
	require.NoError(t, err)
	require.Equal(t, envPath, path)

	t.Setenv("ARKHAM_DB_PATH", "")
	loc, err := ResolveDBLocation()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "arkham", "arkham.db"), loc.Path)
	require.Equal(t, "default", loc.Source)
}

func TestResolveDBLocation_SettingsExpandHome(t *testing.T) {
	home := isolateDBResolution(t)
	cfg := filepath.Join(t.TempDir(), "arkham.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("db_path: ~/data/history.db\n"), 0o600))
	t.Setenv("ARKHAM_CONFIG", cfg)

	loc, err := ResolveDBLocation()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "data", "history.db"), loc.Path)
	require.Equal(t, "config("+cfg+")", loc.Source)
}

func TestEnsureDBDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "arkham.db")
	require.NoError(t, EnsureDBDir(path))
	require.DirExists(t, filepath.Dir(path))
}
