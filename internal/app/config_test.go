package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigDir_UsesHomeDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := ConfigDir()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "arkham"), dir)
}

func TestEnsureConfigDir_CreatesDefaultConfigOnlyWhenMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	written, err := EnsureConfigDir()
	require.NoError(t, err)

	dir, err := ConfigDir()
	require.NoError(t, err)

	configFile := filepath.Join(dir, "config.yaml")
	require.Equal(t, configFile, written)
	b, err := os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, defaultConfig, string(b))

	custom := []byte("build_command: ninja\n")
	require.NoError(t, os.WriteFile(configFile, custom, 0o600))
	written, err = EnsureConfigDir()
	require.NoError(t, err)
	require.Empty(t, written)

	b, err = os.ReadFile(configFile)
	require.NoError(t, err)
	require.Equal(t, string(custom), string(b))
}

func TestDefaultConfig_ParsesToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(defaultConfig), 0o600))

	s, err := loadSettingsFile(path)
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s.withDefaults())
}

func TestNewWorkspace_ResolvesArchiveDir(t *testing.T) {
	root := t.TempDir()

	ws, err := NewWorkspace(root, DefaultSettings())
	require.NoError(t, err)
	require.Equal(t, root, ws.Root)
	require.Equal(t, filepath.Join(root, "prev_builds"), ws.ArchiveDir)
	require.Equal(t, 10, ws.Retention)
	require.Equal(t, filepath.Join(root, ".version.info"), ws.InfoPath())
	require.Equal(t, filepath.Join(root, ".version.log"), ws.LogPath())
	require.Equal(t, filepath.Join(root, ".arkham.lock"), ws.LockPath())

	abs := filepath.Join(t.TempDir(), "archive")
	ws, err = NewWorkspace(root, Settings{ArchiveDir: abs, Retention: 4})
	require.NoError(t, err)
	require.Equal(t, abs, ws.ArchiveDir)
	require.Equal(t, 4, ws.Retention)

	_, err = NewWorkspace("", DefaultSettings())
	require.Error(t, err)
}
