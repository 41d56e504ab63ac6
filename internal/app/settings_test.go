package app

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func resetSettingsStateForTest() {
	settingsOnce = sync.Once{}
	settings = Settings{}
	settingsSource = ""
	settingsErr = nil
	SetDBPathOverride("")
	SetRootOverride("")
}

func TestLoadSettings_PrefersProjectConfigOverUser(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ARKHAM_CONFIG", "")

	root := t.TempDir()
	SetRootOverride(root)

	userConfigPath := filepath.Join(home, ".config", "arkham", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("build_command: ninja\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigFile), []byte("build_command: gmake\nretention: 3\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "gmake", s.BuildCommand)
	require.Equal(t, 3, s.Retention)
	require.Equal(t, filepath.Join(root, ProjectConfigFile), SettingsSource())
}

func TestLoadSettings_FallsBackToUserConfig(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ARKHAM_CONFIG", "")
	SetRootOverride(t.TempDir())

	userConfigPath := filepath.Join(home, ".config", "arkham", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userConfigPath), 0o755))
	require.NoError(t, os.WriteFile(userConfigPath, []byte("build_command: ninja\nclean_args: [-t, clean]\n"), 0o600))

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "ninja", s.BuildCommand)
	require.Equal(t, []string{"-t", "clean"}, s.CleanArgs)
	require.Equal(t, "prev_builds", s.ArchiveDir)
	require.Equal(t, 10, s.Retention)
}

func TestLoadSettings_EnvConfigWins(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	SetRootOverride(root)
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigFile), []byte("build_command: gmake\n"), 0o600))

	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("build_command: bazel\n"), 0o600))
	t.Setenv("ARKHAM_CONFIG", explicit)

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, "bazel", s.BuildCommand)
}

func TestLoadSettings_InvalidYAMLReturnsError(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARKHAM_CONFIG", "")
	root := t.TempDir()
	SetRootOverride(root)
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigFile), []byte("retention: ["), 0o600))

	_, err := LoadSettings()
	require.Error(t, err)
}

func TestLoadSettings_DefaultsWhenNoFile(t *testing.T) {
	resetSettingsStateForTest()
	t.Cleanup(resetSettingsStateForTest)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("ARKHAM_CONFIG", "")
	SetRootOverride(t.TempDir())

	s, err := LoadSettings()
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), s)
	require.Equal(t, "default", SettingsSource())
}

func TestSettingsWithDefaults_Clamps(t *testing.T) {
	s := Settings{Retention: -4}.withDefaults()
	require.Equal(t, 10, s.Retention)

	s = Settings{Retention: 1_000_000}.withDefaults()
	require.Equal(t, maxRetention, s.Retention)
}
