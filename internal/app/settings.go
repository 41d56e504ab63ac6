package app

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from YAML.
// Field names match snake_case YAML keys.
type Settings struct {
	BuildCommand     string   `yaml:"build_command" json:"build_command"`
	CleanArgs        []string `yaml:"clean_args" json:"clean_args"`
	ArchiveDir       string   `yaml:"archive_dir" json:"archive_dir"`
	Retention        int      `yaml:"retention" json:"retention"`
	StrictExitStatus bool     `yaml:"strict_exit_status" json:"strict_exit_status"`
	GitCommand       string   `yaml:"git_command" json:"git_command"`
	DBPath           string   `yaml:"db_path" json:"db_path,omitempty"`
}

const (
	defaultBuildCommand = "make"
	defaultArchiveDir   = "prev_builds"
	defaultRetention    = 10
	defaultGitCommand   = "git"
	maxRetention        = 1000
)

// ProjectConfigFile is the project-local settings file name.
const ProjectConfigFile = ".arkham.yaml"

// DefaultSettings returns the settings used when no config file sets a value.
func DefaultSettings() Settings {
	return Settings{
		BuildCommand: defaultBuildCommand,
		CleanArgs:    []string{"clean"},
		ArchiveDir:   defaultArchiveDir,
		Retention:    defaultRetention,
		GitCommand:   defaultGitCommand,
	}
}

// withDefaults fills unset or invalid values from DefaultSettings.
func (s Settings) withDefaults() Settings {
	d := DefaultSettings()
	if s.BuildCommand == "" {
		s.BuildCommand = d.BuildCommand
	}
	if len(s.CleanArgs) == 0 {
		s.CleanArgs = d.CleanArgs
	}
	if s.ArchiveDir == "" {
		s.ArchiveDir = d.ArchiveDir
	}
	if s.Retention <= 0 {
		s.Retention = d.Retention
	}
	if s.Retention > maxRetention {
		s.Retention = maxRetention
	}
	if s.GitCommand == "" {
		s.GitCommand = d.GitCommand
	}
	return s
}

// settingsOnce, settings, settingsSource, settingsErr implement the sync.Once lazy-load singleton for config.
// The override variables hold process-wide values set from CLI flags.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce   sync.Once
	settings       Settings
	settingsSource string
	settingsErr    error

	overrideMu     sync.RWMutex
	dbPathOverride string
	rootOverride   string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	overrideMu.Lock()
	dbPathOverride = path
	overrideMu.Unlock()
}

func getDBPathOverride() string {
	overrideMu.RLock()
	v := dbPathOverride
	overrideMu.RUnlock()
	return v
}

// SetRootOverride sets a process-wide project root override (--dir).
func SetRootOverride(dir string) {
	overrideMu.Lock()
	rootOverride = dir
	overrideMu.Unlock()
}

func getRootOverride() string {
	overrideMu.RLock()
	v := rootOverride
	overrideMu.RUnlock()
	return v
}

// settingsPaths lists candidate config files in lookup order.
func settingsPaths(root string) ([]string, error) {
	var paths []string
	if env := os.Getenv("ARKHAM_CONFIG"); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, filepath.Join(root, ProjectConfigFile))

	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	paths = append(paths,
		filepath.Join(dir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "arkham", "config.yaml"),
	)
	return paths, nil
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) $ARKHAM_CONFIG
// 2) <project root>/.arkham.yaml
// 3) ~/.config/arkham/config.yaml
// 4) /etc/arkham/config.yaml
// Missing values fall back to DefaultSettings.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		root, err := ResolveRoot()
		if err != nil {
			settingsErr = err
			return
		}
		settings, settingsSource, settingsErr = loadSettingsFrom(root)
	})
	return settings, settingsErr
}

// SettingsSource returns the file the loaded settings came from, or
// "default" when no file was found.
func SettingsSource() string {
	_, _ = LoadSettings()
	return settingsSource
}

func loadSettingsFrom(root string) (Settings, string, error) {
	paths, err := settingsPaths(root)
	if err != nil {
		return DefaultSettings(), "", err
	}
	for _, p := range paths {
		s, err := loadSettingsFile(p)
		if err == nil {
			return s.withDefaults(), p, nil
		}
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return DefaultSettings(), p, err
	}
	return DefaultSettings(), "default", nil
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path) //nolint:gosec // G304: config paths are fixed or operator-provided
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
