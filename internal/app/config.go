package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/arkham on every platform.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "arkham"), nil
}

// EnsureConfigDir creates the config directory and, when missing, a commented
// config.yaml. It reports the file it wrote, or "" when one already existed.
func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	configFile := filepath.Join(dir, "config.yaml")
	f, err := os.OpenFile(configFile, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if errors.Is(err, fs.ErrExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("create %s: %w", configFile, err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(defaultConfig); err != nil {
		return "", fmt.Errorf("write %s: %w", configFile, err)
	}
	return configFile, nil
}

const defaultConfig = `# arkham configuration
# Run: arkham help
#
# A project-local .arkham.yaml in the project root takes precedence over this file.

# Build tool invoked by 'arkham build'; extra build arguments are appended.
# build_command: make

# Arguments passed to the build tool by 'arkham clean'.
# clean_args: [clean]

# Directory (relative to the project root) holding superseded executables.
# archive_dir: prev_builds

# Number of archived executables kept.
# retention: 10

# Also require a zero exit status from the build tool.
# strict_exit_status: false

# git_command: git

# Optional: override the publish-history database location.
# Can also be set via ARKHAM_DB_PATH or --db-path.
# db_path: ~/.config/arkham/arkham.db
`
