package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Fixed file names inside a project root.
const (
	VersionInfoFile = ".version.info"
	VersionLogFile  = ".version.log"
	LockFile        = ".arkham.lock"
)

// Workspace is the explicit filesystem context every component works in.
// Nothing below the command layer reads the process working directory.
type Workspace struct {
	Root       string
	ArchiveDir string
	Retention  int
}

// ResolveRoot returns the --dir override or the current directory, made absolute.
func ResolveRoot() (string, error) {
	root := getRootOverride()
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve project root %s: %w", root, err)
	}
	return abs, nil
}

// NewWorkspace builds a Workspace rooted at root. A relative archive dir is
// resolved against root.
func NewWorkspace(root string, s Settings) (Workspace, error) {
	if root == "" {
		return Workspace{}, errors.New("project root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Workspace{}, fmt.Errorf("resolve project root %s: %w", root, err)
	}
	s = s.withDefaults()
	archive := s.ArchiveDir
	if !filepath.IsAbs(archive) {
		archive = filepath.Join(abs, archive)
	}
	return Workspace{Root: abs, ArchiveDir: archive, Retention: s.Retention}, nil
}

// CurrentWorkspace resolves the root and settings and builds the Workspace.
func CurrentWorkspace() (Workspace, Settings, error) {
	root, err := ResolveRoot()
	if err != nil {
		return Workspace{}, Settings{}, err
	}
	s, err := LoadSettings()
	if err != nil {
		return Workspace{}, Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	ws, err := NewWorkspace(root, s)
	return ws, s, err
}

// Path joins name onto the workspace root.
func (w Workspace) Path(name string) string { return filepath.Join(w.Root, name) }

func (w Workspace) InfoPath() string { return w.Path(VersionInfoFile) }
func (w Workspace) LogPath() string  { return w.Path(VersionLogFile) }
func (w Workspace) LockPath() string { return w.Path(LockFile) }
