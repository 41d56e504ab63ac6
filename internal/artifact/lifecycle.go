// Package artifact publishes version-tagged executables: it embeds version
// metadata into the built binary, writes it under a versioned name, points
// the stable symlink at it, archives superseded artifacts and prunes the
// archive to the retention count.
package artifact

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"

	"github.com/dotcommander/arkham/internal/app"
	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/store"
	"github.com/dotcommander/arkham/internal/version"
)

// SidecarSuffix marks optional metadata files paired with archived artifacts.
const SidecarSuffix = ".version"

// artifactMode is applied to every versioned artifact.
const artifactMode os.FileMode = 0o777

// Manager runs the publish cycle for one stable name inside a workspace.
type Manager struct {
	ws     app.Workspace
	name   string
	now    func() time.Time
	locked bool
	// verify checks the written artifact carries the version.
	verify func(content []byte, version string) bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the clock used for the embedded build date.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithoutLock skips the workspace advisory lock.
func WithoutLock() Option {
	return func(m *Manager) { m.locked = false }
}

// NewManager returns a Manager for the executable named stableName in ws.Root.
func NewManager(ws app.Workspace, stableName string, opts ...Option) (*Manager, error) {
	if stableName == "" || stableName == "." || stableName == ".." ||
		strings.ContainsRune(stableName, os.PathSeparator) {
		return nil, &models.BuildError{Cause: fmt.Sprintf("invalid executable name %q", stableName)}
	}
	if ws.Root == "" || ws.ArchiveDir == "" {
		return nil, &models.BuildError{Cause: "workspace root and archive directory are required"}
	}
	if ws.Retention <= 0 {
		ws.Retention = 10
	}
	m := &Manager{ws: ws, name: stableName, now: time.Now, locked: true, verify: ContainsVersion}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// StablePath is the path of the stable symlink.
func (m *Manager) StablePath() string { return filepath.Join(m.ws.Root, m.name) }

// VersionedName is the file name of the artifact for version.
func (m *Manager) VersionedName(version string) string {
	return m.name + "_v_" + version
}

func (m *Manager) versionedPrefix() string { return m.name + "_v_" }

// PublishResult describes a completed publish cycle.
type PublishResult struct {
	Version  string   `json:"version"`
	Artifact string   `json:"artifact"`
	Symlink  string   `json:"symlink"`
	Digest   string   `json:"digest"`
	Archived []string `json:"archived"`
	Pruned   []string `json:"pruned"`
}

func buildErr(cause string, err error) error {
	return &models.BuildError{Cause: cause, Err: err}
}

// Publish embeds version into the executable at the stable path, writes it as
// {name}_v_{version}, repoints the stable symlink, archives superseded
// artifacts and prunes the archive. A failure returns a BuildError; completed
// steps are not rolled back, and rerunning Publish converges.
func (m *Manager) Publish(versionText string) (*PublishResult, error) {
	if err := version.Validate(versionText); err != nil {
		return nil, err
	}

	if m.locked {
		lock, err := store.AcquireLock(m.ws.LockPath())
		if err != nil {
			return nil, buildErr("acquire workspace lock", err)
		}
		defer lock.Release()
	}

	stable := m.StablePath()
	versioned := m.VersionedName(versionText)
	target := filepath.Join(m.ws.Root, versioned)

	// 1. precondition
	if _, err := os.Stat(stable); err != nil {
		return nil, buildErr(fmt.Sprintf("executable %s not found", m.name), err)
	}

	// 2-3. strip any previous block, embed a fresh one
	content, err := os.ReadFile(stable) //nolint:gosec // G304: stable path derived from the workspace root
	if err != nil {
		return nil, buildErr("read executable", err)
	}
	content = EmbedMetadata(content, versionText, m.now())

	// 4. write the versioned artifact
	if err := writeExecutable(target, content); err != nil {
		return nil, buildErr("write versioned executable", err)
	}

	// 5. self-verification
	written, err := os.ReadFile(target) //nolint:gosec // G304: target derived from the workspace root
	if err != nil {
		return nil, buildErr("read back versioned executable", err)
	}
	if !m.verify(written, versionText) {
		_ = os.Remove(target)
		return nil, buildErr("Failed to write version info to executable!", nil)
	}
	sum := blake3.Sum256(written)

	// 6. symlink swap
	if err := m.swapSymlink(versioned); err != nil {
		return nil, err
	}

	result := &PublishResult{
		Version:  versionText,
		Artifact: target,
		Symlink:  stable,
		Digest:   hex.EncodeToString(sum[:]),
	}

	// 7. archive migration
	archived, err := m.archiveSuperseded(versioned)
	result.Archived = archived
	if err != nil {
		return result, err
	}

	// 8. retention pruning
	pruned, err := Prune(m.ws.ArchiveDir, m.name, m.ws.Retention)
	result.Pruned = pruned
	if err != nil {
		return result, buildErr("prune archive", err)
	}

	// 9. final verification
	if _, err := os.Lstat(target); err != nil {
		return result, buildErr("Failed to verify final executable state", err)
	}
	if _, err := os.Stat(stable); err != nil {
		return result, buildErr("Failed to verify final executable state", err)
	}

	slog.Debug("artifact published",
		"artifact", versioned,
		"archived", len(archived),
		"pruned", len(pruned),
	)
	return result, nil
}

// writeExecutable writes content to a dot-prefixed temporary file and renames
// it onto path, so path is either absent, the old content, or complete.
func writeExecutable(path string, content []byte) error {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, content, artifactMode); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	// WriteFile honours the umask; the mode is set explicitly.
	if err := os.Chmod(tmp, artifactMode); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// swapSymlink points the stable name at versioned. The new link is created
// under a temporary name and renamed over the stable path, which replaces it
// atomically on POSIX filesystems.
func (m *Manager) swapSymlink(versioned string) error {
	stable := m.StablePath()
	tmpLink := filepath.Join(m.ws.Root, "."+m.name+".link")

	_ = os.Remove(tmpLink)
	if err := os.Symlink(versioned, tmpLink); err != nil {
		return buildErr("Failed to create Symlink!", err)
	}
	if err := os.Rename(tmpLink, stable); err != nil {
		_ = os.Remove(tmpLink)
		return buildErr("Failed to create Symlink!", err)
	}
	if _, err := os.Stat(stable); err != nil {
		return buildErr("Failed to create Symlink!", err)
	}
	return nil
}

// archiveSuperseded moves every {name}_v_* file in the root other than
// current into the archive directory. Files are renamed, never copied.
func (m *Manager) archiveSuperseded(current string) ([]string, error) {
	entries, err := os.ReadDir(m.ws.Root)
	if err != nil {
		return nil, buildErr("scan project root", err)
	}

	var moved []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == current || !strings.HasPrefix(name, m.versionedPrefix()) {
			continue
		}
		if err := os.MkdirAll(m.ws.ArchiveDir, 0o755); err != nil {
			return moved, buildErr("create archive directory", err)
		}
		dst := filepath.Join(m.ws.ArchiveDir, name)
		if err := os.Rename(filepath.Join(m.ws.Root, name), dst); err != nil {
			return moved, buildErr(fmt.Sprintf("archive %s", name), err)
		}
		slog.Debug("artifact archived", "artifact", name, "archive", m.ws.ArchiveDir)
		moved = append(moved, name)
	}

	// The archive always exists after a publish.
	if err := os.MkdirAll(m.ws.ArchiveDir, 0o755); err != nil {
		return moved, buildErr("create archive directory", err)
	}
	return moved, nil
}

// Prune keeps the keep most recently modified {name}_* artifacts in dir and
// deletes the rest together with their {file}.version sidecars. Returns the
// deleted artifact names. A missing dir prunes nothing.
func Prune(dir, name string, keep int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	type build struct {
		name    string
		modTime time.Time
	}
	var builds []build
	prefix := name + "_"
	for _, e := range entries {
		fn := e.Name()
		if e.IsDir() || !strings.HasPrefix(fn, prefix) || strings.HasSuffix(fn, SidecarSuffix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		builds = append(builds, build{name: fn, modTime: info.ModTime()})
	}

	// newest first
	sort.SliceStable(builds, func(i, j int) bool {
		if builds[i].modTime.Equal(builds[j].modTime) {
			return builds[i].name > builds[j].name
		}
		return builds[i].modTime.After(builds[j].modTime)
	})

	if keep < 0 {
		keep = 0
	}
	var pruned []string
	for _, b := range builds[min(keep, len(builds)):] {
		if err := removeIfExists(filepath.Join(dir, b.name)); err != nil {
			return pruned, err
		}
		if err := removeIfExists(filepath.Join(dir, b.name+SidecarSuffix)); err != nil {
			return pruned, err
		}
		slog.Debug("archive pruned", "artifact", b.name)
		pruned = append(pruned, b.name)
	}
	return pruned, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Current resolves the stable symlink and returns the artifact it points at.
func (m *Manager) Current() (string, error) {
	target, err := os.Readlink(m.StablePath())
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(m.ws.Root, target)
	}
	return target, nil
}

// Digest returns the hex BLAKE3-256 digest of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is a workspace artifact
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
