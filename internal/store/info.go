package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotcommander/arkham/internal/models"
)

// Keys of the version-info file.
const (
	keyProjectName    = "project_name"
	keyCurrentVersion = "current_version"
	keyProjectRoot    = "project_root"
)

// InfoStore reads and writes the key=value version-info file.
type InfoStore struct {
	path string
}

// NewInfoStore returns an InfoStore backed by the file at path.
func NewInfoStore(path string) *InfoStore {
	return &InfoStore{path: path}
}

// Path returns the backing file path.
func (s *InfoStore) Path() string { return s.path }

// Read returns (nil, nil) when the file does not exist. Unknown keys are
// ignored; a line without exactly one '=', or a file with an
// empty project name or version, is a CorruptVersionInfoError.
func (s *InfoStore) Read() (*models.ProjectVersionState, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, models.NewIOError("open", s.path, err)
	}
	defer func() { _ = f.Close() }()

	var state models.ProjectVersionState
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok || strings.Contains(value, "=") {
			return nil, &models.CorruptVersionInfoError{
				Path:   s.path,
				Line:   lineNum,
				Detail: "Invalid format in Version file",
			}
		}
		switch key {
		case keyProjectName:
			state.ProjectName = value
		case keyCurrentVersion:
			state.CurrentVersion = value
		case keyProjectRoot:
			state.ProjectRoot = value
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, models.NewIOError("read", s.path, err)
	}

	if state.ProjectName == "" || state.CurrentVersion == "" {
		return nil, &models.CorruptVersionInfoError{
			Path:   s.path,
			Detail: fmt.Sprintf("Invalid Version info please check: %s", s.path),
		}
	}
	return &state, nil
}

// MustRead is Read with an absent file reported as MissingVersionInfoError.
func (s *InfoStore) MustRead() (*models.ProjectVersionState, error) {
	state, err := s.Read()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, &models.MissingVersionInfoError{Path: s.path}
	}
	return state, nil
}

// infoValueReserved are the characters Read cannot take back from a value.
const infoValueReserved = "=\r\n"

// CheckInfoValue reports a CorruptVersionInfoError when value could not be
// read back from the version-info file.
func CheckInfoValue(key, value string) error {
	if strings.ContainsAny(value, infoValueReserved) {
		return &models.CorruptVersionInfoError{
			Detail: fmt.Sprintf("%s %q must not contain '=' or line breaks", key, value),
		}
	}
	return nil
}

// Write replaces the file with the three canonical lines. The new content is
// written beside the file and renamed over it, so readers never see a
// partial file.
func (s *InfoStore) Write(state models.ProjectVersionState) error {
	for _, kv := range [][2]string{
		{keyProjectName, state.ProjectName},
		{keyCurrentVersion, state.CurrentVersion},
		{keyProjectRoot, state.ProjectRoot},
	} {
		if err := CheckInfoValue(kv[0], kv[1]); err != nil {
			return err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s\n", keyProjectName, state.ProjectName)
	fmt.Fprintf(&b, "%s=%s\n", keyCurrentVersion, state.CurrentVersion)
	fmt.Fprintf(&b, "%s=%s\n", keyProjectRoot, state.ProjectRoot)

	tmp := filepath.Join(filepath.Dir(s.path), "."+filepath.Base(s.path)+".tmp")
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return models.NewIOError("write", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return models.NewIOError("rename", s.path, err)
	}
	return nil
}
