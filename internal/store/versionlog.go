package store

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/version"
)

// maxLogLineBytes bounds a single version-log row.
const maxLogLineBytes = 1 << 20

// VersionLog is the append-only CSV history of backups.
type VersionLog struct {
	path     string
	lockPath string
}

// NewVersionLog returns a log backed by path. When lockPath is non-empty,
// appends hold an exclusive advisory lock on it.
func NewVersionLog(path, lockPath string) *VersionLog {
	return &VersionLog{path: path, lockPath: lockPath}
}

// Path returns the backing file path.
func (l *VersionLog) Path() string { return l.path }

// Exists reports whether the log file is present.
func (l *VersionLog) Exists() bool {
	_, err := os.Stat(l.path)
	return err == nil
}

// Append writes one row, creating the file with its header first if needed.
func (l *VersionLog) Append(entry models.VersionLogEntry) error {
	if l.lockPath != "" {
		lock, err := AcquireLock(l.lockPath)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return models.NewIOError("open", l.path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return models.NewIOError("stat", l.path, err)
	}
	line := EncodeRow(entry) + "\n"
	if info.Size() == 0 {
		line = logHeader + "\n" + line
	}
	if _, err := f.WriteString(line); err != nil {
		return models.NewIOError("append", l.path, err)
	}
	return nil
}

// scanRows calls fn for every data row with its 1-based file line number.
// A missing file yields no rows.
func (l *VersionLog) scanRows(fn func(line string, lineNum int)) error {
	f, err := os.Open(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return models.NewIOError("open", l.path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLogLineBytes)

	// Skip header line
	if !scanner.Scan() {
		return models.NewIOError("read", l.path, scanner.Err())
	}
	for idx := 0; scanner.Scan(); idx++ {
		// +2: the header is line 1 and idx is zero-based.
		fn(scanner.Text(), idx+2)
	}
	return models.NewIOError("read", l.path, scanner.Err())
}

// ListAll returns every row in insertion order. Rows with the wrong field
// count or an invalid version are all collected and reported together as a
// MultipleVersionErrors.
func (l *VersionLog) ListAll() ([]models.VersionLogEntry, error) {
	var (
		entries []models.VersionLogEntry
		errs    []error
	)
	err := l.scanRows(func(line string, lineNum int) {
		fields, err := ParseRow(line, lineNum)
		if err != nil {
			errs = append(errs, l.withPath(err))
			return
		}
		if err := version.Validate(fields[0]); err != nil {
			errs = append(errs, fmt.Errorf("Invalid version at line %d: %w", lineNum, err))
			return
		}
		entries = append(entries, entryFromFields(fields))
	})
	if err != nil {
		return nil, err
	}
	if aggErr := models.Aggregate(errs); aggErr != nil {
		return nil, aggErr
	}
	return entries, nil
}

// Lookup returns the rows whose version is one of versions, in insertion
// order. Every requested version is validated before the file is read; all
// format errors come back as one MultipleVersionErrors. When nothing matches,
// each requested version gets its own VersionNotFoundError in the aggregate.
func (l *VersionLog) Lookup(versions []string) ([]models.VersionLogEntry, error) {
	if len(versions) == 0 {
		return nil, &models.NoVersionSpecifiedError{}
	}

	var errs []error
	wanted := make(map[string]struct{}, len(versions))
	ordered := make([]string, 0, len(versions))
	for _, v := range versions {
		if err := version.Validate(v); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := wanted[v]; !dup {
			wanted[v] = struct{}{}
			ordered = append(ordered, v)
		}
	}
	if aggErr := models.Aggregate(errs); aggErr != nil {
		return nil, aggErr
	}

	var entries []models.VersionLogEntry
	err := l.scanRows(func(line string, lineNum int) {
		fields, err := ParseRow(line, lineNum)
		if _, ok := wanted[fields[0]]; !ok {
			return
		}
		if err != nil {
			errs = append(errs, l.withPath(err))
			return
		}
		entries = append(entries, entryFromFields(fields))
	})
	if err != nil {
		return nil, err
	}
	if aggErr := models.Aggregate(errs); aggErr != nil {
		return nil, aggErr
	}

	if len(entries) == 0 {
		notFound := make([]error, 0, len(ordered))
		for _, v := range ordered {
			notFound = append(notFound, &models.VersionNotFoundError{Version: v})
		}
		return nil, models.Aggregate(notFound)
	}
	return entries, nil
}

func (l *VersionLog) withPath(err error) error {
	var corrupt *models.CorruptVersionInfoError
	if errors.As(err, &corrupt) {
		corrupt.Path = l.path
	}
	return err
}
