package models

import (
	"errors"
	"fmt"
	"strings"
)

// RecoverableError is implemented by enriched errors that carry structured
// context and remediation hints. The command layer prints SuggestedAction
// below the error message.
type RecoverableError interface {
	error
	ErrorCode() string
	Context() map[string]string
	SuggestedAction() string
}

// Sentinels for errors.Is matching against the concrete kinds below.
var (
	ErrIO                 = errors.New("io error")
	ErrInvalidVersion     = errors.New("invalid version")
	ErrNoVersionSpecified = errors.New("no version specified")
	ErrVersionNotFound    = errors.New("version not found")
	ErrMultipleVersions   = errors.New("multiple version errors")
	ErrCorruptVersionInfo = errors.New("corrupt version info")
	ErrMissingVersionInfo = errors.New("version information missing")
	ErrBuild              = errors.New("build error")
	ErrBackup             = errors.New("backup error")
)

// IOError wraps a filesystem or subprocess failure.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error: %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("IO error: %s: %v", e.Op, e.Err)
}
func (e *IOError) Unwrap() error     { return e.Err }
func (e *IOError) ErrorCode() string { return "IO_ERROR" }
func (e *IOError) Context() map[string]string {
	return map[string]string{"op": e.Op, "path": e.Path}
}
func (e *IOError) SuggestedAction() string {
	return "check that the path exists and is writable, then retry"
}
func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError returns nil when err is nil so callers can wrap unconditionally.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// InvalidVersionError carries the offending version text.
type InvalidVersionError struct {
	Text string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("Invalid version format '%s'. Expected format: X.YY (e.g., 3.53, 2.05)", e.Text)
}
func (e *InvalidVersionError) ErrorCode() string { return "INVALID_VERSION" }
func (e *InvalidVersionError) Context() map[string]string {
	return map[string]string{"version": e.Text}
}
func (e *InvalidVersionError) SuggestedAction() string {
	return "Version should be in format X.YY (e.g., 3.54)"
}
func (e *InvalidVersionError) Is(target error) bool { return target == ErrInvalidVersion }

// NoVersionSpecifiedError is returned by archive-entry without arguments.
type NoVersionSpecifiedError struct{}

func (e *NoVersionSpecifiedError) Error() string {
	return "No version specified. Usage: arkham archive-entry <version1> [version2] ..."
}
func (e *NoVersionSpecifiedError) ErrorCode() string          { return "NO_VERSION_SPECIFIED" }
func (e *NoVersionSpecifiedError) Context() map[string]string { return nil }
func (e *NoVersionSpecifiedError) SuggestedAction() string {
	return "arkham archive-entry 3.53 1.54"
}
func (e *NoVersionSpecifiedError) Is(target error) bool { return target == ErrNoVersionSpecified }

// VersionNotFoundError reports a requested version with no log rows.
type VersionNotFoundError struct {
	Version string
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("Version %s not found in logs", e.Version)
}
func (e *VersionNotFoundError) ErrorCode() string { return "VERSION_NOT_FOUND" }
func (e *VersionNotFoundError) Context() map[string]string {
	return map[string]string{"version": e.Version}
}
func (e *VersionNotFoundError) SuggestedAction() string {
	return "run 'arkham archives' to list the logged versions"
}
func (e *VersionNotFoundError) Is(target error) bool { return target == ErrVersionNotFound }

// MultipleVersionErrors aggregates independent validation or lookup failures
// so a caller sees all of them in one report.
type MultipleVersionErrors struct {
	Errors []error
}

func (e *MultipleVersionErrors) Error() string {
	var b strings.Builder
	b.WriteString("Multiple version errors! :")
	for _, err := range e.Errors {
		b.WriteString("\n  - ")
		b.WriteString(err.Error())
	}
	return b.String()
}

// Messages returns the message of every aggregated error in order.
func (e *MultipleVersionErrors) Messages() []string {
	out := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		out = append(out, err.Error())
	}
	return out
}
func (e *MultipleVersionErrors) Unwrap() []error   { return e.Errors }
func (e *MultipleVersionErrors) ErrorCode() string { return "MULTIPLE_VERSION_ERRORS" }
func (e *MultipleVersionErrors) Context() map[string]string {
	return map[string]string{"count": fmt.Sprint(len(e.Errors))}
}
func (e *MultipleVersionErrors) SuggestedAction() string {
	return "arkham archive-entry 3.53 1.54"
}
func (e *MultipleVersionErrors) Is(target error) bool { return target == ErrMultipleVersions }

// Aggregate returns nil for no errors and a *MultipleVersionErrors otherwise.
func Aggregate(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &MultipleVersionErrors{Errors: errs}
}

// CorruptVersionInfoError reports a structural violation in a persisted file.
// Line is 1-based; zero means the whole file.
type CorruptVersionInfoError struct {
	Path   string
	Line   int
	Detail string
}

func (e *CorruptVersionInfoError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Corrupt version info at line %d: %s", e.Line, e.Detail)
	}
	return fmt.Sprintf("Corrupt version info: %s", e.Detail)
}
func (e *CorruptVersionInfoError) ErrorCode() string { return "CORRUPT_VERSION_INFO" }
func (e *CorruptVersionInfoError) Context() map[string]string {
	return map[string]string{"path": e.Path, "line": fmt.Sprint(e.Line)}
}
func (e *CorruptVersionInfoError) SuggestedAction() string {
	if e.Path == "" {
		return "repair the file by hand"
	}
	return fmt.Sprintf("repair %s by hand", e.Path)
}
func (e *CorruptVersionInfoError) Is(target error) bool { return target == ErrCorruptVersionInfo }

// MissingVersionInfoError is returned when no version-info file exists.
type MissingVersionInfoError struct {
	Path string
}

func (e *MissingVersionInfoError) Error() string     { return "Version Information missing" }
func (e *MissingVersionInfoError) ErrorCode() string { return "MISSING_VERSION_INFO" }
func (e *MissingVersionInfoError) Context() map[string]string {
	return map[string]string{"path": e.Path}
}
func (e *MissingVersionInfoError) SuggestedAction() string {
	return "run 'arkham build' once to set up versioning"
}
func (e *MissingVersionInfoError) Is(target error) bool { return target == ErrMissingVersionInfo }

// BuildError covers build tool and artifact lifecycle failures.
type BuildError struct {
	Cause string
	Err   error
}

func (e *BuildError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Build error: %s: %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("Build error: %s", e.Cause)
}
func (e *BuildError) Unwrap() error     { return e.Err }
func (e *BuildError) ErrorCode() string { return "BUILD_ERROR" }
func (e *BuildError) Context() map[string]string {
	return map[string]string{"cause": e.Cause}
}
func (e *BuildError) SuggestedAction() string { return "Check the build logs for more details." }
func (e *BuildError) Is(target error) bool    { return target == ErrBuild }

// BackupError covers version-control bridge failures.
type BackupError struct {
	Cause string
	Err   error
}

func (e *BackupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Error occurred during saving/restoring state!: %s: %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("Error occurred during saving/restoring state!: %s", e.Cause)
}
func (e *BackupError) Unwrap() error     { return e.Err }
func (e *BackupError) ErrorCode() string { return "BACKUP_ERROR" }
func (e *BackupError) Context() map[string]string {
	return map[string]string{"cause": e.Cause}
}
func (e *BackupError) SuggestedAction() string {
	return "Failed to save project state. Check that git is installed and the project root is accessible."
}
func (e *BackupError) Is(target error) bool { return target == ErrBackup }
