package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/arkham/internal/models"
)

func newTestLog(t *testing.T) *VersionLog {
	t.Helper()
	dir := t.TempDir()
	return NewVersionLog(filepath.Join(dir, ".version.log"), filepath.Join(dir, ".arkham.lock"))
}

func entry(version, msg, commit string) models.VersionLogEntry {
	return models.VersionLogEntry{
		Version:    version,
		LogMessage: msg,
		BuildDate:  "2026-10-19 09:00:00",
		Builder:    "dev",
		CommitID:   commit,
	}
}

func TestVersionLog_AppendWritesHeaderOnce(t *testing.T) {
	l := newTestLog(t)
	require.False(t, l.Exists())

	require.NoError(t, l.Append(entry("1.00", "first", "aaa")))
	require.NoError(t, l.Append(entry("1.01", "second, with comma", "bbb")))
	require.True(t, l.Exists())

	b, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "version_name,version_log,build_date,built_by,commit_id", lines[0])
	require.Equal(t, `1.01,"second, with comma",2026-10-19 09:00:00,"dev","bbb"`, lines[2])
}

func TestVersionLog_ListAllInInsertionOrder(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append(entry("2.00", "b", "c2")))
	require.NoError(t, l.Append(entry("1.00", `quoted "msg", here`, "0123456789abcdef")))

	got, err := l.ListAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "2.00", got[0].Version)
	require.Equal(t, "1.00", got[1].Version)
	require.Equal(t, `quoted "msg", here`, got[1].LogMessage)

	// Truncation is display-only.
	require.Equal(t, "0123456789abcdef", got[1].CommitID)
	require.Equal(t, "01234567...", got[1].ShortCommit())
	require.Equal(t, "c2", got[0].ShortCommit())
}

func TestVersionLog_ListAllMissingFile(t *testing.T) {
	got, err := newTestLog(t).ListAll()
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestVersionLog_ListAllCollectsEveryCorruptLine(t *testing.T) {
	l := newTestLog(t)
	content := strings.Join([]string{
		logHeader,
		`1.00,"ok",d,"b","c"`,
		`1.01,"missing",d`,
		`1.x,"bad version",d,"b","c"`,
		`1.02,"ok",d,"b","c"`,
		`1.03,too,many,fields,"b","c"`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(l.Path(), []byte(content), 0o644))

	_, err := l.ListAll()
	var multi *models.MultipleVersionErrors
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi.Errors, 3)
	require.Equal(t, "Corrupt version info at line 3: Expected 5 fields, found 3", multi.Errors[0].Error())
	require.Contains(t, multi.Errors[1].Error(), "Invalid version at line 4")
	require.ErrorIs(t, multi.Errors[1], models.ErrInvalidVersion)
	require.Contains(t, multi.Errors[2].Error(), "line 6")
	require.ErrorIs(t, err, models.ErrCorruptVersionInfo)
}

func TestVersionLog_LookupRequiresVersions(t *testing.T) {
	_, err := newTestLog(t).Lookup(nil)
	require.ErrorIs(t, err, models.ErrNoVersionSpecified)
}

func TestVersionLog_LookupPrevalidatesAll(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append(entry("1.00", "a", "c")))

	_, err := l.Lookup([]string{"1.00", "1.2.3"})
	var multi *models.MultipleVersionErrors
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi.Errors, 1)
	require.True(t, errors.Is(multi.Errors[0], models.ErrInvalidVersion))
	require.Contains(t, multi.Messages()[0], "1.2.3")

	_, err = l.Lookup([]string{"x", "1.100", "3"})
	require.ErrorAs(t, err, &multi)
	require.Len(t, multi.Errors, 3)
}

func TestVersionLog_LookupFiltersMatchingRows(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append(entry("1.00", "a", "c1")))
	require.NoError(t, l.Append(entry("1.01", "b", "c2")))
	require.NoError(t, l.Append(entry("1.00", "rebuild", "c3")))

	got, err := l.Lookup([]string{"1.00", "9.99"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "c1", got[0].CommitID)
	require.Equal(t, "c3", got[1].CommitID)
}

func TestVersionLog_LookupNotFoundPerVersion(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Append(entry("1.00", "a", "c1")))

	_, err := l.Lookup([]string{"2.00", "3.00", "2.00"})
	var multi *models.MultipleVersionErrors
	require.ErrorAs(t, err, &multi)
	require.Equal(t, []string{"Version 2.00 not found in logs", "Version 3.00 not found in logs"}, multi.Messages())
	require.ErrorIs(t, err, models.ErrVersionNotFound)
}

func TestVersionLog_LookupCorruptionOnlyForMatchingRows(t *testing.T) {
	l := newTestLog(t)
	content := strings.Join([]string{
		logHeader,
		`1.00,"ok",d,"b","c"`,
		`2.00,"broken"`,
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(l.Path(), []byte(content), 0o644))

	got, err := l.Lookup([]string{"1.00"})
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = l.Lookup([]string{"2.00"})
	require.ErrorIs(t, err, models.ErrCorruptVersionInfo)
	require.Contains(t, err.Error(), "line 3")
}

func TestVersionLog_MultilineFreeTextStaysOneRow(t *testing.T) {
	l := newTestLog(t)
	e := entry("1.00", "first line\nsecond, line\r\nthird", "abc")
	e.Builder = "dev\rops"
	require.NoError(t, l.Append(e))
	require.NoError(t, l.Append(entry("1.01", "next", "def")))

	b, err := os.ReadFile(l.Path())
	require.NoError(t, err)
	require.Len(t, strings.Split(strings.TrimSuffix(string(b), "\n"), "\n"), 3)

	all, err := l.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "first line second, line third", all[0].LogMessage)
	require.Equal(t, "dev ops", all[0].Builder)
	require.Equal(t, "1.01", all[1].Version)
}
