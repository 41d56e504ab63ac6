package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dotcommander/arkham/internal/models"
)

func shRunner(t *testing.T, strict bool) (*Runner, *bytes.Buffer) {
	t.Helper()
	r := NewRunner("sh", t.TempDir(), []string{"-c", "exit 0"}, strict)
	var out bytes.Buffer
	r.Out = &out
	return r, &out
}

func TestDefaultClassifier(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"main.c:3:1: error: expected ';'", true},
		{"Error 1", true},
		{"make:*** [all] Error 2", true},
		{"make: 'all' is up to date.", false},
		{"make:*** target is up to date", false},
		{"cc -o app main.c", false},
		{"warning: unused variable", false},
		{"ErrorHandler registered", false},
		{"src/x.go:1: error: thing (target is up to date)", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, DefaultClassifier.IsErrorLine(tc.line), tc.line)
	}
}

func TestBuild_StreamsOutputAndSucceeds(t *testing.T) {
	r, out := shRunner(t, false)

	res, err := r.Build(context.Background(), []string{"-c", "echo compiling; echo linking >&2"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Zero(t, res.ErrorLines)
	require.Contains(t, out.String(), "compiling\n")
	require.Contains(t, out.String(), "linking\n")
}

func TestBuild_ErrorLineFailsButKeepsStreaming(t *testing.T) {
	r, out := shRunner(t, false)

	res, err := r.Build(context.Background(), []string{"-c", "echo 'main.c:1: error: boom'; echo after"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, 1, res.ErrorLines)
	require.Contains(t, out.String(), "after")
}

func TestBuild_ExitStatusIgnoredByDefault(t *testing.T) {
	r, _ := shRunner(t, false)

	res, err := r.Build(context.Background(), []string{"-c", "echo done; exit 3"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 3, res.ExitCode)
}

func TestBuild_StrictVerdictChecksExitStatus(t *testing.T) {
	r, _ := shRunner(t, true)

	res, err := r.Build(context.Background(), []string{"-c", "exit 2"})
	require.NoError(t, err)
	require.False(t, res.Success)

	res, err = r.Build(context.Background(), []string{"-c", "true"})
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestBuild_CustomClassifier(t *testing.T) {
	r, _ := shRunner(t, false)
	r.Classifier = ClassifierFunc(func(line string) bool { return line == "FAIL" })

	res, err := r.Build(context.Background(), []string{"-c", "echo 'error: ignored'; echo FAIL"})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, 1, res.ErrorLines)
}

func TestBuild_MissingToolIsIOError(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "no-such-tool"), t.TempDir(), nil, false)

	_, err := r.Build(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrIO)
}

func TestBuild_RunsInDir(t *testing.T) {
	r, out := shRunner(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(r.Dir, "marker"), nil, 0o644))

	res, err := r.Build(context.Background(), []string{"-c", "ls"})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Contains(t, out.String(), "marker")
}

func TestClean(t *testing.T) {
	r, _ := shRunner(t, false)
	require.NoError(t, r.Clean(context.Background()))

	r.CleanArgs = []string{"-c", "exit 1"}
	err := r.Clean(context.Background())
	require.ErrorIs(t, err, models.ErrBuild)
}
