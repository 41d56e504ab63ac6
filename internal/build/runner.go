// Package build drives the external build tool and decides from its output
// whether a build succeeded.
package build

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/dotcommander/arkham/internal/models"
)

// maxOutputLine bounds a single line of build output.
const maxOutputLine = 1 << 20

// Classifier decides whether one line of build output reports an error.
type Classifier interface {
	IsErrorLine(line string) bool
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(line string) bool

func (f ClassifierFunc) IsErrorLine(line string) bool { return f(line) }

// Verdict turns the classified output and the exit status into the build result.
type Verdict interface {
	Success(errorLines int, exitCode int) bool
}

// VerdictFunc adapts a function to Verdict.
type VerdictFunc func(errorLines, exitCode int) bool

func (f VerdictFunc) Success(errorLines, exitCode int) bool { return f(errorLines, exitCode) }

var errorMarkers = []string{"error:", "Error ", "make:***"}

// DefaultClassifier flags lines containing a compiler or make error marker,
// unless the line reports an up-to-date target.
var DefaultClassifier Classifier = ClassifierFunc(func(line string) bool {
	if strings.Contains(line, "is up to date") {
		return false
	}
	for _, m := range errorMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
})

// OutputVerdict succeeds when no line was classified as an error. The exit
// status is ignored.
var OutputVerdict Verdict = VerdictFunc(func(errorLines, _ int) bool {
	return errorLines == 0
})

// StrictVerdict additionally requires a zero exit status.
var StrictVerdict Verdict = VerdictFunc(func(errorLines, exitCode int) bool {
	return errorLines == 0 && exitCode == 0
})

// Runner invokes the build tool in Dir.
type Runner struct {
	Command    string
	Dir        string
	CleanArgs  []string
	Out        io.Writer
	Classifier Classifier
	Verdict    Verdict
}

// NewRunner returns a Runner with the default classifier. strict selects
// StrictVerdict over OutputVerdict.
func NewRunner(command, dir string, cleanArgs []string, strict bool) *Runner {
	v := OutputVerdict
	if strict {
		v = StrictVerdict
	}
	return &Runner{
		Command:    command,
		Dir:        dir,
		CleanArgs:  cleanArgs,
		Out:        os.Stdout,
		Classifier: DefaultClassifier,
		Verdict:    v,
	}
}

// Result summarizes one build run.
type Result struct {
	Success    bool
	ErrorLines int
	ExitCode   int
}

// Build runs the build tool with extraArgs appended, streaming each line of
// combined output to Out. Error lines flip the result but never stop the
// stream or the process. Only a failure to start or read the tool is an
// error; a failed build is reported through Result.
func (r *Runner) Build(ctx context.Context, extraArgs []string) (Result, error) {
	var res Result
	cmd := exec.CommandContext(ctx, r.Command, extraArgs...) //nolint:gosec // G204: build command is user-configured
	cmd.Dir = r.Dir

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		return res, models.NewIOError("start", r.Command, err)
	}

	waitErr := make(chan error, 1)
	go func() {
		err := cmd.Wait()
		_ = pw.Close()
		waitErr <- err
	}()

	classifier := r.Classifier
	if classifier == nil {
		classifier = DefaultClassifier
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), maxOutputLine)
	for scanner.Scan() {
		line := scanner.Text()
		_, _ = fmt.Fprintln(out, line)
		if classifier.IsErrorLine(line) {
			res.ErrorLines++
		}
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// Keep draining so the tool never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, pr)
	}

	err := <-waitErr
	if scanErr != nil {
		return res, models.NewIOError("read output", r.Command, scanErr)
	}
	code, err := exitCode(err)
	if err != nil {
		return res, models.NewIOError("wait", r.Command, err)
	}
	res.ExitCode = code

	verdict := r.Verdict
	if verdict == nil {
		verdict = OutputVerdict
	}
	res.Success = verdict.Success(res.ErrorLines, res.ExitCode)
	slog.Debug("build finished",
		"command", r.Command,
		"exit_code", res.ExitCode,
		"error_lines", res.ErrorLines,
		"success", res.Success,
	)
	return res, nil
}

// Clean runs the build tool with CleanArgs. Unlike Build, a non-zero exit
// status is a failure.
func (r *Runner) Clean(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, r.Command, r.CleanArgs...) //nolint:gosec // G204: build command is user-configured
	cmd.Dir = r.Dir
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	cmd.Stdout = out
	cmd.Stderr = out

	err := cmd.Run()
	code, waitErr := exitCode(err)
	if waitErr != nil {
		return models.NewIOError("run", r.Command, waitErr)
	}
	if code != 0 {
		return &models.BuildError{Cause: fmt.Sprintf("Clean failed: %s exited with status %d", r.Command, code)}
	}
	return nil
}

// exitCode splits a Wait error into the process exit status and a genuine
// failure to run.
func exitCode(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
