// Package git records project snapshots with the git CLI and logs the
// resulting commit in the version log.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandExecutor runs a command in dir and returns its stdout.
type CommandExecutor interface {
	Run(ctx context.Context, dir, name string, args ...string) (string, error)
}

// CommandError is a command that exited unsuccessfully. Output holds the
// combined stdout and stderr so callers can inspect git's message.
type CommandError struct {
	Name   string
	Args   []string
	Output string
	Err    error
}

func (e *CommandError) Error() string {
	msg := strings.TrimSpace(e.Output)
	if msg == "" {
		return fmt.Sprintf("%s %s: %v", e.Name, strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %s", e.Name, strings.Join(e.Args, " "), e.Err, msg)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExecExecutor is the os/exec implementation of CommandExecutor.
type ExecExecutor struct{}

// NewExecExecutor creates a new ExecExecutor
func NewExecExecutor() *ExecExecutor {
	return &ExecExecutor{}
}

// Run implements CommandExecutor.Run
func (e *ExecExecutor) Run(ctx context.Context, dir, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // G204: git binary is user-configured
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stdout.String(), &CommandError{
			Name:   name,
			Args:   args,
			Output: stdout.String() + stderr.String(),
			Err:    err,
		}
	}
	return stdout.String(), nil
}
