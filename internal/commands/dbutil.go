package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dotcommander/arkham/internal/actions"
	"github.com/dotcommander/arkham/internal/app"
	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/output"
	"github.com/dotcommander/arkham/internal/store"
)

type printedError struct {
	err error
}

func (e printedError) Error() string {
	// The message was already written to stderr by cmdErr.
	return "error already printed"
}

func (e printedError) Unwrap() error { return e.err }

func openHistory(ctx context.Context) (*store.History, error) {
	dbPath, err := app.GetDBPath()
	if err != nil {
		return nil, err
	}
	return store.OpenHistory(ctx, dbPath)
}

// newEnv resolves the workspace and opens the publish history. A history DB
// that cannot be opened is logged and left nil; it never blocks a command.
func newEnv(cmd *cobra.Command) (actions.Env, func(), error) {
	ws, settings, err := app.CurrentWorkspace()
	if err != nil {
		return actions.Env{}, func() {}, err
	}

	var pause time.Duration
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pause = time.Second
	}
	env := actions.Env{
		Workspace: ws,
		Settings:  settings,
		Console:   output.NewConsole(cmd.OutOrStdout(), pause),
		Prompter:  actions.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
	}

	history, err := openHistory(cmd.Context())
	if err != nil {
		slog.Warn("publish history unavailable", "error", err)
		return env, func() {}, nil
	}
	env.History = history
	return env, func() { _ = history.Close() }, nil
}

// withEnv runs fn against a fresh Env and funnels its error through cmdErr.
func withEnv(cmd *cobra.Command, fn func(env actions.Env) error) error {
	env, closeEnv, err := newEnv(cmd)
	if err != nil {
		return cmdErr(cmd, err)
	}
	defer closeEnv()

	if err := fn(env); err != nil {
		return cmdErr(cmd, err)
	}
	return nil
}

func jsonMode(cmd *cobra.Command) bool {
	v, err := cmd.Flags().GetBool("json")
	return err == nil && v
}

func printJSON(cmd *cobra.Command, data any) error {
	return output.WriteSuccess(cmd.OutOrStdout(), data)
}

// cmdErr reports err once and returns a printedError so Execute stays quiet.
// In --json mode the error envelope goes to stdout; otherwise the message,
// every aggregated item and the remediation hint go to stderr under the
// error banner.
func cmdErr(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	slog.Debug("command error", "command", cmd.CommandPath(), "error", err.Error())

	if jsonMode(cmd) {
		_ = output.WriteError(cmd.OutOrStdout(), err)
		return printedError{err: err}
	}

	w := cmd.ErrOrStderr()
	var multi *models.MultipleVersionErrors
	if errors.As(err, &multi) {
		_, _ = fmt.Fprintln(w, "Error while processing versions:")
		for _, msg := range multi.Messages() {
			_, _ = fmt.Fprintf(w, "  - %s\n", msg)
		}
	} else {
		_, _ = fmt.Fprintln(w, err.Error())
	}

	var re models.RecoverableError
	if errors.As(err, &re) {
		if action := re.SuggestedAction(); action != "" {
			_, _ = fmt.Fprintln(w, action)
		}
	}
	output.NewConsole(w, 0).ErrorHeader()
	return printedError{err: err}
}
