package actions

import (
	"context"
	"fmt"

	"github.com/dotcommander/arkham/internal/git"
	"github.com/dotcommander/arkham/internal/models"
)

// BackupOptions answers the backup prompts non-interactively.
type BackupOptions struct {
	Builder string
	Message string
}

// Backup commits the project tree for the current version and appends the
// commit to the version log.
func Backup(ctx context.Context, env Env, opts BackupOptions, gitOpts ...git.BridgeOption) (*models.VersionLogEntry, error) {
	c := env.Console
	c.Header("Saving Current Project State!")

	state, err := env.infoStore().Read()
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, &models.BackupError{
			Cause: "Current Version not found!",
			Err:   &models.MissingVersionInfoError{Path: env.Workspace.InfoPath()},
		}
	}

	builder := opts.Builder
	if builder == "" {
		if builder, err = env.Prompter.Ask("Who's building it? : ", ""); err != nil {
			return nil, err
		}
	}
	message := opts.Message
	if message == "" {
		if message, err = env.Prompter.Ask("Enter a commit message describing the changes : ", ""); err != nil {
			return nil, err
		}
	}

	bridge := git.NewBridge(env.Workspace.Root, env.Settings.GitCommand, env.versionLog(), gitOpts...)
	entry, err := bridge.Commit(ctx, state.CurrentVersion, message, builder)
	if err != nil {
		return nil, err
	}

	c.Printf("Logged: Version %s by %s", entry.Version, entry.Builder)
	c.Header(fmt.Sprintf("Successfully Saved state for version %s", entry.Version))
	return entry, nil
}
