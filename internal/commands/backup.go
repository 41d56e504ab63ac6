package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/arkham/internal/actions"
)

func NewBackupCmd() *cobra.Command {
	var opts actions.BackupOptions

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Commit the project with git and log the commit for the current version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(env actions.Env) error {
				_, err := actions.Backup(cmd.Context(), env, opts)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&opts.Builder, "builder", "", "Who built this version (skips the prompt)")
	cmd.Flags().StringVarP(&opts.Message, "message", "m", "", "Log message describing the changes (skips the prompt)")

	return cmd
}
