package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/arkham/internal/actions"
)

func NewArchivesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archives",
		Short: "List every logged version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(env actions.Env) error {
				res, err := actions.Archives(env)
				if err != nil {
					return err
				}
				if jsonMode(cmd) {
					return printJSON(cmd, res)
				}
				actions.RenderArchives(env, "Version History", res)
				return nil
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print a JSON envelope instead of a table")
	return cmd
}

func NewArchiveEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "archive-entry <version>...",
		Short:   "Show the log rows for specific versions",
		Example: "  arkham archive-entry 3.53 1.54",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(env actions.Env) error {
				res, err := actions.ArchiveEntry(env, args)
				if err != nil {
					return err
				}
				if jsonMode(cmd) {
					return printJSON(cmd, res)
				}
				actions.RenderArchives(env, "Version Log History", res)
				return nil
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print a JSON envelope instead of a table")
	return cmd
}
