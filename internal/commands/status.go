package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/arkham/internal/actions"
)

func NewAppStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app-status",
		Short: "Show the project name, current version and published artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(env actions.Env) error {
				res, err := actions.AppStatus(cmd.Context(), env)
				if err != nil {
					return err
				}
				if jsonMode(cmd) {
					return printJSON(cmd, res)
				}
				actions.RenderStatus(env, res)
				return nil
			})
		},
	}
	cmd.Flags().Bool("json", false, "Print a JSON envelope")
	return cmd
}

func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded publishes for this project, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(env actions.Env) error {
				recs, err := actions.History(cmd.Context(), env, limit)
				if err != nil {
					return err
				}
				if jsonMode(cmd) {
					return printJSON(cmd, recs)
				}
				actions.RenderHistory(env, recs)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Max publishes to list")
	cmd.Flags().Bool("json", false, "Print a JSON envelope instead of a table")
	return cmd
}
