package commands

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dotcommander/arkham/internal/actions"
	"github.com/dotcommander/arkham/internal/build"
	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/version"
)

func newRunner(cmd *cobra.Command, env actions.Env) *build.Runner {
	r := build.NewRunner(env.Settings.BuildCommand, env.Workspace.Root, env.Settings.CleanArgs, env.Settings.StrictExitStatus)
	r.Out = cmd.OutOrStdout()
	return r
}

func NewBuildCmd() *cobra.Command {
	var opts actions.BuildOptions

	cmd := &cobra.Command{
		Use:   "build [build-tool-args...]",
		Short: "Build the project, bump its version and publish the executable",
		Long: `Runs the build tool (make by default) with any extra arguments, then asks
whether to bump the version and publishes {name}_v_{version} behind the
stable {name} symlink. Superseded builds move to the archive directory.

Arguments after the first non-flag argument go to the build tool unchanged;
use -- to pass flags first: arkham build -- -j4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateBump(opts.Bump); err != nil {
				return cmdErr(cmd, err)
			}
			opts.ExtraArgs = args
			return withEnv(cmd, func(env actions.Env) error {
				_, err := actions.BuildAndUpdate(cmd.Context(), env, newRunner(cmd, env), opts)
				return err
			})
		},
	}

	// Everything from the first positional argument on belongs to the build tool.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&opts.Bump, "bump", "", "Version bump without prompting: major, minor or none")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Executable name for the first build (skips the prompt)")
	cmd.Flags().StringVar(&opts.Initial, "initial", "", "Starting version for the first build (skips the prompt)")

	return cmd
}

func validateBump(bump string) error {
	if bump == "" || strings.EqualFold(bump, actions.BumpNone) {
		return nil
	}
	if _, err := version.ParseKind(bump); err != nil {
		return &models.InvalidVersionError{Text: bump}
	}
	return nil
}

func NewCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Run the build tool's clean target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, func(env actions.Env) error {
				return actions.Clean(cmd.Context(), env, newRunner(cmd, env))
			})
		},
	}
}
