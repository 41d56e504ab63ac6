package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dotcommander/arkham/internal/app"
)

// Execute runs the CLI application.
func Execute(version string) error {
	root := newRootCmd(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := root.ExecuteContext(ctx)
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			// Errors cobra raises itself (bad flags, missing args).
			_, _ = root.ErrOrStderr().Write([]byte("Error: " + err.Error() + "\n"))
		}
	}
	return err
}

func newRootCmd(version string) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "arkham",
		Short:         "Build, version, publish and archive project executables",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				cmd.Println("arkham " + version)
				return nil
			}
			if len(args) > 0 {
				slog.Warn("unknown command", "command", strings.Join(args, " "))
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(debug)

			if written, err := app.EnsureConfigDir(); err != nil {
				slog.Warn("config directory unavailable", "error", err)
			} else if written != "" {
				slog.Debug("default config written", "path", written)
			}

			// Wire --dir and --db-path into the app-level resolvers.
			if dir, err := cmd.Flags().GetString("dir"); err == nil && dir != "" {
				app.SetRootOverride(dir)
			}
			if dbPath, err := cmd.Flags().GetString("db-path"); err == nil && dbPath != "" {
				app.SetDBPathOverride(dbPath)
			}
			return nil
		},
	}

	root.PersistentFlags().String("dir", "", "Project root (default: current directory)")
	root.PersistentFlags().String("db-path", "", "Override publish history database path")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.Flags().BoolP("version", "v", false, "version for arkham")

	root.AddCommand(NewBuildCmd())
	root.AddCommand(NewCleanCmd())
	root.AddCommand(NewBackupCmd())
	root.AddCommand(NewArchivesCmd())
	root.AddCommand(NewArchiveEntryCmd())
	root.AddCommand(NewAppStatusCmd())
	root.AddCommand(NewHistoryCmd())
	root.AddCommand(NewDoctorCmd())
	root.SetHelpCommand(newHelpCmd(root))

	return root
}

// setupLogger installs the default slog logger: text on a terminal, JSON
// when stderr is piped.
func setupLogger(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
