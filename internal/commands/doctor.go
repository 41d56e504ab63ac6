package commands

import (
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/dotcommander/arkham/internal/app"
	"github.com/dotcommander/arkham/internal/output"
	"github.com/dotcommander/arkham/internal/store"
)

type doctorReport struct {
	Root          string `json:"root"`
	ConfigSource  string `json:"config_source"`
	BuildCommand  string `json:"build_command"`
	BuildToolOK   bool   `json:"build_tool_ok"`
	GitCommand    string `json:"git_command"`
	GitOK         bool   `json:"git_ok"`
	DBPath        string `json:"db_path"`
	DBSource      string `json:"db_source"`
	DBOK          bool   `json:"db_ok"`
	DBErr         string `json:"db_error,omitempty"`
	SchemaVersion int64  `json:"schema_version"`
	LatestSchema  int64  `json:"latest_schema"`
	Hint          string `json:"hint,omitempty"`
}

func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, tools and the publish history database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, settings, err := app.CurrentWorkspace()
			if err != nil {
				return cmdErr(cmd, err)
			}
			loc, err := app.ResolveDBLocation()
			if err != nil {
				return cmdErr(cmd, err)
			}

			rep := doctorReport{
				Root:         ws.Root,
				ConfigSource: app.SettingsSource(),
				BuildCommand: settings.BuildCommand,
				GitCommand:   settings.GitCommand,
				DBPath:       loc.Path,
				DBSource:     loc.Source,
			}
			_, err = exec.LookPath(settings.BuildCommand)
			rep.BuildToolOK = err == nil
			_, err = exec.LookPath(settings.GitCommand)
			rep.GitOK = err == nil

			history, err := store.OpenHistory(cmd.Context(), loc.Path)
			if err != nil {
				rep.DBErr = err.Error()
				rep.Hint = "If this is running in a sandboxed environment, set db_path to a writable location or use --db-path."
			} else {
				defer func() { _ = history.Close() }()
				rep.SchemaVersion, rep.LatestSchema, err = history.SchemaVersion(cmd.Context())
				if err != nil {
					rep.DBErr = err.Error()
				} else {
					rep.DBOK = true
				}
			}

			if jsonMode(cmd) {
				return printJSON(cmd, rep)
			}
			c := output.NewConsole(cmd.OutOrStdout(), 0)
			c.Header("arkham doctor")
			c.Field("Project Root", rep.Root)
			c.Field("Config", rep.ConfigSource)
			c.Field("Build Tool", status(rep.BuildCommand, rep.BuildToolOK))
			c.Field("Git", status(rep.GitCommand, rep.GitOK))
			c.Field("History DB", status(rep.DBPath+" ("+rep.DBSource+")", rep.DBOK))
			if rep.DBErr != "" {
				c.Field("DB Error", rep.DBErr)
			}
			if rep.Hint != "" {
				c.Printf("%s", rep.Hint)
			}
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "Print a JSON envelope")
	return cmd
}

func status(label string, ok bool) string {
	if ok {
		return label + " [ok]"
	}
	return label + " [missing]"
}
