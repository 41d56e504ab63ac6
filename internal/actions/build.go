package actions

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/dotcommander/arkham/internal/artifact"
	"github.com/dotcommander/arkham/internal/build"
	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/store"
	"github.com/dotcommander/arkham/internal/version"
)

// BumpNone publishes the current version without asking. An empty
// BuildOptions.Bump asks interactively; anything else is a version.ParseKind
// spelling.
const BumpNone = "none"

// BuildOptions parameterizes BuildAndUpdate.
type BuildOptions struct {
	ExtraArgs []string
	Bump      string
	// Name and Initial answer the first-run prompts.
	Name    string
	Initial string
}

// BuildOutcome reports what a build-and-update run changed.
type BuildOutcome struct {
	State           models.ProjectVersionState `json:"state"`
	PreviousVersion string                     `json:"previous_version"`
	Bumped          bool                       `json:"bumped"`
	Publish         *artifact.PublishResult    `json:"publish"`
	Record          *models.PublishRecord      `json:"record,omitempty"`
	Build           build.Result               `json:"-"`
}

// BuildAndUpdate runs the build tool and, on success, optionally bumps the
// version, rewrites the version-info file and publishes the artifact.
func BuildAndUpdate(ctx context.Context, env Env, runner *build.Runner, opts BuildOptions) (*BuildOutcome, error) {
	c := env.Console
	info := env.infoStore()

	state, err := info.Read()
	if err != nil {
		return nil, err
	}
	if state != nil {
		c.Printf("Found Existing Version(s) - fetching..")
		c.Pause()
		c.Header(fmt.Sprintf("Project Name: %s\nCurrent Version: %s", state.ProjectName, state.CurrentVersion))
	} else {
		state, err = firstRun(env, opts)
		if err != nil {
			return nil, err
		}
		if err := info.Write(*state); err != nil {
			return nil, err
		}
		slog.Info("version info created", "project", state.ProjectName, "version", state.CurrentVersion)
	}

	res, err := runner.Build(ctx, opts.ExtraArgs)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		c.Header("Build failed! Check the log file")
		return nil, &models.BuildError{Cause: "Build failed"}
	}
	c.Header(fmt.Sprintf("%s: Got built successfully!", state.ProjectName))

	out := &BuildOutcome{PreviousVersion: state.CurrentVersion, Build: res}
	next, bumped, err := nextVersion(env, state.CurrentVersion, opts.Bump)
	if err != nil {
		return nil, err
	}
	if bumped {
		state.CurrentVersion = next
		if err := info.Write(*state); err != nil {
			return nil, err
		}
	}
	out.State = *state
	out.Bumped = bumped

	mgr, err := artifact.NewManager(env.Workspace, state.ProjectName)
	if err != nil {
		return nil, err
	}
	pub, err := mgr.Publish(state.CurrentVersion)
	if err != nil {
		return nil, err
	}
	out.Publish = pub

	if bumped {
		c.Header(fmt.Sprintf("Version Successfully Updated from %s to %s", out.PreviousVersion, next))
	} else {
		c.Header(fmt.Sprintf("Version unchanged: %s", state.CurrentVersion))
	}

	out.Record = recordPublish(ctx, env, *state, pub)
	return out, nil
}

// firstRun collects the project name and starting version, from opts when
// given and interactively otherwise.
func firstRun(env Env, opts BuildOptions) (*models.ProjectVersionState, error) {
	c := env.Console
	name := strings.TrimSpace(opts.Name)
	initial := strings.TrimSpace(opts.Initial)
	if name == "" || initial == "" {
		c.Printf("No Versioning Found! Please enter details manually: ")
	}

	var err error
	if name == "" {
		name, err = env.Prompter.Ask("Enter Executable name (Eg. CookieUFS): ", "")
		if err != nil {
			return nil, err
		}
	}
	if name == "" || strings.ContainsRune(name, filepath.Separator) || store.CheckInfoValue("project_name", name) != nil {
		return nil, &models.BuildError{Cause: fmt.Sprintf("invalid executable name %q", name)}
	}

	if initial == "" {
		initial, err = env.Prompter.Ask("Enter the current version (Eg. 3.53): ", "")
		if err != nil {
			return nil, err
		}
	}
	id, err := version.Parse(initial)
	if err != nil {
		return nil, err
	}

	return &models.ProjectVersionState{
		ProjectName:    name,
		CurrentVersion: id.String(),
		ProjectRoot:    env.Workspace.Root,
	}, nil
}

// nextVersion decides the version to publish. bump is "", BumpNone or a
// version.ParseKind spelling.
func nextVersion(env Env, current, bump string) (string, bool, error) {
	bump = strings.TrimSpace(bump)
	if bump == "" {
		yes, err := env.Prompter.Confirm("Do you want to update the version? (yes [y] | no [n]) = ")
		if err != nil {
			return "", false, err
		}
		if !yes {
			return current, false, nil
		}
		bump, err = env.Prompter.Ask("Is this a Major or Minor Update? (MAJOR [1] | MINOR [0]) = ", "")
		if err != nil {
			return "", false, err
		}
	}
	if strings.EqualFold(bump, BumpNone) {
		return current, false, nil
	}
	next, err := version.IncrementText(current, bump)
	if err != nil {
		return "", false, err
	}
	return next, true, nil
}

// recordPublish stores the publish in the history DB. Failures are logged and
// never fail the build.
func recordPublish(ctx context.Context, env Env, state models.ProjectVersionState, pub *artifact.PublishResult) *models.PublishRecord {
	if env.History == nil {
		return nil
	}
	rec, err := env.History.Record(ctx, models.PublishRecord{
		ProjectRoot: env.Workspace.Root,
		ProjectName: state.ProjectName,
		Version:     pub.Version,
		Artifact:    filepath.Base(pub.Artifact),
		Digest:      pub.Digest,
		Archived:    len(pub.Archived),
		Pruned:      len(pub.Pruned),
	})
	if err != nil {
		slog.Warn("publish history unavailable", "error", err)
		return nil
	}
	return rec
}

// Clean runs the build tool's clean target.
func Clean(ctx context.Context, env Env, runner *build.Runner) error {
	if err := runner.Clean(ctx); err != nil {
		return err
	}
	env.Console.Header("Project cleaned")
	return nil
}
