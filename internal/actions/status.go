package actions

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dotcommander/arkham/internal/artifact"
	"github.com/dotcommander/arkham/internal/models"
)

// StatusResult is what app-status reports.
type StatusResult struct {
	models.ProjectVersionState
	Artifact      string                `json:"artifact,omitempty"`
	Embedded      *artifact.Metadata    `json:"embedded,omitempty"`
	Digest        string                `json:"digest,omitempty"`
	LatestPublish *models.PublishRecord `json:"latest_publish,omitempty"`
}

// AppStatus reads the version-info file and inspects the artifact behind the
// stable symlink. A missing artifact is not an error; a missing info file is.
func AppStatus(ctx context.Context, env Env) (*StatusResult, error) {
	state, err := env.infoStore().MustRead()
	if err != nil {
		return nil, err
	}
	res := &StatusResult{ProjectVersionState: *state}

	mgr, err := artifact.NewManager(env.Workspace, state.ProjectName)
	if err != nil {
		return nil, err
	}
	target, err := mgr.Current()
	switch {
	case err == nil:
		res.Artifact = filepath.Base(target)
		if meta, ok, err := artifact.ReadMetadata(target); err != nil {
			slog.Warn("read embedded metadata", "artifact", target, "error", err)
		} else if ok {
			res.Embedded = &meta
		}
		if digest, err := artifact.Digest(target); err == nil {
			res.Digest = digest
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		slog.Warn("resolve current artifact", "error", err)
	}

	if env.History != nil {
		rec, err := env.History.Latest(ctx, env.Workspace.Root)
		if err != nil {
			slog.Warn("publish history unavailable", "error", err)
		}
		res.LatestPublish = rec
	}
	return res, nil
}

// RenderStatus prints an app-status result.
func RenderStatus(env Env, res *StatusResult) {
	c := env.Console
	c.Header("Application Status")
	c.Field("App/Executable Name", res.ProjectName)
	c.Field("App Version", res.CurrentVersion)
	c.Field("App Root Folder", res.ProjectRoot)
	if res.Artifact == "" {
		return
	}
	c.Separator()
	c.Field("Current Artifact", res.Artifact)
	if res.Embedded != nil {
		c.Field("Embedded Version", res.Embedded.Version)
		c.Field("Build Date", res.Embedded.BuildDate)
	}
	if res.Digest != "" {
		c.Field("BLAKE3", res.Digest)
	}
	if res.LatestPublish != nil {
		c.Field("Last Published", res.LatestPublish.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	}
}

// History returns the publish history for the workspace, newest first.
func History(ctx context.Context, env Env, limit int) ([]*models.PublishRecord, error) {
	if env.History == nil {
		return nil, errors.New("publish history database is not available")
	}
	return env.History.List(ctx, env.Workspace.Root, limit)
}

// RenderHistory prints publish records as a table.
func RenderHistory(env Env, recs []*models.PublishRecord) {
	c := env.Console
	if len(recs) == 0 {
		c.Printf("No publishes recorded for %s", env.Workspace.Root)
		return
	}
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		digest := r.Digest
		if len(digest) > 12 {
			digest = digest[:12]
		}
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Version,
			r.Artifact,
			digest,
			strconv.Itoa(r.Archived),
			strconv.Itoa(r.Pruned),
		})
	}
	c.Header("Publish History")
	c.Table([]string{"Published", "Version", "Artifact", "Digest", "Archived", "Pruned"}, rows)
}
