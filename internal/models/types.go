package models

import "time"

// ProjectVersionState is the content of the version-info file: the single
// source of truth for the version a project is currently on.
type ProjectVersionState struct {
	ProjectName    string `json:"project_name"`
	CurrentVersion string `json:"current_version"`
	ProjectRoot    string `json:"project_root"`
}

// VersionLogEntry is one row of the version log.
type VersionLogEntry struct {
	Version    string `json:"version"`
	LogMessage string `json:"log_message"`
	BuildDate  string `json:"build_date"`
	Builder    string `json:"builder"`
	CommitID   string `json:"commit_id"`
}

// ShortCommit truncates the commit id for display. The stored value is
// never shortened.
func (e VersionLogEntry) ShortCommit() string {
	if len(e.CommitID) > 8 {
		return e.CommitID[:8] + "..."
	}
	return e.CommitID
}

// PublishRecord is one row of the publish history DB.
type PublishRecord struct {
	ID          string    `json:"id"`
	ProjectRoot string    `json:"project_root"`
	ProjectName string    `json:"project_name"`
	Version     string    `json:"version"`
	Artifact    string    `json:"artifact"`
	Digest      string    `json:"digest"`
	Archived    int       `json:"archived"`
	Pruned      int       `json:"pruned"`
	CreatedAt   time.Time `json:"created_at"`
}
