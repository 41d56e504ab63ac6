package actions

import (
	"github.com/dotcommander/arkham/internal/models"
	"github.com/dotcommander/arkham/internal/version"
)

// ArchivesResult is the version log as listed by archives and archive-entry.
// Found is false when no log file exists yet.
type ArchivesResult struct {
	Found   bool                     `json:"found"`
	Entries []models.VersionLogEntry `json:"entries"`
}

// Archives returns every version log row in insertion order. A log holding
// only its header counts as not found.
func Archives(env Env) (*ArchivesResult, error) {
	log := env.versionLog()
	if !log.Exists() {
		return &ArchivesResult{}, nil
	}
	entries, err := log.ListAll()
	if err != nil {
		return nil, err
	}
	return &ArchivesResult{Found: len(entries) > 0, Entries: entries}, nil
}

// ArchiveEntry returns the version log rows for the requested versions.
func ArchiveEntry(env Env, versions []string) (*ArchivesResult, error) {
	if len(versions) == 0 {
		return nil, &models.NoVersionSpecifiedError{}
	}
	log := env.versionLog()
	if !log.Exists() {
		// Malformed versions are still reported without a log.
		var errs []error
		for _, v := range versions {
			if err := version.Validate(v); err != nil {
				errs = append(errs, err)
			}
		}
		if err := models.Aggregate(errs); err != nil {
			return nil, err
		}
		return &ArchivesResult{}, nil
	}
	entries, err := log.Lookup(versions)
	if err != nil {
		return nil, err
	}
	return &ArchivesResult{Found: true, Entries: entries}, nil
}

// RenderArchives prints a result as a version history table.
func RenderArchives(env Env, title string, res *ArchivesResult) {
	c := env.Console
	if !res.Found {
		c.Printf("No version logs found!")
		return
	}
	rows := make([][]string, 0, len(res.Entries))
	for _, e := range res.Entries {
		rows = append(rows, []string{e.Version, e.LogMessage, e.BuildDate, e.Builder, e.ShortCommit()})
	}
	c.Header(title)
	c.Table([]string{"Version", "Log", "Build Date", "Built By", "Commit"}, rows)
}
