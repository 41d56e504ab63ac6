package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dotcommander/arkham/internal/models"
)

// timeLayout is fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Record inserts a publish record. ID and CreatedAt are filled in when empty.
func (h *History) Record(ctx context.Context, rec models.PublishRecord) (*models.PublishRecord, error) {
	if rec.ProjectRoot == "" {
		return nil, errors.New("project root is required")
	}
	if rec.ProjectName == "" {
		return nil, errors.New("project name is required")
	}
	if rec.Version == "" {
		return nil, errors.New("version is required")
	}
	if rec.ID == "" {
		rec.ID = "publish_" + uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.CreatedAt = rec.CreatedAt.UTC()

	err := inTx(ctx, h.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO publishes (id, project_root, project_name, version, artifact, digest, archived, pruned, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, rec.ID, rec.ProjectRoot, rec.ProjectName, rec.Version, rec.Artifact, rec.Digest,
			rec.Archived, rec.Pruned, rec.CreatedAt.Format(timeLayout))
		if err != nil {
			return fmt.Errorf("failed to insert publish record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns publish records for a project root, newest first.
func (h *History) List(ctx context.Context, projectRoot string, limit int) ([]*models.PublishRecord, error) {
	if projectRoot == "" {
		return nil, errors.New("project root is required")
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}

	var out []*models.PublishRecord
	err := retryBusy(ctx, func() error {
		rows, err := h.db.QueryContext(ctx, `
			SELECT id, project_root, project_name, version, artifact, digest, archived, pruned, created_at
			FROM publishes
			WHERE project_root = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		`, projectRoot, limit)
		if err != nil {
			return fmt.Errorf("failed to list publishes: %w", err)
		}
		defer func() { _ = rows.Close() }()

		out = make([]*models.PublishRecord, 0)
		for rows.Next() {
			rec, err := scanPublish(rows)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Latest returns the newest record for a project root, or nil.
func (h *History) Latest(ctx context.Context, projectRoot string) (*models.PublishRecord, error) {
	recs, err := h.List(ctx, projectRoot, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

func scanPublish(rows *sql.Rows) (*models.PublishRecord, error) {
	var (
		rec     models.PublishRecord
		created string
	)
	if err := rows.Scan(&rec.ID, &rec.ProjectRoot, &rec.ProjectName, &rec.Version, &rec.Artifact,
		&rec.Digest, &rec.Archived, &rec.Pruned, &created); err != nil {
		return nil, fmt.Errorf("failed to scan publish: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return nil, fmt.Errorf("failed to parse publish time %q: %w", created, err)
	}
	rec.CreatedAt = t
	return &rec, nil
}
