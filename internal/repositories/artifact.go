package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
)

// ArtifactRepository persists cached artifacts in the local sqlite mirror.
//
// Handles upsert-by-remote-id, criteria listing, and soft deletes for rows
// that disappeared from the remote collection.
type ArtifactRepository struct {
	db *sql.DB
}

// NewArtifactRepository creates an ArtifactRepository with the given database connection.
func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

// Upsert inserts or refreshes the cache row for the given remote artifact,
// stamping synced_at and clearing any prior soft delete.
func (r *ArtifactRepository) Upsert(artifact models.Artifact, syncedAt time.Time) error {
	row := &models.CachedArtifact{
		ID:       shared.GenerateID(),
		RemoteID: artifact.ID,
		Artifact: artifact,
		SyncedAt: syncedAt,
	}
	if err := row.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO artifacts (id, remote_id, name, image_url, type, historical_context, created_era,
			discovered_at, discovered_by, present_location, added_by_name, added_by_email, added_by_subject,
			like_count, synced_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
		ON CONFLICT(remote_id) DO UPDATE SET
			name = excluded.name,
			image_url = excluded.image_url,
			type = excluded.type,
			historical_context = excluded.historical_context,
			created_era = excluded.created_era,
			discovered_at = excluded.discovered_at,
			discovered_by = excluded.discovered_by,
			present_location = excluded.present_location,
			added_by_name = excluded.added_by_name,
			added_by_email = excluded.added_by_email,
			added_by_subject = excluded.added_by_subject,
			like_count = excluded.like_count,
			synced_at = excluded.synced_at,
			deleted_at = NULL
	`

	_, err := r.db.Exec(query,
		row.ID,
		row.RemoteID,
		artifact.Name,
		artifact.ImageURL,
		string(artifact.Type),
		artifact.HistoricalContext,
		artifact.CreatedAt,
		artifact.DiscoveredAt,
		artifact.DiscoveredBy,
		artifact.PresentLocation,
		artifact.AddedBy.Name,
		artifact.AddedBy.Email,
		artifact.AddedBy.SubjectID,
		artifact.LikeCount,
		row.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert artifact: %w", err)
	}

	return nil
}

// Get retrieves a cached artifact by its remote ID, excluding soft-deleted rows.
func (r *ArtifactRepository) Get(remoteID string) (*models.CachedArtifact, error) {
	query := selectColumns + ` WHERE remote_id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, remoteID))
}

// List retrieves cached artifacts matching the given criteria, excluding
// soft-deleted rows. Supported criteria: added_by_subject, type, min_likes.
func (r *ArtifactRepository) List(criteria map[string]any) ([]*models.CachedArtifact, error) {
	query := selectColumns + ` WHERE deleted_at IS NULL`
	args := []any{}

	if subject, ok := criteria["added_by_subject"].(string); ok && subject != "" {
		query += " AND added_by_subject = ?"
		args = append(args, subject)
	}
	if artifactType, ok := criteria["type"].(string); ok && artifactType != "" {
		query += " AND type = ?"
		args = append(args, artifactType)
	}
	if minLikes, ok := criteria["min_likes"].(int); ok && minLikes > 0 {
		query += " AND like_count >= ?"
		args = append(args, minLikes)
	}

	query += " ORDER BY like_count DESC, created_era ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*models.CachedArtifact
	for rows.Next() {
		artifact, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, artifact)
	}

	return artifacts, rows.Err()
}

// Delete soft-deletes a cached artifact by its remote ID.
func (r *ArtifactRepository) Delete(remoteID string) error {
	result, err := r.db.Exec(
		"UPDATE artifacts SET deleted_at = ? WHERE remote_id = ? AND deleted_at IS NULL",
		time.Now(), remoteID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("artifact not cached or already deleted: %s", remoteID)
	}

	return nil
}

// MarkStale soft-deletes rows not refreshed since the given time — artifacts
// that disappeared from the remote collection between syncs. Returns the
// number of rows marked.
func (r *ArtifactRepository) MarkStale(syncedBefore time.Time) (int64, error) {
	result, err := r.db.Exec(
		"UPDATE artifacts SET deleted_at = ? WHERE synced_at < ? AND deleted_at IS NULL",
		time.Now(), syncedBefore,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark stale artifacts: %w", err)
	}
	return result.RowsAffected()
}

const selectColumns = `
	SELECT id, remote_id, name, image_url, type, historical_context, created_era,
		discovered_at, discovered_by, present_location, added_by_name, added_by_email,
		added_by_subject, like_count, synced_at, deleted_at
	FROM artifacts`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ArtifactRepository) scan(s rowScanner) (*models.CachedArtifact, error) {
	var row models.CachedArtifact
	var artifactType string
	var deletedAt sql.NullTime

	err := s.Scan(
		&row.ID,
		&row.RemoteID,
		&row.Artifact.Name,
		&row.Artifact.ImageURL,
		&artifactType,
		&row.Artifact.HistoricalContext,
		&row.Artifact.CreatedAt,
		&row.Artifact.DiscoveredAt,
		&row.Artifact.DiscoveredBy,
		&row.Artifact.PresentLocation,
		&row.Artifact.AddedBy.Name,
		&row.Artifact.AddedBy.Email,
		&row.Artifact.AddedBy.SubjectID,
		&row.Artifact.LikeCount,
		&row.SyncedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	row.Artifact.ID = row.RemoteID
	row.Artifact.Type = models.ArtifactType(artifactType)
	if deletedAt.Valid {
		row.DeletedAt = &deletedAt.Time
	}

	return &row, nil
}

func (r *ArtifactRepository) scanOne(row *sql.Row) (*models.CachedArtifact, error) {
	artifact, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("artifact not cached")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifact: %w", err)
	}
	return artifact, nil
}
