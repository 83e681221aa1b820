package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rashed-dev/relic/internal/shared"
)

// SyncRun records one pull of the remote collection into the local cache.
type SyncRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Fetched    int
	Cached     int
	Failed     int
}

// SyncRunRepository persists sync run bookkeeping rows.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a SyncRunRepository with the given database connection.
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Begin inserts a new in-progress sync run and returns it.
func (r *SyncRunRepository) Begin() (*SyncRun, error) {
	run := &SyncRun{
		ID:        shared.GenerateID(),
		StartedAt: time.Now(),
	}

	_, err := r.db.Exec(
		"INSERT INTO sync_runs (id, started_at) VALUES (?, ?)",
		run.ID, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sync run: %w", err)
	}

	return run, nil
}

// Finish records the run's counters and completion time.
func (r *SyncRunRepository) Finish(run *SyncRun) error {
	now := time.Now()
	run.FinishedAt = &now

	result, err := r.db.Exec(
		"UPDATE sync_runs SET finished_at = ?, fetched = ?, cached = ?, failed = ? WHERE id = ?",
		now, run.Fetched, run.Cached, run.Failed, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish sync run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("sync run not found: %s", run.ID)
	}

	return nil
}

// Latest returns the most recently started sync run, or nil when none exist.
func (r *SyncRunRepository) Latest() (*SyncRun, error) {
	var run SyncRun
	var finishedAt sql.NullTime

	err := r.db.QueryRow(
		"SELECT id, started_at, finished_at, fetched, cached, failed FROM sync_runs ORDER BY started_at DESC LIMIT 1",
	).Scan(&run.ID, &run.StartedAt, &finishedAt, &run.Fetched, &run.Cached, &run.Failed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load sync run: %w", err)
	}

	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}
