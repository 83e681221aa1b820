package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/repositories"
	"golang.org/x/time/rate"
)

// CollectionClient is the remote surface the sync engine reads from.
// *api.Client implements it.
type CollectionClient interface {
	List(ctx context.Context) ([]models.Artifact, error)
	Get(ctx context.Context, id string) (*models.Artifact, error)
}

// SyncOpts configures a sync run.
type SyncOpts struct {
	// RateLimit caps detail fetches per second; defaults to 5.
	RateLimit float64
	// IncludeDetails refetches each artifact individually so the cache
	// carries the full likedBy membership, not just the listing shape.
	IncludeDetails bool
}

// SyncResult contains all data from a completed sync run.
type SyncResult struct {
	Run         *repositories.SyncRun
	MarkedStale int64
	Errors      []error
}

// SyncEngine pulls the remote artifact collection into the local cache.
type SyncEngine struct {
	client    CollectionClient
	artifacts *repositories.ArtifactRepository
	runs      *repositories.SyncRunRepository
}

// NewSyncEngine creates a SyncEngine over the given client and repositories.
func NewSyncEngine(client CollectionClient, artifacts *repositories.ArtifactRepository, runs *repositories.SyncRunRepository) *SyncEngine {
	return &SyncEngine{client: client, artifacts: artifacts, runs: runs}
}

// Run executes one sync: fetch the collection, upsert every artifact, and
// soft-delete rows that disappeared remotely. Progress updates are sent on
// prog (may be nil) without blocking.
func (e *SyncEngine) Run(ctx context.Context, opts SyncOpts, prog chan<- ProgressUpdate) (*SyncResult, error) {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	run, err := e.runs.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin sync run: %w", err)
	}

	result := &SyncResult{Run: run}

	e.sendProgress(prog, fetchRemoteUpdate())

	listing, err := e.client.List(ctx)
	if err != nil {
		run.Failed++
		if finishErr := e.runs.Finish(run); finishErr != nil {
			result.Errors = append(result.Errors, finishErr)
		}
		return result, fmt.Errorf("failed to fetch collection: %w", err)
	}
	run.Fetched = len(listing)

	// Stamp all rows from this run with a single time so MarkStale has a
	// clean cutoff.
	syncedAt := time.Now()
	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	for i, artifact := range listing {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, ctx.Err())
			if finishErr := e.runs.Finish(run); finishErr != nil {
				result.Errors = append(result.Errors, finishErr)
			}
			return result, ctx.Err()
		default:
		}

		if opts.IncludeDetails {
			if err := limiter.Wait(ctx); err != nil {
				result.Errors = append(result.Errors, err)
				break
			}
			e.sendProgress(prog, fetchDetailUpdate(i+1, len(listing), artifact.Name))
			detail, err := e.client.Get(ctx, artifact.ID)
			if err != nil {
				run.Failed++
				result.Errors = append(result.Errors, fmt.Errorf("detail fetch for %s: %w", artifact.ID, err))
			} else {
				artifact = *detail
			}
		}

		e.sendProgress(prog, cacheWriteUpdate(i+1, len(listing), artifact.Name))
		if err := e.artifacts.Upsert(artifact, syncedAt); err != nil {
			run.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("cache write for %s: %w", artifact.ID, err))
			continue
		}
		run.Cached++
	}

	marked, err := e.artifacts.MarkStale(syncedAt)
	if err != nil {
		result.Errors = append(result.Errors, err)
	}
	result.MarkedStale = marked
	e.sendProgress(prog, pruneUpdate(marked))

	if err := e.runs.Finish(run); err != nil {
		result.Errors = append(result.Errors, err)
	}

	e.sendProgress(prog, completeUpdate(run.Cached, run.Failed))
	return result, nil
}

// sendProgress delivers an update without blocking a slow or absent consumer.
func (e *SyncEngine) sendProgress(ch chan<- ProgressUpdate, update ProgressUpdate) {
	if ch == nil {
		return
	}
	select {
	case ch <- update:
	default:
	}
}
