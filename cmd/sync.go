package main

import (
	"context"
	"fmt"

	"github.com/rashed-dev/relic/internal/repositories"
	"github.com/rashed-dev/relic/internal/shared"
	"github.com/rashed-dev/relic/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncRun pulls the remote collection into the local sqlite cache.
func (r *Runner) SyncRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfigAt(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	engine := tasks.NewSyncEngine(
		r.api,
		repositories.NewArtifactRepository(db),
		repositories.NewSyncRunRepository(db),
	)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if update.Total > 0 {
				r.logger.Infof("%s (%d/%d) %s", update.Phase, update.Step, update.Total, update.Message)
			} else {
				r.logger.Infof("%s %s", update.Phase, update.Message)
			}
		}
	}()

	opts := tasks.SyncOpts{
		RateLimit:      cmd.Float("rate"),
		IncludeDetails: cmd.Bool("details"),
	}

	result, err := engine.Run(ctx, opts, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	r.writePlainHeader("Sync Complete")
	r.writePlain("Fetched: %d\n", result.Run.Fetched)
	r.writePlain("Cached: %d\n", result.Run.Cached)
	r.writePlain("Failed: %d\n", result.Run.Failed)
	r.writePlain("Marked stale: %d\n", result.MarkedStale)

	if len(result.Errors) > 0 {
		r.writePlainln("Errors:")
		for _, syncErr := range result.Errors {
			r.writePlain("  • %v\n", syncErr)
		}
	}

	return nil
}

// SyncStatus shows the most recent sync run.
func (r *Runner) SyncStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfigAt(cmd.String("config"))
	if err != nil {
		return err
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	run, err := repositories.NewSyncRunRepository(db).Latest()
	if err != nil {
		return fmt.Errorf("failed to read sync history: %w", err)
	}
	if run == nil {
		return r.writePlain("No sync runs recorded. Run 'relic sync run' first.\n")
	}

	r.writePlainHeader("Last Sync Run")
	r.writePlain("Started: %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		r.writePlain("Finished: %s\n", run.FinishedAt.Format("2006-01-02 15:04:05"))
	} else {
		r.writePlain("Finished: (in progress or interrupted)\n")
	}
	r.writePlain("Fetched: %d • Cached: %d • Failed: %d\n", run.Fetched, run.Cached, run.Failed)
	return nil
}
