package main

import (
	"context"
	"fmt"

	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
	"github.com/rashed-dev/relic/internal/store"
	"github.com/urfave/cli/v3"
)

// ArtifactsList lists the full artifact collection.
func (r *Runner) ArtifactsList(ctx context.Context, cmd *cli.Command) error {
	return r.loadAndRender(ctx, cmd, store.Query{Kind: store.ViewAll}, "All Artifacts")
}

// ArtifactsSearch lists artifacts whose name contains the given term.
func (r *Runner) ArtifactsSearch(ctx context.Context, cmd *cli.Command) error {
	term := cmd.StringArg("term")
	if term == "" {
		return fmt.Errorf("%w: search term is required", shared.ErrMissingArgument)
	}

	r.logger.Infof("searching artifacts for %q", term)

	query := store.Query{Kind: store.ViewSearch, Term: term}
	return r.loadAndRender(ctx, cmd, query, fmt.Sprintf("Artifacts matching '%s'", term))
}

// ArtifactsGet shows a single artifact by ID.
func (r *Runner) ArtifactsGet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artifact ID is required", shared.ErrMissingArgument)
	}

	artifact, err := r.api.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch artifact: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(artifact, cmd.Bool("pretty"))
	}

	r.writePlainHeader(artifact.Name)
	r.writePlain("ID: %s\n", artifact.ID)
	r.writePlain("Type: %s\n", artifact.Type)
	r.writePlain("Created: %s\n", artifact.CreatedAt)
	r.writePlain("Discovered: %s by %s\n", artifact.DiscoveredAt, artifact.DiscoveredBy)
	r.writePlain("Location: %s\n", artifact.PresentLocation)
	r.writePlain("Added by: %s\n", artifact.AddedBy.Name)
	r.writePlain("Likes: %d\n", artifact.LikeCount)
	if artifact.HistoricalContext != "" {
		r.writePlainln("%s", artifact.HistoricalContext)
	}
	return nil
}

// ArtifactsAdd creates a new artifact owned by the signed-in user.
func (r *Runner) ArtifactsAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAccess("artifacts add"); err != nil {
		return err
	}

	draft := models.ArtifactDraft{
		Name:              cmd.String("name"),
		ImageURL:          cmd.String("image"),
		Type:              models.ArtifactType(cmd.String("type")),
		HistoricalContext: cmd.String("context"),
		CreatedAt:         cmd.String("created"),
		DiscoveredAt:      cmd.String("discovered"),
		DiscoveredBy:      cmd.String("discovered-by"),
		PresentLocation:   cmd.String("location"),
	}

	created, err := r.resources.SubmitCreate(ctx, draft)
	if err != nil {
		return fmt.Errorf("failed to add artifact: %w", err)
	}

	r.logger.Infof("artifact created: %v", created.ID)
	r.writePlain("✓ Artifact added: %s\n", created.Name)
	return r.writePlain("ID: %s\n", created.ID)
}

// ArtifactsUpdate overlays the given flags onto an owned artifact and saves it.
func (r *Runner) ArtifactsUpdate(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artifact ID is required", shared.ErrMissingArgument)
	}

	if err := r.requireAccess("artifacts update"); err != nil {
		return err
	}

	current, err := r.api.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch artifact: %w", err)
	}

	patch := models.ArtifactDraft{
		Name:              current.Name,
		ImageURL:          current.ImageURL,
		Type:              current.Type,
		HistoricalContext: current.HistoricalContext,
		CreatedAt:         current.CreatedAt,
		DiscoveredAt:      current.DiscoveredAt,
		DiscoveredBy:      current.DiscoveredBy,
		PresentLocation:   current.PresentLocation,
	}

	overlay := map[string]*string{
		"context":       &patch.HistoricalContext,
		"created":       &patch.CreatedAt,
		"discovered":    &patch.DiscoveredAt,
		"discovered-by": &patch.DiscoveredBy,
		"image":         &patch.ImageURL,
		"location":      &patch.PresentLocation,
		"name":          &patch.Name,
	}
	for flag, field := range overlay {
		if cmd.IsSet(flag) {
			*field = cmd.String(flag)
		}
	}
	if cmd.IsSet("type") {
		patch.Type = models.ArtifactType(cmd.String("type"))
	}

	updated, err := r.resources.SubmitUpdate(ctx, id, patch)
	if err != nil {
		return fmt.Errorf("failed to update artifact: %w", err)
	}

	return r.writePlain("✓ Artifact updated: %s\n", updated.Name)
}

// ArtifactsDelete removes an owned artifact from the collection.
func (r *Runner) ArtifactsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artifact ID is required", shared.ErrMissingArgument)
	}

	if err := r.requireAccess("artifacts delete"); err != nil {
		return err
	}

	if err := r.resources.SubmitDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}

	return r.writePlain("✓ Artifact deleted\n")
}

// ArtifactsLike records a like for the signed-in user.
func (r *Runner) ArtifactsLike(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: artifact ID is required", shared.ErrMissingArgument)
	}

	if err := r.requireAccess("artifacts like"); err != nil {
		return err
	}

	likes, err := r.resources.SubmitLike(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to like artifact: %w", err)
	}

	return r.writePlain("✓ Liked (%d total)\n", likes)
}

// ArtifactsMine lists artifacts added by the signed-in user.
func (r *Runner) ArtifactsMine(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAccess("artifacts mine"); err != nil {
		return err
	}
	return r.loadAndRender(ctx, cmd, store.Query{Kind: store.ViewMine}, "My Artifacts")
}

// ArtifactsLiked lists artifacts the signed-in user has liked.
func (r *Runner) ArtifactsLiked(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireAccess("artifacts liked"); err != nil {
		return err
	}
	return r.loadAndRender(ctx, cmd, store.Query{Kind: store.ViewLiked}, "Liked Artifacts")
}

// ArtifactsTop lists the most liked artifacts.
func (r *Runner) ArtifactsTop(ctx context.Context, cmd *cli.Command) error {
	query := store.Query{Kind: store.ViewTop, Limit: int(cmd.Int("limit"))}
	return r.loadAndRender(ctx, cmd, query, "Top Liked Artifacts")
}

func (r *Runner) loadAndRender(ctx context.Context, cmd *cli.Command, query store.Query, title string) error {
	if r.resources == nil {
		return fmt.Errorf("%w: resource store not initialized", shared.ErrMissingConfig)
	}

	if err := r.resources.Load(ctx, query); err != nil {
		return fmt.Errorf("failed to load artifacts: %w", err)
	}

	artifacts := r.resources.Artifacts()

	if cmd.Bool("json") {
		return r.writeJSON(artifacts, cmd.Bool("pretty"))
	}

	r.writePlainHeader(title)
	if len(artifacts) == 0 {
		return r.writePlain("No artifacts found.\n")
	}

	for i, artifact := range artifacts {
		r.writePlain("%d. %s (%s)\n", i+1, artifact.Name, artifact.Type)
		r.writePlain("   ID: %s • Likes: %d • %s\n", artifact.ID, artifact.LikeCount, artifact.PresentLocation)
	}
	return r.writePlain("\nTotal: %d artifacts\n", len(artifacts))
}
