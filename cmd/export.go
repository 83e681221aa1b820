package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rashed-dev/relic/internal/formatter"
	"github.com/rashed-dev/relic/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes the remote collection to a CSV, Markdown, or text file.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	basePath := cmd.String("output")
	format := cmd.String("format")

	artifacts, err := r.api.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch artifacts: %w", err)
	}

	r.logger.Infof("exporting %d artifacts as %s", len(artifacts), format)

	switch format {
	case "csv":
		path, err := formatter.WriteCSVExport(artifacts, basePath)
		if err != nil {
			return fmt.Errorf("failed to write CSV export: %w", err)
		}
		return r.writePlain("✓ Exported %d artifacts to %s\n", len(artifacts), path)

	case "markdown", "md":
		data, err := formatter.ExportToMarkdown("Artifact Collection", artifacts)
		if err != nil {
			return fmt.Errorf("failed to render markdown: %w", err)
		}
		path := basePath + ".md"
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return r.writePlain("✓ Exported %d artifacts to %s\n", len(artifacts), path)

	case "text", "txt":
		data, err := formatter.ExportToText(artifacts)
		if err != nil {
			return fmt.Errorf("failed to render text: %w", err)
		}
		path := basePath + ".txt"
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return r.writePlain("✓ Exported %d artifacts to %s\n", len(artifacts), path)

	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}
