// package formatter provides functions to export artifact listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rashed-dev/relic/internal/models"
)

// ExportToCSV converts an artifact listing to CSV with columns:
// ID, Name, Type, Created, Discovered, DiscoveredBy, Location, AddedBy, Likes
func ExportToCSV(artifacts []models.Artifact) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Type", "Created", "Discovered", "DiscoveredBy", "Location", "AddedBy", "Likes"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, artifact := range artifacts {
		record := []string{
			artifact.ID,
			artifact.Name,
			string(artifact.Type),
			artifact.CreatedAt,
			artifact.DiscoveredAt,
			artifact.DiscoveredBy,
			artifact.PresentLocation,
			artifact.AddedBy.Name,
			strconv.Itoa(artifact.LikeCount),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an artifact listing to a Markdown document with a
// heading per artifact.
func ExportToMarkdown(title string, artifacts []models.Artifact) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Artifacts**: %d\n\n", len(artifacts)))

	for _, artifact := range artifacts {
		buf.WriteString(fmt.Sprintf("## %s\n\n", artifact.Name))
		if artifact.ImageURL != "" {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", artifact.Name, artifact.ImageURL))
		}
		buf.WriteString(fmt.Sprintf("**Type**: %s\n", artifact.Type))
		if artifact.CreatedAt != "" {
			buf.WriteString(fmt.Sprintf("**Created**: %s\n", artifact.CreatedAt))
		}
		if artifact.DiscoveredAt != "" {
			buf.WriteString(fmt.Sprintf("**Discovered**: %s by %s\n", artifact.DiscoveredAt, artifact.DiscoveredBy))
		}
		if artifact.PresentLocation != "" {
			buf.WriteString(fmt.Sprintf("**Location**: %s\n", artifact.PresentLocation))
		}
		buf.WriteString(fmt.Sprintf("**Likes**: %d\n\n", artifact.LikeCount))
		if artifact.HistoricalContext != "" {
			buf.WriteString(artifact.HistoricalContext + "\n\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts an artifact listing to plain text format
func ExportToText(artifacts []models.Artifact) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Artifacts: %d\n\n", len(artifacts)))

	for i, artifact := range artifacts {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] — %d likes\n", i+1, artifact.Name, artifact.Type, artifact.LikeCount))
	}

	return buf.Bytes(), nil
}

// WriteCSVExport exports an artifact listing to {base}.csv with an
// accompanying {base}_meta.json counting the rows.
//
// Defaults to "artifacts" as the base filename.
func WriteCSVExport(artifacts []models.Artifact, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = "artifacts"
	}

	csvData, err := ExportToCSV(artifacts)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	outFile := baseFilepath + ".csv"
	if err := os.WriteFile(outFile, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	meta, err := json.MarshalIndent(map[string]any{"count": len(artifacts)}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to generate metadata JSON: %w", err)
	}
	if err := os.WriteFile(baseFilepath+"_meta.json", meta, 0644); err != nil {
		return "", fmt.Errorf("failed to write metadata file: %w", err)
	}

	return outFile, nil
}
