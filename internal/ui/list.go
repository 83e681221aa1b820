package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/rashed-dev/relic/internal/models"
)

var _ list.Item = artifactItem{}

// artifactItem wraps [models.Artifact] to implement [list.Item].
type artifactItem struct {
	artifact models.Artifact
}

func (i artifactItem) FilterValue() string { return i.artifact.Name }
func (i artifactItem) Title() string       { return i.artifact.Name }
func (i artifactItem) Description() string {
	desc := fmt.Sprintf("%s • %d likes", i.artifact.Type, i.artifact.LikeCount)
	if i.artifact.PresentLocation != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.artifact.PresentLocation)
	}
	return desc
}
