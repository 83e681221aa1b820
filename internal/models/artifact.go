package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ArtifactType enumerates the artifact categories the remote API accepts.
type ArtifactType string

const (
	TypeTools             ArtifactType = "Tools"
	TypeWeapons           ArtifactType = "Weapons"
	TypeDocuments         ArtifactType = "Documents"
	TypeWritings          ArtifactType = "Writings"
	TypeArtwork           ArtifactType = "Artwork"
	TypeCeremonialObjects ArtifactType = "Ceremonial Objects"
	TypeArchitecture      ArtifactType = "Architecture"
	TypeCoins             ArtifactType = "Coins"
	TypeClothing          ArtifactType = "Clothing"
)

// ArtifactTypes lists every valid artifact type in display order.
func ArtifactTypes() []ArtifactType {
	return []ArtifactType{
		TypeTools, TypeWeapons, TypeDocuments, TypeWritings, TypeArtwork,
		TypeCeremonialObjects, TypeArchitecture, TypeCoins, TypeClothing,
	}
}

// Valid reports whether t is one of the accepted artifact types.
func (t ArtifactType) Valid() bool {
	for _, known := range ArtifactTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Contributor is the addedBy stamp the server attaches to an artifact on create.
type Contributor struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	SubjectID string `json:"uid"`
}

// Artifact represents an artifact record held by the remote store of record.
//
// LikedBy is the authoritative idempotency guard for likes: a subject appears
// at most once, and LikeCount equals len(LikedBy).
type Artifact struct {
	ID                string       `json:"_id"`
	Name              string       `json:"name"`
	ImageURL          string       `json:"image"`
	Type              ArtifactType `json:"type"`
	HistoricalContext string       `json:"historicalContext"`
	CreatedAt         string       `json:"createdAt"`
	DiscoveredAt      string       `json:"discoveredAt"`
	DiscoveredBy      string       `json:"discoveredBy"`
	PresentLocation   string       `json:"presentLocation"`
	AddedBy           Contributor  `json:"addedBy"`
	LikeCount         int          `json:"likes"`
	LikedBy           []string     `json:"likedBy,omitempty"`
}

// LikedBySubject reports whether the given subject already likes this artifact.
func (a *Artifact) LikedBySubject(subjectID string) bool {
	for _, uid := range a.LikedBy {
		if uid == subjectID {
			return true
		}
	}
	return false
}

// OwnedBy reports whether the given subject created this artifact.
func (a *Artifact) OwnedBy(subjectID string) bool {
	return subjectID != "" && a.AddedBy.SubjectID == subjectID
}

// ArtifactDraft is the transient, client-only form of an artifact during
// create/update. Discarded on submit success or cancel.
type ArtifactDraft struct {
	Name              string       `json:"name"`
	ImageURL          string       `json:"image"`
	Type              ArtifactType `json:"type"`
	HistoricalContext string       `json:"historicalContext"`
	CreatedAt         string       `json:"createdAt"`
	DiscoveredAt      string       `json:"discoveredAt"`
	DiscoveredBy      string       `json:"discoveredBy"`
	PresentLocation   string       `json:"presentLocation"`
}

// Validate checks the draft's data before it is sent to the remote API.
func (d *ArtifactDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("artifact name is required")
	}

	if !d.Type.Valid() {
		return fmt.Errorf("invalid artifact type: %q", d.Type)
	}

	if d.ImageURL != "" {
		u, err := url.Parse(d.ImageURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("image must be an http(s) URL: %q", d.ImageURL)
		}
	}

	return nil
}

// CachedArtifact is a row in the local sqlite mirror of the remote collection.
//
// The cache is a read-only mirror; SyncedAt records when the row was last
// refreshed from the remote API and DeletedAt soft-deletes rows that
// disappeared remotely.
type CachedArtifact struct {
	ID        string
	RemoteID  string
	Artifact  Artifact
	SyncedAt  time.Time
	DeletedAt *time.Time
}

// Validate checks the cache row's data before it is written.
func (c *CachedArtifact) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cache row ID is required")
	}
	if c.RemoteID == "" {
		return fmt.Errorf("remote artifact ID is required")
	}
	if c.Artifact.Name == "" {
		return fmt.Errorf("artifact name is required")
	}
	return nil
}
