package models

import (
	"strings"
	"testing"
)

func validDraft() ArtifactDraft {
	return ArtifactDraft{
		Name:     "Grecian Vase",
		ImageURL: "https://images.example.com/vase.png",
		Type:     TypeArtwork,
	}
}

func TestArtifactType(t *testing.T) {
	t.Run("Accepts Known Types", func(t *testing.T) {
		for _, known := range ArtifactTypes() {
			if !known.Valid() {
				t.Errorf("expected %q to be valid", known)
			}
		}
	})

	t.Run("Rejects Unknown Types", func(t *testing.T) {
		for _, unknown := range []ArtifactType{"", "Pottery", "tools"} {
			if unknown.Valid() {
				t.Errorf("expected %q to be invalid", unknown)
			}
		}
	})
}

func TestArtifactDraftValidate(t *testing.T) {
	t.Run("Accepts A Complete Draft", func(t *testing.T) {
		draft := validDraft()
		if err := draft.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Requires A Name", func(t *testing.T) {
		draft := validDraft()
		draft.Name = "   "
		err := draft.Validate()
		if err == nil || !strings.Contains(err.Error(), "name is required") {
			t.Errorf("expected a name error, got %v", err)
		}
	})

	t.Run("Requires A Known Type", func(t *testing.T) {
		draft := validDraft()
		draft.Type = "Pottery"
		err := draft.Validate()
		if err == nil || !strings.Contains(err.Error(), "invalid artifact type") {
			t.Errorf("expected a type error, got %v", err)
		}
	})

	t.Run("Requires An HTTP Image URL", func(t *testing.T) {
		draft := validDraft()
		draft.ImageURL = "ftp://images.example.com/vase.png"
		if err := draft.Validate(); err == nil {
			t.Error("expected an image URL error")
		}

		draft.ImageURL = ""
		if err := draft.Validate(); err != nil {
			t.Errorf("expected the image to be optional, got %v", err)
		}
	})
}

func TestArtifactMembership(t *testing.T) {
	artifact := Artifact{
		AddedBy: Contributor{SubjectID: "uid-alice"},
		LikedBy: []string{"uid-carol", "uid-dave"},
	}

	t.Run("LikedBySubject", func(t *testing.T) {
		if !artifact.LikedBySubject("uid-carol") {
			t.Error("expected carol in the liked set")
		}
		if artifact.LikedBySubject("uid-alice") {
			t.Error("expected alice outside the liked set")
		}
		if artifact.LikedBySubject("") {
			t.Error("expected the empty subject outside the liked set")
		}
	})

	t.Run("OwnedBy", func(t *testing.T) {
		if !artifact.OwnedBy("uid-alice") {
			t.Error("expected alice as owner")
		}
		if artifact.OwnedBy("uid-bob") {
			t.Error("expected bob not owner")
		}
		if (&Artifact{}).OwnedBy("") {
			t.Error("expected the empty subject never owner")
		}
	})
}

func TestIdentityContributor(t *testing.T) {
	t.Run("Carries The Display Name", func(t *testing.T) {
		id := Identity{SubjectID: "uid-alice", DisplayName: "Alice", Email: "alice@example.com"}
		stamp := id.Contributor()
		if stamp.Name != "Alice" || stamp.Email != "alice@example.com" || stamp.SubjectID != "uid-alice" {
			t.Errorf("unexpected stamp %+v", stamp)
		}
	})

	t.Run("Falls Back For A Missing Display Name", func(t *testing.T) {
		stamp := Identity{SubjectID: "uid-bob"}.Contributor()
		if stamp.Name != "Anonymous" {
			t.Errorf("expected the fallback name, got %q", stamp.Name)
		}
	})
}
