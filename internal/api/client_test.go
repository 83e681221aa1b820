package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
	tu "github.com/rashed-dev/relic/internal/testing"
)

func newTestClient(t *testing.T) (*Client, *tu.ArtifactServer) {
	t.Helper()

	artifacts := tu.NewArtifactServer()
	server := httptest.NewServer(artifacts.Handler())
	t.Cleanup(server.Close)

	return NewClient(server.URL, nil), artifacts
}

func seedVase(artifacts *tu.ArtifactServer) models.Artifact {
	return artifacts.Seed(models.Artifact{
		Name:            "Grecian Vase",
		ImageURL:        "https://images.example.com/vase.png",
		Type:            models.TypeArtwork,
		CreatedAt:       "500 BC",
		PresentLocation: "Athens",
		AddedBy:         models.Contributor{Name: "Alice", Email: "alice@example.com", SubjectID: "uid-alice"},
	})
}

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Empty BaseURL", func(t *testing.T) {
			client := NewClient("", nil)
			if client.baseURL != "http://localhost:20112" {
				t.Errorf("expected default baseURL, got %s", client.baseURL)
			}
		})

		t.Run("Trims Trailing Slash", func(t *testing.T) {
			client := NewClient("http://example.com/", nil)
			if client.baseURL != "http://example.com" {
				t.Errorf("expected trimmed baseURL, got %s", client.baseURL)
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		client, artifacts := newTestClient(t)
		seedVase(artifacts)
		artifacts.Seed(models.Artifact{Name: "Bronze Coin", Type: models.TypeCoins, AddedBy: models.Contributor{SubjectID: "uid-bob"}})

		listed, err := client.List(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(listed) != 2 {
			t.Fatalf("expected 2 artifacts, got %d", len(listed))
		}
		if listed[0].Name != "Grecian Vase" {
			t.Errorf("expected insertion order preserved, got %s first", listed[0].Name)
		}
	})

	t.Run("Search", func(t *testing.T) {
		t.Run("Matches Case-Insensitive Substring", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			seedVase(artifacts)
			artifacts.Seed(models.Artifact{Name: "Bronze Coin", Type: models.TypeCoins})

			found, err := client.Search(context.Background(), "VASE")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(found) != 1 || found[0].Name != "Grecian Vase" {
				t.Errorf("expected only the vase, got %+v", found)
			}
		})

		t.Run("Escapes The Term", func(t *testing.T) {
			var gotName string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotName = r.URL.Query().Get("name")
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte("[]"))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			if _, err := client.Search(context.Background(), "amphora & krater"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if gotName != "amphora & krater" {
				t.Errorf("expected decoded term to round-trip, got %q", gotName)
			}
		})

		t.Run("Blank Term Falls Back To List", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			seedVase(artifacts)

			found, err := client.Search(context.Background(), "   ")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(found) != 1 {
				t.Errorf("expected full collection, got %d artifacts", len(found))
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("Returns The Artifact", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			vase := seedVase(artifacts)

			got, err := client.Get(context.Background(), vase.ID)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got.Name != "Grecian Vase" || got.AddedBy.SubjectID != "uid-alice" {
				t.Errorf("unexpected artifact %+v", got)
			}
		})

		t.Run("Unknown ID Is NotFound", func(t *testing.T) {
			client, _ := newTestClient(t)

			_, err := client.Get(context.Background(), "missing")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("Create", func(t *testing.T) {
		owner := models.Identity{SubjectID: "uid-alice", DisplayName: "Alice", Email: "alice@example.com"}

		t.Run("Stamps Owner And Zeroes Likes", func(t *testing.T) {
			client, artifacts := newTestClient(t)

			draft := models.ArtifactDraft{
				Name:     "Iron Gladius",
				ImageURL: "https://images.example.com/gladius.png",
				Type:     models.TypeWeapons,
			}
			created, err := client.Create(context.Background(), draft, owner)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if created.ID == "" {
				t.Error("expected server-assigned ID")
			}
			if created.LikeCount != 0 || len(created.LikedBy) != 0 {
				t.Errorf("expected zeroed like state, got %d / %v", created.LikeCount, created.LikedBy)
			}

			stored, ok := artifacts.Artifact(created.ID)
			if !ok || stored.AddedBy.SubjectID != "uid-alice" {
				t.Errorf("expected stored artifact stamped with owner, got %+v", stored)
			}
		})

		t.Run("Rejects An Invalid Draft Locally", func(t *testing.T) {
			client, _ := newTestClient(t)

			_, err := client.Create(context.Background(), models.ArtifactDraft{}, owner)
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if len(artifactsList(t, client)) != 0 {
				t.Error("invalid draft must not reach the server")
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		patch := models.ArtifactDraft{
			Name:     "Grecian Vase (restored)",
			ImageURL: "https://images.example.com/vase2.png",
			Type:     models.TypeArtwork,
		}

		t.Run("Owner May Update", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			vase := seedVase(artifacts)

			updated, err := client.Update(context.Background(), vase.ID, patch, "uid-alice")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if updated.Name != "Grecian Vase (restored)" {
				t.Errorf("expected updated name, got %s", updated.Name)
			}
		})

		t.Run("Non-Owner Is Forbidden", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			vase := seedVase(artifacts)

			_, err := client.Update(context.Background(), vase.ID, patch, "uid-bob")
			if !errors.Is(err, shared.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("Owner May Delete", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			vase := seedVase(artifacts)

			if err := client.Delete(context.Background(), vase.ID, "uid-alice"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, ok := artifacts.Artifact(vase.ID); ok {
				t.Error("expected artifact removed")
			}
		})

		t.Run("Non-Owner Is Forbidden", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			vase := seedVase(artifacts)

			if err := client.Delete(context.Background(), vase.ID, "uid-bob"); !errors.Is(err, shared.ErrForbidden) {
				t.Errorf("expected ErrForbidden, got %v", err)
			}
		})
	})

	t.Run("Like", func(t *testing.T) {
		t.Run("Returns The Authoritative Count", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			vase := seedVase(artifacts)

			likes, err := client.Like(context.Background(), vase.ID, "uid-bob")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if likes != 1 {
				t.Errorf("expected 1 like, got %d", likes)
			}
		})

		t.Run("Repeat Like Is A No-Op", func(t *testing.T) {
			client, artifacts := newTestClient(t)
			vase := seedVase(artifacts)

			client.Like(context.Background(), vase.ID, "uid-bob")
			likes, err := client.Like(context.Background(), vase.ID, "uid-bob")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if likes != 1 {
				t.Errorf("expected count unchanged at 1, got %d", likes)
			}
		})
	})

	t.Run("Scoped Listings", func(t *testing.T) {
		client, artifacts := newTestClient(t)
		vase := seedVase(artifacts)
		artifacts.Seed(models.Artifact{Name: "Bronze Coin", Type: models.TypeCoins, AddedBy: models.Contributor{SubjectID: "uid-bob"}})
		client.Like(context.Background(), vase.ID, "uid-bob")

		t.Run("ListByOwner", func(t *testing.T) {
			mine, err := client.ListByOwner(context.Background(), "uid-alice")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(mine) != 1 || mine[0].Name != "Grecian Vase" {
				t.Errorf("expected only alice's vase, got %+v", mine)
			}
		})

		t.Run("ListLikedBy", func(t *testing.T) {
			liked, err := client.ListLikedBy(context.Background(), "uid-bob")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(liked) != 1 || liked[0].ID != vase.ID {
				t.Errorf("expected bob's liked vase, got %+v", liked)
			}
		})

		t.Run("ListTopLiked Orders By Count Then Era", func(t *testing.T) {
			top, err := client.ListTopLiked(context.Background(), 2)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(top) != 2 || top[0].ID != vase.ID {
				t.Errorf("expected the liked vase first, got %+v", top)
			}
		})
	})

	t.Run("Failure Mapping", func(t *testing.T) {
		statusCases := map[int]error{
			http.StatusNotFound:            shared.ErrNotFound,
			http.StatusForbidden:           shared.ErrForbidden,
			http.StatusUnauthorized:        shared.ErrUnauthorized,
			http.StatusInternalServerError: shared.ErrUnreachable,
			http.StatusTeapot:              shared.ErrInvalidResponse,
		}

		for status, want := range statusCases {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{"error": "boom"})
			}))

			client := NewClient(server.URL, nil)
			_, err := client.List(context.Background())
			if !errors.Is(err, want) {
				t.Errorf("status %d: expected %v, got %v", status, want, err)
			}
			server.Close()
		}

		t.Run("Transport Failure Is Unreachable", func(t *testing.T) {
			client := NewClient("http://localhost:1", &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused")),
			})

			_, err := client.List(context.Background())
			if !errors.Is(err, shared.ErrUnreachable) {
				t.Errorf("expected ErrUnreachable, got %v", err)
			}
		})

		t.Run("Non-JSON Success Body Is InvalidResponse", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.Write([]byte("<html>gateway</html>"))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			_, err := client.List(context.Background())
			if !errors.Is(err, shared.ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})

		t.Run("Malformed JSON Is InvalidResponse", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte("{not json"))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			_, err := client.List(context.Background())
			if !errors.Is(err, shared.ErrInvalidResponse) {
				t.Errorf("expected ErrInvalidResponse, got %v", err)
			}
		})
	})
}

func artifactsList(t *testing.T, client *Client) []models.Artifact {
	t.Helper()
	listed, err := client.List(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return listed
}
