package testing

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/rashed-dev/relic/internal/models"
)

// ArtifactServer is an in-memory stand-in for the remote artifact API,
// faithful to its contract: ownership-gated mutation, and the
// read-check-increment-add like step performed atomically per artifact under
// a lock so concurrent likers never lose updates.
type ArtifactServer struct {
	mu        sync.Mutex
	artifacts map[string]*models.Artifact
	order     []string
	nextID    int
}

func NewArtifactServer() *ArtifactServer {
	return &ArtifactServer{artifacts: map[string]*models.Artifact{}}
}

// Seed inserts an artifact, assigning an ID when absent, and returns it.
func (s *ArtifactServer) Seed(artifact models.Artifact) models.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	if artifact.ID == "" {
		s.nextID++
		artifact.ID = fmt.Sprintf("a%04d", s.nextID)
	}
	if artifact.LikedBy == nil {
		artifact.LikedBy = []string{}
	}
	s.artifacts[artifact.ID] = &artifact
	s.order = append(s.order, artifact.ID)
	return artifact
}

// Artifact returns a copy of the stored artifact for assertions.
func (s *ArtifactServer) Artifact(id string) (models.Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact, ok := s.artifacts[id]
	if !ok {
		return models.Artifact{}, false
	}
	return *artifact, true
}

// Handler returns the HTTP handler serving the artifact API routes.
func (s *ArtifactServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artifacts", s.handleList)
	mux.HandleFunc("GET /artifacts/search", s.handleSearch)
	mux.HandleFunc("GET /artifacts/top-liked", s.handleTopLiked)
	mux.HandleFunc("GET /artifacts/{id}", s.handleGet)
	mux.HandleFunc("POST /artifacts", s.handleCreate)
	mux.HandleFunc("PUT /artifacts/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /artifacts/{id}", s.handleDelete)
	mux.HandleFunc("PUT /artifacts/{id}/like", s.handleLike)
	mux.HandleFunc("GET /my-artifacts/{uid}", s.handleByOwner)
	mux.HandleFunc("GET /liked-artifacts/{uid}", s.handleLikedBy)
	return mux
}

func (s *ArtifactServer) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshot(func(*models.Artifact) bool { return true }))
}

func (s *ArtifactServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := strings.ToLower(r.URL.Query().Get("name"))
	writeJSON(w, http.StatusOK, s.snapshot(func(a *models.Artifact) bool {
		return strings.Contains(strings.ToLower(a.Name), term)
	}))
}

func (s *ArtifactServer) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	artifact, ok := s.artifacts[r.PathValue("id")]
	var copied models.Artifact
	if ok {
		copied = *artifact
	}
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	writeJSON(w, http.StatusOK, copied)
}

func (s *ArtifactServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-Subject-Id") == "" {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var payload models.Artifact
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed artifact")
		return
	}

	payload.ID = ""
	payload.LikeCount = 0
	payload.LikedBy = nil
	created := s.Seed(payload)
	writeJSON(w, http.StatusCreated, created)
}

func (s *ArtifactServer) handleUpdate(w http.ResponseWriter, r *http.Request) {
	subject := r.Header.Get("X-Subject-Id")
	if subject == "" {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	var patch models.ArtifactDraft
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "malformed artifact")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	artifact, ok := s.artifacts[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	if artifact.AddedBy.SubjectID != subject {
		writeError(w, http.StatusForbidden, "only the owner may update this artifact")
		return
	}

	artifact.Name = patch.Name
	artifact.ImageURL = patch.ImageURL
	artifact.Type = patch.Type
	artifact.HistoricalContext = patch.HistoricalContext
	artifact.CreatedAt = patch.CreatedAt
	artifact.DiscoveredAt = patch.DiscoveredAt
	artifact.DiscoveredBy = patch.DiscoveredBy
	artifact.PresentLocation = patch.PresentLocation

	writeJSON(w, http.StatusOK, *artifact)
}

func (s *ArtifactServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	subject := r.Header.Get("X-Subject-Id")
	if subject == "" {
		writeError(w, http.StatusUnauthorized, "login required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	artifact, ok := s.artifacts[id]
	if !ok {
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}
	if artifact.AddedBy.SubjectID != subject {
		writeError(w, http.StatusForbidden, "only the owner may delete this artifact")
		return
	}

	delete(s.artifacts, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *ArtifactServer) handleLike(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.UserID == "" {
		writeError(w, http.StatusBadRequest, "userId required")
		return
	}

	// The whole read-check-increment-add step happens under the lock; this
	// is the atomicity the contract demands.
	s.mu.Lock()
	artifact, ok := s.artifacts[r.PathValue("id")]
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	already := false
	for _, uid := range artifact.LikedBy {
		if uid == body.UserID {
			already = true
			break
		}
	}
	if !already {
		artifact.LikedBy = append(artifact.LikedBy, body.UserID)
		artifact.LikeCount++
	}
	likes := artifact.LikeCount
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"likes": likes})
}

func (s *ArtifactServer) handleByOwner(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")
	writeJSON(w, http.StatusOK, s.snapshot(func(a *models.Artifact) bool {
		return a.AddedBy.SubjectID == uid
	}))
}

func (s *ArtifactServer) handleLikedBy(w http.ResponseWriter, r *http.Request) {
	uid := r.PathValue("uid")
	writeJSON(w, http.StatusOK, s.snapshot(func(a *models.Artifact) bool {
		return a.LikedBySubject(uid)
	}))
}

func (s *ArtifactServer) handleTopLiked(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 6
	}

	top := s.snapshot(func(*models.Artifact) bool { return true })
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].LikeCount != top[j].LikeCount {
			return top[i].LikeCount > top[j].LikeCount
		}
		return top[i].CreatedAt < top[j].CreatedAt
	})

	if limit < len(top) {
		top = top[:limit]
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *ArtifactServer) snapshot(keep func(*models.Artifact) bool) []models.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Artifact{}
	for _, id := range s.order {
		if artifact, ok := s.artifacts[id]; ok && keep(artifact) {
			out = append(out, *artifact)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
