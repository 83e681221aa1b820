package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rashed-dev/relic/internal/identity"
	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
)

// ResourceClient is the remote request surface the store consumes.
// *api.Client implements it; tests substitute fakes.
type ResourceClient interface {
	List(ctx context.Context) ([]models.Artifact, error)
	Search(ctx context.Context, term string) ([]models.Artifact, error)
	Get(ctx context.Context, id string) (*models.Artifact, error)
	Create(ctx context.Context, draft models.ArtifactDraft, owner models.Identity) (*models.Artifact, error)
	Update(ctx context.Context, id string, patch models.ArtifactDraft, requesterSubjectID string) (*models.Artifact, error)
	Delete(ctx context.Context, id, requesterSubjectID string) error
	Like(ctx context.Context, id, requesterSubjectID string) (int, error)
	ListByOwner(ctx context.Context, subjectID string) ([]models.Artifact, error)
	ListLikedBy(ctx context.Context, subjectID string) ([]models.Artifact, error)
	ListTopLiked(ctx context.Context, n int) ([]models.Artifact, error)
}

// ViewKind identifies a cache view.
type ViewKind int

const (
	ViewAll ViewKind = iota
	ViewSearch
	ViewMine
	ViewLiked
	ViewTop
)

func (v ViewKind) String() string {
	switch v {
	case ViewAll:
		return "all"
	case ViewSearch:
		return "search"
	case ViewMine:
		return "mine"
	case ViewLiked:
		return "liked"
	case ViewTop:
		return "top"
	default:
		return ""
	}
}

// Query selects a view to load.
type Query struct {
	Kind  ViewKind
	Term  string // search term, ViewSearch only
	Limit int    // result cap, ViewTop only
}

// Store is the in-memory view of artifacts relevant to the active screen.
// All methods are safe for concurrent use.
type Store struct {
	client   ResourceClient
	sessions *identity.SessionStore
	logger   *log.Logger

	mu        sync.Mutex
	active    Query
	artifacts []models.Artifact
	pending   map[string]bool
	lastErr   error
	issued    map[ViewKind]uint64
}

// New creates a Store over the given client and session store.
func New(client ResourceClient, sessions *identity.SessionStore, logger *log.Logger) *Store {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Store{
		client:   client,
		sessions: sessions,
		logger:   logger,
		pending:  map[string]bool{},
		issued:   map[ViewKind]uint64{},
	}
}

// Load replaces the cache with the result of the matching remote call.
//
// When Loads for the same view race, only the most recently issued call's
// result is honored; a superseded call's result is discarded on arrival and
// Load reports nothing for it.
func (s *Store) Load(ctx context.Context, q Query) error {
	s.mu.Lock()
	s.issued[q.Kind]++
	seq := s.issued[q.Kind]
	s.mu.Unlock()

	artifacts, err := s.fetch(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.issued[q.Kind] {
		// Superseded by a newer Load for this view.
		s.logger.Debug("discarding superseded load", "view", q.Kind.String(), "seq", seq)
		return nil
	}

	if err != nil {
		s.lastErr = err
		return err
	}

	s.active = q
	s.artifacts = artifacts
	s.lastErr = nil
	return nil
}

// fetch dispatches the query to the matching client call. Views scoped to
// the session subject require an authenticated session.
func (s *Store) fetch(ctx context.Context, q Query) ([]models.Artifact, error) {
	switch q.Kind {
	case ViewAll:
		return s.client.List(ctx)
	case ViewSearch:
		return s.client.Search(ctx, q.Term)
	case ViewTop:
		return s.client.ListTopLiked(ctx, q.Limit)
	case ViewMine, ViewLiked:
		subject, err := s.requireSubject()
		if err != nil {
			return nil, err
		}
		if q.Kind == ViewMine {
			return s.client.ListByOwner(ctx, subject.SubjectID)
		}
		return s.client.ListLikedBy(ctx, subject.SubjectID)
	default:
		return nil, fmt.Errorf("%w: unknown view %d", shared.ErrInvalidArgument, q.Kind)
	}
}

// SubmitCreate creates an artifact from the draft. Fails fast with
// Unauthorized when the session is not authenticated, without contacting the
// remote API.
func (s *Store) SubmitCreate(ctx context.Context, draft models.ArtifactDraft) (*models.Artifact, error) {
	subject, err := s.requireSubject()
	if err != nil {
		return nil, s.fail(err)
	}

	created, err := s.client.Create(ctx, draft, *subject)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	if s.active.Kind == ViewMine {
		s.artifacts = append([]models.Artifact{*created}, s.artifacts...)
	}
	s.lastErr = nil
	s.mu.Unlock()

	return created, nil
}

// SubmitUpdate replaces the artifact's fields. The cached owner stamp is
// checked first as a fast advisory gate; the server remains the authority,
// and a server rejection leaves the cache unchanged.
func (s *Store) SubmitUpdate(ctx context.Context, id string, patch models.ArtifactDraft) (*models.Artifact, error) {
	subject, err := s.requireSubject()
	if err != nil {
		return nil, s.fail(err)
	}

	if err := s.checkCachedOwner(id, subject.SubjectID); err != nil {
		return nil, s.fail(err)
	}

	updated, err := s.client.Update(ctx, id, patch, subject.SubjectID)
	if err != nil {
		return nil, s.fail(err)
	}

	s.mu.Lock()
	for i := range s.artifacts {
		if s.artifacts[i].ID == id {
			s.artifacts[i] = *updated
			break
		}
	}
	s.lastErr = nil
	s.mu.Unlock()

	return updated, nil
}

// SubmitDelete removes the artifact. Same gating as SubmitUpdate.
func (s *Store) SubmitDelete(ctx context.Context, id string) error {
	subject, err := s.requireSubject()
	if err != nil {
		return s.fail(err)
	}

	if err := s.checkCachedOwner(id, subject.SubjectID); err != nil {
		return s.fail(err)
	}

	if err := s.client.Delete(ctx, id, subject.SubjectID); err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	for i := range s.artifacts {
		if s.artifacts[i].ID == id {
			s.artifacts = append(s.artifacts[:i], s.artifacts[i+1:]...)
			break
		}
	}
	delete(s.pending, id)
	s.lastErr = nil
	s.mu.Unlock()

	return nil
}

// SubmitLike optimistically increments the cached like count and marks the
// subject as having liked, then reconciles to the server's returned count
// (server value wins, including the already-liked no-op). On failure the
// optimistic increment is rolled back and the error surfaced.
func (s *Store) SubmitLike(ctx context.Context, id string) (int, error) {
	subject, err := s.requireSubject()
	if err != nil {
		return 0, s.fail(err)
	}

	s.mu.Lock()
	idx := s.indexOf(id)
	var prevCount int
	var prevLiked []string
	if idx >= 0 {
		prevCount = s.artifacts[idx].LikeCount
		prevLiked = s.artifacts[idx].LikedBy
		if !s.artifacts[idx].LikedBySubject(subject.SubjectID) {
			s.artifacts[idx].LikeCount++
			s.artifacts[idx].LikedBy = append(append([]string{}, prevLiked...), subject.SubjectID)
		}
		s.pending[id] = true
	}
	s.mu.Unlock()

	count, err := s.client.Like(ctx, id, subject.SubjectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)

	// The cache may have been replaced by a Load while the call was in
	// flight; reconcile or roll back against the current position.
	idx = s.indexOf(id)

	if err != nil {
		if idx >= 0 {
			s.artifacts[idx].LikeCount = prevCount
			s.artifacts[idx].LikedBy = prevLiked
		}
		s.lastErr = err
		return 0, err
	}

	if idx >= 0 {
		s.artifacts[idx].LikeCount = count
		if !s.artifacts[idx].LikedBySubject(subject.SubjectID) {
			s.artifacts[idx].LikedBy = append(s.artifacts[idx].LikedBy, subject.SubjectID)
		}
	}
	s.lastErr = nil
	return count, nil
}

// Artifacts returns a copy of the cached sequence for the active view.
func (s *Store) Artifacts() []models.Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

// ActiveQuery returns the query whose result the cache currently holds.
func (s *Store) ActiveQuery() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Pending reports whether the artifact has an optimistic update in flight.
func (s *Store) Pending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[id]
}

// LastError returns the last operation's error, or nil after a successful
// operation.
func (s *Store) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// requireSubject returns the authenticated identity or Unauthorized.
func (s *Store) requireSubject() (*models.Identity, error) {
	session := s.sessions.Session()
	if session.Phase != identity.PhaseAuthenticated || session.Identity == nil {
		return nil, fmt.Errorf("%w: session is %s", shared.ErrUnauthorized, session.Phase.String())
	}
	return session.Identity, nil
}

// checkCachedOwner is the advisory client-side ownership gate: when the
// artifact is cached and stamped with a different owner, the call is refused
// before the network is touched. An uncached artifact passes through; the
// server decides.
func (s *Store) checkCachedOwner(id, subjectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 && !s.artifacts[idx].OwnedBy(subjectID) {
		return fmt.Errorf("%w: artifact %s belongs to another subject", shared.ErrForbidden, id)
	}
	return nil
}

// indexOf returns the cache position of the artifact, or -1. Callers hold mu.
func (s *Store) indexOf(id string) int {
	for i := range s.artifacts {
		if s.artifacts[i].ID == id {
			return i
		}
	}
	return -1
}

// fail records and returns the operation error without touching the cache.
func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	s.logger.Warn("artifact operation failed", "error", err)
	return err
}
