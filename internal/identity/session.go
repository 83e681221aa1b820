package identity

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
)

// Phase is the lifecycle phase of the authentication session.
type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseResolving
	PhaseAuthenticated
	PhaseAnonymous
)

func (p Phase) String() string {
	switch p {
	case PhaseUninitialized:
		return "uninitialized"
	case PhaseResolving:
		return "resolving"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseAnonymous:
		return "anonymous"
	default:
		return ""
	}
}

// Resolved reports whether the phase is a settled provider report.
func (p Phase) Resolved() bool {
	return p == PhaseAuthenticated || p == PhaseAnonymous
}

// Session is the client's current belief about who (if anyone) is
// authenticated. Identity is non-nil exactly when Phase is Authenticated.
type Session struct {
	Phase    Phase
	Identity *models.Identity
}

// SessionStore owns the authentication state machine. It wraps a provider
// [Client], subscribes to its change stream, and exposes the current session
// snapshot to the rest of the client.
//
// Exactly one store instance exists per client process; it is passed
// explicitly to consumers rather than held as a global.
type SessionStore struct {
	mu          sync.Mutex
	client      Client
	logger      *log.Logger
	phase       Phase
	resolved    Phase // last phase reported by the provider stream
	identity    *models.Identity
	unsubscribe func()
	closed      bool
}

// NewSessionStore creates a SessionStore wrapping the given provider client.
func NewSessionStore(client Client, logger *log.Logger) *SessionStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SessionStore{
		client:   client,
		logger:   logger,
		phase:    PhaseUninitialized,
		resolved: PhaseUninitialized,
	}
}

// Initialize subscribes to the provider's session-change stream and moves the
// phase from Uninitialized to Resolving synchronously. Calling Initialize on
// a closed or already-initialized store returns ErrStoreClosed or nil
// respectively without re-subscribing.
func (s *SessionStore) Initialize() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrStoreClosed
	}
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return nil
	}
	s.phase = PhaseResolving
	s.mu.Unlock()

	// Subscribe outside the lock: the provider may fire the callback
	// synchronously with restored state.
	unsub := s.client.OnSessionChange(s.onProviderReport)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		unsub()
		return shared.ErrStoreClosed
	}
	s.unsubscribe = unsub
	return nil
}

// Close releases the provider subscription and stops the state machine. It is
// the only way the machine terminates and is safe on every exit path,
// including repeat calls.
func (s *SessionStore) Close() {
	s.mu.Lock()
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.closed = true
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

// Session returns a snapshot of the current session. The identity, when
// present, is a copy.
func (s *SessionStore) Session() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Session{Phase: s.phase}
	if s.identity != nil {
		id := *s.identity
		snap.Identity = &id
	}
	return snap
}

// SignUp registers a new account. The phase moves to Resolving for the
// duration; only the provider stream settles it.
func (s *SessionStore) SignUp(ctx context.Context, email, password string) error {
	return s.delegate(func() error { return s.client.CreateAccount(ctx, email, password) })
}

// SignIn authenticates with an email/password pair.
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	return s.delegate(func() error { return s.client.SignIn(ctx, email, password) })
}

// SignInFederated runs the provider's federated authorization flow.
func (s *SessionStore) SignInFederated(ctx context.Context) error {
	return s.delegate(func() error { return s.client.SignInFederated(ctx) })
}

// SignOut ends the current session; the provider stream eventually reports
// Anonymous.
func (s *SessionStore) SignOut(ctx context.Context) error {
	return s.delegate(func() error { return s.client.SignOut(ctx) })
}

// delegate moves the phase to Resolving, runs the provider call, and on
// failure reverts to the prior resolved phase so the machine is never stuck
// in Resolving after a failed call.
func (s *SessionStore) delegate(call func() error) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrStoreClosed
	}
	s.phase = PhaseResolving
	s.mu.Unlock()

	err := call()
	if err == nil {
		// Success: the stream listener is the single writer of resolved
		// phases, so there is nothing more to do here.
		return nil
	}

	s.mu.Lock()
	// A stream report may have landed while the call was in flight; only
	// revert if we are still the ones holding the phase at Resolving.
	if s.phase == PhaseResolving && s.resolved.Resolved() {
		s.phase = s.resolved
		if s.resolved != PhaseAuthenticated {
			s.identity = nil
		}
	}
	s.mu.Unlock()

	s.logger.Warn("identity call failed", "error", err)
	return err
}

// onProviderReport is the change-stream callback: the only writer of the
// Authenticated and Anonymous phases.
func (s *SessionStore) onProviderReport(id *models.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	if id != nil {
		copied := *id
		s.identity = &copied
		s.phase = PhaseAuthenticated
	} else {
		s.identity = nil
		s.phase = PhaseAnonymous
	}
	s.resolved = s.phase
	s.logger.Debug("session phase settled", "phase", s.phase.String())
}
