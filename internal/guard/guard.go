// Package guard decides whether a navigation or mutating operation is
// permitted for the current session. The presentation layer renders; this
// package only decides.
package guard

import (
	"sync"

	"github.com/rashed-dev/relic/internal/identity"
)

// LoginTarget is where anonymous callers are redirected.
const LoginTarget = "/login"

// Verdict classifies an authorization decision.
type Verdict int

const (
	// VerdictPending means the session has not resolved yet: the caller must
	// render a neutral pending state and must not decide allow/redirect.
	VerdictPending Verdict = iota
	VerdictAllow
	VerdictRedirect
)

func (v Verdict) String() string {
	switch v {
	case VerdictPending:
		return "pending"
	case VerdictAllow:
		return "allow"
	case VerdictRedirect:
		return "redirect"
	default:
		return ""
	}
}

// Decision is the outcome of authorizing a requested destination.
type Decision struct {
	Verdict Verdict
	Target  string // redirect target, set only for VerdictRedirect
	Resume  string // the originally requested destination to resume after sign-in
}

// Authorize decides whether the session may proceed to the requested
// destination. Pure function of the session and the destination; never
// allows while the session is unresolved.
func Authorize(session identity.Session, destination string) Decision {
	switch session.Phase {
	case identity.PhaseAuthenticated:
		return Decision{Verdict: VerdictAllow}
	case identity.PhaseAnonymous:
		return Decision{Verdict: VerdictRedirect, Target: LoginTarget, Resume: destination}
	default:
		return Decision{Verdict: VerdictPending}
	}
}

// ResumeBuffer captures the destination of a redirected navigation so a
// subsequent successful sign-in can resume there exactly once. A later,
// unrelated sign-in sees nothing.
type ResumeBuffer struct {
	mu          sync.Mutex
	destination string
}

// Capture stores the decision's resume destination if the decision was a
// redirect.
func (b *ResumeBuffer) Capture(d Decision) {
	if d.Verdict != VerdictRedirect || d.Resume == "" {
		return
	}
	b.mu.Lock()
	b.destination = d.Resume
	b.mu.Unlock()
}

// Take returns the captured destination and discards it. Subsequent calls
// return empty until another redirect is captured.
func (b *ResumeBuffer) Take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	dest := b.destination
	b.destination = ""
	return dest
}
