package identity

import (
	"context"

	"github.com/rashed-dev/relic/internal/models"
)

// Client defines the capability interface for identity providers.
//
// Each call resolves or fails; all transitions of the shared session state
// are delivered through the change stream, not through the calls' own
// resolutions.
type Client interface {
	// CreateAccount registers a new email/password account and signs it in.
	CreateAccount(ctx context.Context, email, password string) error

	// SignIn authenticates with an email/password pair.
	SignIn(ctx context.Context, email, password string) error

	// SignInFederated runs the provider's federated (Google) authorization flow.
	SignInFederated(ctx context.Context) error

	// SignOut ends the current session.
	SignOut(ctx context.Context) error

	// OnSessionChange registers a callback invoked with the current identity
	// on every session change (nil for anonymous). The callback fires once
	// with the restored state after registration. The returned function
	// unsubscribes; it is safe to call more than once.
	OnSessionChange(fn func(*models.Identity)) (unsubscribe func())
}
