package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rashed-dev/relic/internal/identity"
	"github.com/rashed-dev/relic/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthRegister creates an account with the identity provider and signs in.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	email := cmd.String("email")
	password := cmd.String("password")

	r.logger.Infof("creating account for %v", email)

	if err := r.sessions.SignUp(ctx, email, password); err != nil {
		return r.describeAuthFailure(err)
	}

	r.writePlain("✓ Account created\n")
	return r.reportSession()
}

// AuthLogin signs in with email and password.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	email := cmd.String("email")

	r.logger.Infof("signing in as %v", email)

	if err := r.sessions.SignIn(ctx, email, cmd.String("password")); err != nil {
		return r.describeAuthFailure(err)
	}

	r.writePlain("✓ Signed in\n")
	if destination := r.resume.Take(); destination != "" {
		r.writePlain("You can now retry: %s\n", destination)
	}
	return r.reportSession()
}

// AuthGoogle runs the OAuth2 flow against Google and signs in with the result.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges the auth code for a session.
func (r *Runner) AuthGoogle(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	google := r.config.Identity.Google
	if google.ClientID == "" || google.ClientSecret == "" {
		return fmt.Errorf("%w: Google client_id and client_secret must be set in config.toml", shared.ErrInvalidArgument)
	}

	r.logger.Info("starting Google sign-in flow")

	if err := r.sessions.SignInFederated(ctx); err != nil {
		return r.describeAuthFailure(err)
	}

	r.writePlainln("✓ Signed in with Google")
	if destination := r.resume.Take(); destination != "" {
		r.writePlain("You can now retry: %s\n", destination)
	}
	return r.reportSession()
}

// AuthLogout signs out and clears the saved session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	if err := r.sessions.SignOut(ctx); err != nil {
		return r.describeAuthFailure(err)
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami prints the current session state.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrMissingConfig)
	}

	session := r.sessions.Session()

	if cmd.Bool("json") {
		payload := map[string]any{"phase": session.Phase.String()}
		if session.Identity != nil {
			payload["identity"] = session.Identity
		}
		return r.writeJSON(payload, true)
	}

	return r.reportSession()
}

func (r *Runner) reportSession() error {
	session := r.sessions.Session()

	switch session.Phase {
	case identity.PhaseAuthenticated:
		contributor := session.Identity.Contributor()
		r.writePlain("Session: authenticated\n")
		r.writePlain("Name: %s\n", contributor.Name)
		return r.writePlain("Email: %s\n", contributor.Email)
	case identity.PhaseAnonymous:
		return r.writePlain("Session: anonymous\n")
	case identity.PhaseResolving:
		return r.writePlain("Session: resolving...\n")
	default:
		return r.writePlain("Session: uninitialized\n")
	}
}

func (r *Runner) describeAuthFailure(err error) error {
	switch {
	case errors.Is(err, shared.ErrInvalidCredential):
		return fmt.Errorf("%w: check the email and password", err)
	case errors.Is(err, shared.ErrNetworkUnavailable):
		return fmt.Errorf("%w: identity provider unreachable", err)
	default:
		return err
	}
}
