// Package identity wraps the external identity provider and owns the client's
// authentication session.
//
// # Provider Interface
//
// [Client] is the fixed capability surface every provider implementation
// exposes: account creation, password sign-in, federated sign-in, sign-out,
// and a subscribe-to-session-changes primitive. [ProviderClient] implements it
// against an HTTP identity provider, with Google OAuth2 for the federated
// flow; tests substitute a fake.
//
// # Session State Machine
//
// [SessionStore] holds the one process-wide [Session] value:
//
//	Uninitialized --Initialize--> Resolving --provider reports--> {Authenticated, Anonymous}
//
// From either resolved phase, the sign-in/sign-up/sign-out calls re-enter
// Resolving until the next provider report. Resolved phases are only ever
// entered from the provider's change stream, never from a call's own
// resolution, so a caller can never observe success before the shared phase
// updates. Call failures revert to the prior resolved phase and surface one
// of the identity sentinels from the shared package.
//
// # Error Handling
//
//   - [shared.ErrInvalidCredential] : provider rejected the email/password pair
//   - [shared.ErrNetworkUnavailable] : transport-level failure
//   - [shared.ErrProviderRejected] : provider refused the request for another reason
//   - [shared.ErrUnknown] : malformed provider payload or other unexpected failure
package identity
