// Package api implements the stateless request layer for the remote artifact API.
//
// # Routes
//
// The client speaks the artifact service's JSON contract:
//
//	GET    /artifacts                     list the collection
//	GET    /artifacts/search?name=term    substring search on name
//	GET    /artifacts/{id}                fetch one artifact
//	POST   /artifacts                     create (server stamps addedBy, id, zeroed likes)
//	PUT    /artifacts/{id}                update (owner only)
//	DELETE /artifacts/{id}                delete (owner only)
//	PUT    /artifacts/{id}/like           idempotent per-subject like
//	GET    /my-artifacts/{uid}            artifacts added by a subject
//	GET    /liked-artifacts/{uid}         artifacts a subject likes
//	GET    /artifacts/top-liked?limit=n   most liked, ties oldest first
//
// # Error Handling
//
// Domain failures map onto the shared sentinels: [shared.ErrNotFound],
// [shared.ErrForbidden], [shared.ErrUnauthorized]. Transport failures are
// [shared.ErrUnreachable]; a response that is not the expected structured
// shape (wrong content type, undecodable body) is [shared.ErrInvalidResponse]
// and is never parsed further. Callers always receive one of that closed set,
// never a raw transport message.
package api
