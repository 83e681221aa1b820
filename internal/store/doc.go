// Package store holds the client's in-memory view of the artifact collection
// and applies optimistic updates against it.
//
// # Views
//
// The cache holds the ordered sequence for one active view at a time: the
// full collection, search results, the session subject's own artifacts, the
// artifacts they like, or the top-liked listing. [Store.Load] replaces the
// cache with the matching remote call's result.
//
// # Ordering
//
// Concurrent Loads for the same view are gated by issue-order sequence
// numbers: a response is applied only if no newer Load for that view was
// issued, so a slow stale search response can never clobber a fresher one.
// Superseded calls are not aborted in flight; their results are discarded on
// arrival.
//
// # Mutations
//
// Mutating operations fail fast against the session (Unauthorized before the
// network is ever touched) and against the cached owner stamp (advisory
// Forbidden). The server stays authoritative: a server-side rejection
// surfaces the taxonomy error and leaves the cache exactly as it was.
// [Store.SubmitLike] applies an optimistic increment with a per-item pending
// flag, reconciles to the server's returned count on confirmation, and rolls
// the increment back on failure.
package store
