// Package tasks implements long-running operations over the artifact
// collection, currently the remote-to-local cache sync.
//
// The core abstraction is [SyncEngine], which pulls the remote collection
// into the local sqlite mirror. Operations emit [ProgressUpdate] values via
// channels for non-blocking status reporting to CLI/TUI layers, and remote
// detail fetches go through an x/time rate limiter so a large collection
// does not hammer the API.
package tasks
