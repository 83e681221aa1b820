// package server contains the local HTTP plumbing for federated sign-in callbacks
package server

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an http.Handler that knows which path patterns it serves, so a
// router can mount it without a separate route table.
type Handler interface {
	http.Handler
	Routes() []string
}

// Router mounts Handlers and dispatches requests through its middleware chain.
type Router interface {
	Use(middleware ...Middleware)
	Handler(handler Handler)
	ServeHTTP(w http.ResponseWriter, r *http.Request)
}
