package server

import "net/http"

// BasicRouter mounts Handlers on an [http.ServeMux] and runs every request
// through the registered middleware chain. It is the minimal router the
// one-shot sign-in callback server needs.
type BasicRouter struct {
	mux   *http.ServeMux
	chain []Middleware
}

// NewBasicRouter creates an empty [BasicRouter].
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware to the chain. Middleware registered before a handler
// is mounted wraps that handler, outermost first.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handler mounts a [Handler] on every route it reports.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.wrap(handler)
	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *BasicRouter) wrap(handler http.Handler) http.Handler {
	for i := len(r.chain) - 1; i >= 0; i-- {
		handler = r.chain[i](handler)
	}
	return handler
}
