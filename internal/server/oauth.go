package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// OAuthResult is the outcome of one authorization code flow: either an
// exchanged token or the reason the flow failed.
type OAuthResult struct {
	Token *oauth2.Token
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler receives the provider's redirect during federated sign-in.
// Implements the Handler interface for registration with a Router.
type OAuthHandler struct {
	config *oauth2.Config
	state  string

	mu      sync.Mutex
	served  bool
	once    sync.Once
	results chan OAuthResult
}

// NewOAuthHandler creates a handler expecting the given state token. The
// state token must be cryptographically random; see shared.GenerateState.
func NewOAuthHandler(config *oauth2.Config, state string) *OAuthHandler {
	return &OAuthHandler{
		config:  config,
		state:   state,
		results: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []string {
	return []string{"/callback"}
}

// ServeHTTP validates the state parameter, exchanges the authorization code,
// and publishes the outcome. The first request wins; repeats are rejected.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.served {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.served = true
	h.mu.Unlock()

	query := r.URL.Query()

	if query.Get("state") != h.state {
		h.Send(OAuthResult{err: fmt.Errorf("state mismatch on callback")})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		h.Send(OAuthResult{err: fmt.Errorf(
			"provider refused authorization: %s - %s",
			query.Get("error"), query.Get("error_description"),
		)})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(context.Background(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, signInDonePage)
}

// Send publishes the result exactly once; later calls are dropped.
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.results <- result
		close(h.results)
	})
}

// Result returns the channel the flow outcome arrives on. It receives exactly
// one result and is then closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.results
}

// signInDonePage is rendered in the user's browser after a successful
// exchange so they know to return to the terminal.
const signInDonePage = `<!DOCTYPE html>
<html>
<head>
    <title>Sign-in Successful</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #f5f5f5; }
        .card { text-align: center; background: white; padding: 2rem;
                border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #5EE9B4; margin: 0 0 1rem 0; }
        p { color: #666; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>&#10003; Sign-in Successful</h1>
        <p>You can close this window and return to the terminal.</p>
    </div>
</body>
</html>
`
