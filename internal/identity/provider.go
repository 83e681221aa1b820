// HTTP implementation of [Client] for the hosted identity provider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	accountsPath       = "/accounts"
	sessionsPath       = "/sessions"
	googleSessionsPath = "/sessions/google"
	profilePath        = "/profile"
)

// authResponse is the provider's payload for every call that establishes a session.
type authResponse struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// sessionRecord is the on-disk form of a persisted provider session.
//
// Persistence belongs to the provider client, not the session store: the core
// never writes Identity anywhere else.
type sessionRecord struct {
	Token string          `json:"token"`
	User  models.Identity `json:"user"`
}

// ProviderClient implements [Client] against an HTTP identity provider, with
// Google OAuth2 (authorization code flow through a local callback server) for
// federated sign-in.
type ProviderClient struct {
	baseURL     string
	httpClient  *http.Client
	logger      *log.Logger
	oauthConfig *oauth2.Config
	serverAddr  string
	sessionFile string

	mu          sync.Mutex
	token       string
	identity    *models.Identity
	restored    bool
	subscribers map[int]func(*models.Identity)
	nextSubID   int

	// swapped in tests to avoid launching a real browser
	openBrowser func(url string) error
	federated   func(ctx context.Context) (*oauth2.Token, error)
}

// NewProviderClient creates a provider client from the identity and callback
// server sections of the configuration.
func NewProviderClient(cfg shared.IdentityConfig, srv shared.ServerConfig, client *http.Client, logger *log.Logger) (*ProviderClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: identity base_url must be set", shared.ErrInvalidConfig)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	sessionFile := cfg.SessionFile
	if sessionFile == "" {
		sessionFile = filepath.Join(os.Getenv("HOME"), ".relic", "session.json")
	}

	redirectURI := cfg.Google.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}

	c := &ProviderClient{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  client,
		logger:      logger,
		oauthConfig: oauthConfig,
		serverAddr:  fmt.Sprintf("%s:%d", srv.Host, srv.Port),
		sessionFile: sessionFile,
		subscribers: map[int]func(*models.Identity){},
		openBrowser: shared.OpenBrowser,
	}
	c.federated = c.runOAuthFlow
	return c, nil
}

// OnSessionChange registers a session-change callback. The first subscription
// triggers restoration of any persisted session; the callback fires with the
// restored state once known.
func (c *ProviderClient) OnSessionChange(fn func(*models.Identity)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	restored := c.restored
	current := c.identity
	c.mu.Unlock()

	if restored {
		fn(copyIdentity(current))
	} else {
		go c.restore()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subscribers, id)
			c.mu.Unlock()
		})
	}
}

// restore loads the persisted session, validates the token against the
// provider, and reports the outcome on the change stream.
func (c *ProviderClient) restore() {
	c.mu.Lock()
	if c.restored {
		c.mu.Unlock()
		c.notify()
		return
	}
	c.mu.Unlock()

	var identity *models.Identity
	var token string

	data, err := os.ReadFile(c.sessionFile)
	if err == nil {
		var record sessionRecord
		if err := json.Unmarshal(data, &record); err == nil && record.Token != "" {
			var user models.Identity
			if err := c.doRequest(context.Background(), http.MethodGet, profilePath, record.Token, nil, &user); err == nil {
				identity = &user
				token = record.Token
			} else {
				c.logger.Debug("persisted session no longer valid", "error", err)
			}
		}
	}

	c.mu.Lock()
	c.restored = true
	c.token = token
	c.identity = identity
	c.mu.Unlock()

	c.notify()
}

// notify reports the current identity to every subscriber.
func (c *ProviderClient) notify() {
	c.mu.Lock()
	current := c.identity
	fns := make([]func(*models.Identity), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(copyIdentity(current))
	}
}

// CreateAccount registers a new email/password account and signs it in.
func (c *ProviderClient) CreateAccount(ctx context.Context, email, password string) error {
	return c.establishSession(ctx, accountsPath, map[string]string{"email": email, "password": password})
}

// SignIn authenticates with an email/password pair.
func (c *ProviderClient) SignIn(ctx context.Context, email, password string) error {
	return c.establishSession(ctx, sessionsPath, map[string]string{"email": email, "password": password})
}

// SignInFederated runs the Google authorization code flow through the local
// callback server, then exchanges the Google token for a provider session.
func (c *ProviderClient) SignInFederated(ctx context.Context) error {
	if c.oauthConfig.ClientID == "" || c.oauthConfig.ClientSecret == "" {
		return fmt.Errorf("%w: google client_id and client_secret must be set", shared.ErrInvalidConfig)
	}

	token, err := c.federated(ctx)
	if err != nil {
		return err
	}

	return c.establishSession(ctx, googleSessionsPath, map[string]string{"access_token": token.AccessToken})
}

// SignOut ends the session on the provider and discards the persisted record.
func (c *ProviderClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	if token != "" {
		if err := c.doRequest(ctx, http.MethodDelete, sessionsPath, token, nil, nil); err != nil {
			// A provider that already dropped the session is fine; a dead
			// network is not.
			if !isRejection(err) {
				return err
			}
		}
	}

	c.mu.Lock()
	c.token = ""
	c.identity = nil
	c.restored = true
	c.mu.Unlock()

	if err := os.Remove(c.sessionFile); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("failed to remove session file", "error", err)
	}

	c.notify()
	return nil
}

// establishSession posts credentials, persists the resulting session, and
// reports the new identity on the change stream.
func (c *ProviderClient) establishSession(ctx context.Context, path string, body map[string]string) error {
	var resp authResponse
	if err := c.doRequest(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return err
	}
	if resp.Token == "" || resp.User.SubjectID == "" {
		return fmt.Errorf("%w: provider returned incomplete session", shared.ErrUnknown)
	}

	c.mu.Lock()
	c.token = resp.Token
	user := resp.User
	c.identity = &user
	c.restored = true
	c.mu.Unlock()

	c.persist(sessionRecord{Token: resp.Token, User: resp.User})
	c.notify()
	return nil
}

func (c *ProviderClient) persist(record sessionRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		c.logger.Warn("failed to encode session record", "error", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionFile), 0755); err != nil {
		c.logger.Warn("failed to create session directory", "error", err)
		return
	}
	if err := os.WriteFile(c.sessionFile, data, 0600); err != nil {
		c.logger.Warn("failed to save session file", "error", err)
	}
}

// doRequest performs a JSON request against the identity provider and maps
// failures onto the identity error taxonomy.
func (c *ProviderClient) doRequest(ctx context.Context, method, path, token string, body, result any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrUnknown, err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return fmt.Errorf("%w: status %d", shared.ErrInvalidCredential, resp.StatusCode)
		default:
			return fmt.Errorf("%w: status %d", shared.ErrProviderRejected, resp.StatusCode)
		}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrUnknown, err)
		}
	}

	return nil
}

func copyIdentity(id *models.Identity) *models.Identity {
	if id == nil {
		return nil
	}
	copied := *id
	return &copied
}

// isRejection reports whether the error is a provider-side refusal rather
// than a transport failure.
func isRejection(err error) bool {
	return err != nil && !errors.Is(err, shared.ErrNetworkUnavailable)
}
