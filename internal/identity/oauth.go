package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rashed-dev/relic/internal/server"
	"github.com/rashed-dev/relic/internal/shared"
	"golang.org/x/oauth2"
)

const oauthTimeout = 2 * time.Minute

// runOAuthFlow performs the Google authorization code flow.
//
// Starts a local HTTP server for the callback, opens the browser to the
// authorization URL, and waits for the exchanged token or a timeout.
func (c *ProviderClient) runOAuthFlow(ctx context.Context) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrUnknown, err)
	}

	authURL := c.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	oauthHandler := server.NewOAuthHandler(c.oauthConfig, state)
	router := server.NewBasicRouter()
	router.Handler(oauthHandler)

	httpServer := &http.Server{
		Addr:    c.serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		c.logger.Info("starting sign-in callback server", "addr", c.serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if err := c.openBrowser(authURL); err != nil {
		c.logger.Warn("failed to open browser automatically", "error", err)
		c.logger.Info("open this URL in your browser", "url", authURL)
	}

	timeout := time.NewTimer(oauthTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("%w: callback server: %v", shared.ErrUnknown, err)
	case <-ctx.Done():
		shutdownServer(httpServer, c)
		return nil, fmt.Errorf("%w: %v", shared.ErrTimeout, ctx.Err())
	case <-timeout.C:
		shutdownServer(httpServer, c)
		return nil, fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, oauthTimeout)
	}

	shutdownServer(httpServer, c)

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderRejected, result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrUnknown)
	}

	return result.Token, nil
}

func shutdownServer(srv *http.Server, c *ProviderClient) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		c.logger.Warn("error shutting down callback server", "error", err)
	}
}
