package main

import (
	"context"
	"errors"
	"os"

	"github.com/rashed-dev/relic/internal/api"
	"github.com/rashed-dev/relic/internal/identity"
	"github.com/rashed-dev/relic/internal/shared"
	"github.com/rashed-dev/relic/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var provider identity.Client
	if p, err := identity.NewProviderClient(config.Identity, config.Server, nil, logger); err == nil {
		provider = p
	} else {
		logger.Warnf("identity provider unavailable: %v", err)
	}

	var sessions *identity.SessionStore
	if provider != nil {
		sessions = identity.NewSessionStore(provider, logger)
		if err := sessions.Initialize(); err != nil {
			logger.Warnf("failed to initialize session store: %v", err)
		}
		defer sessions.Close()
	}

	apiClient := api.NewClient(config.API.BaseURL, nil)

	var resources *store.Store
	if sessions != nil {
		resources = store.New(apiClient, sessions, logger)
	}

	runner := NewRunner(RunnerOpts{
		Config:    config,
		Sessions:  sessions,
		Resources: resources,
		API:       apiClient,
		Logger:    logger,
	})

	app := &cli.Command{
		Name:     "relic",
		Usage:    "Browse, curate, and cache a shared historical artifact collection",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}
