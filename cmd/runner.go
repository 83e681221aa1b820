package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/rashed-dev/relic/internal/api"
	"github.com/rashed-dev/relic/internal/guard"
	"github.com/rashed-dev/relic/internal/identity"
	"github.com/rashed-dev/relic/internal/shared"
	"github.com/rashed-dev/relic/internal/store"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	sessions   *identity.SessionStore
	resources  *store.Store
	api        *api.Client
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	resume     *guard.ResumeBuffer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Sessions   *identity.SessionStore
	Resources  *store.Store
	API        *api.Client
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		sessions:   opts.Sessions,
		resources:  opts.Resources,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		resume:     &guard.ResumeBuffer{},
	}
}

// SetLogger swaps the runner's logger, e.g. to redirect logs away from an active TUI.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, artifactsCommand, syncCommand, exportCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireAccess runs the mutation gate for destination. When the session is
// not yet resolved or resolved anonymous, the redirect decision is captured
// so a later login can pick the destination back up.
func (r *Runner) requireAccess(destination string) error {
	if r.sessions == nil {
		return fmt.Errorf("%w: identity provider not configured", shared.ErrNotAuthenticated)
	}

	decision := guard.Authorize(r.sessions.Session(), destination)
	switch decision.Verdict {
	case guard.VerdictAllow:
		return nil
	case guard.VerdictPending:
		return fmt.Errorf("%w: session still resolving, try again", shared.ErrNotAuthenticated)
	default:
		r.resume.Capture(decision)
		return fmt.Errorf("%w: run 'relic auth login' first", shared.ErrNotAuthenticated)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
