package main

import (
	"bytes"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/rashed-dev/relic/internal/identity"
	"github.com/rashed-dev/relic/internal/models"
	"github.com/rashed-dev/relic/internal/shared"
	tu "github.com/rashed-dev/relic/internal/testing"
)

// sessionsFor builds a resolved SessionStore; a nil identity settles anonymous.
func sessionsFor(t *testing.T, id *models.Identity) *identity.SessionStore {
	t.Helper()

	client := tu.NewFakeIdentityClient()
	sessions := identity.NewSessionStore(client, shared.NewLogger(nil))
	if err := sessions.Initialize(); err != nil {
		t.Fatalf("failed to initialize sessions: %v", err)
	}
	t.Cleanup(sessions.Close)

	client.Report(id)
	return sessions
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("With All Dependencies Provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.resume == nil {
				t.Error("expected a resume buffer")
			}
		})

		t.Run("With Nil Config Uses Defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("With Nil Logger Uses Default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("With Nil Output Uses Stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("With Nil HTTPClient Uses Default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("Writes Formatted JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("Writes Compact JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("Handles Marshal Error With Non-Serializable Data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("Handles Write Failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("Writes Formatted Text", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("Handles Write Failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlainln Pads With Newlines", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlainln("done"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "\ndone\n" {
			t.Errorf("expected padded line, got %q", output.String())
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("requireAccess", func(t *testing.T) {
		t.Run("Allows An Authenticated Session", func(t *testing.T) {
			sessions := sessionsFor(t, &models.Identity{SubjectID: "uid-alice", Email: "alice@example.com"})
			runner := NewRunner(RunnerOpts{Sessions: sessions, Output: &bytes.Buffer{}})

			if err := runner.requireAccess("artifacts add"); err != nil {
				t.Errorf("expected access, got %v", err)
			}
		})

		t.Run("Refuses While Still Resolving", func(t *testing.T) {
			client := tu.NewFakeIdentityClient()
			sessions := identity.NewSessionStore(client, shared.NewLogger(nil))
			if err := sessions.Initialize(); err != nil {
				t.Fatalf("failed to initialize sessions: %v", err)
			}
			t.Cleanup(sessions.Close)

			runner := NewRunner(RunnerOpts{Sessions: sessions, Output: &bytes.Buffer{}})

			err := runner.requireAccess("artifacts add")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
			if !strings.Contains(err.Error(), "resolving") {
				t.Errorf("expected a resolving hint, got %v", err)
			}
			if dest := runner.resume.Take(); dest != "" {
				t.Errorf("expected no captured destination while pending, got %q", dest)
			}
		})

		t.Run("Captures The Destination For An Anonymous Session", func(t *testing.T) {
			sessions := sessionsFor(t, nil)
			runner := NewRunner(RunnerOpts{Sessions: sessions, Output: &bytes.Buffer{}})

			err := runner.requireAccess("artifacts like a1")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
			if dest := runner.resume.Take(); dest != "artifacts like a1" {
				t.Errorf("expected the destination captured, got %q", dest)
			}
			if dest := runner.resume.Take(); dest != "" {
				t.Errorf("expected the capture consumed, got %q", dest)
			}
		})

		t.Run("Refuses Without A Session Store", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.requireAccess("artifacts add")
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	})
}
