// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/rashed-dev/relic/internal/models"
)

// FakeIdentityClient is a test double for [identity.Client]. Stream reports
// are driven manually through Report unless AutoReport is set, so tests can
// interleave call resolutions and provider reports.
type FakeIdentityClient struct {
	mu   sync.Mutex
	subs map[int]func(*models.Identity)
	next int

	Err          error            // returned by every call while set
	Identity     *models.Identity // reported on successful sign-in when AutoReport
	AutoReport   bool             // fire the stream report from the call itself
	Unsubscribed int              // times an unsubscribe func ran
}

func NewFakeIdentityClient() *FakeIdentityClient {
	return &FakeIdentityClient{subs: map[int]func(*models.Identity){}}
}

// Report fans an identity (nil for anonymous) out to every subscriber, as the
// provider's change stream would.
func (f *FakeIdentityClient) Report(id *models.Identity) {
	f.mu.Lock()
	fns := make([]func(*models.Identity), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
}

func (f *FakeIdentityClient) CreateAccount(ctx context.Context, email, password string) error {
	return f.resolve(f.Identity)
}

func (f *FakeIdentityClient) SignIn(ctx context.Context, email, password string) error {
	return f.resolve(f.Identity)
}

func (f *FakeIdentityClient) SignInFederated(ctx context.Context) error {
	return f.resolve(f.Identity)
}

func (f *FakeIdentityClient) SignOut(ctx context.Context) error {
	return f.resolve(nil)
}

func (f *FakeIdentityClient) resolve(report *models.Identity) error {
	if f.Err != nil {
		return f.Err
	}
	if f.AutoReport {
		f.Report(report)
	}
	return nil
}

func (f *FakeIdentityClient) OnSessionChange(fn func(*models.Identity)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.Unsubscribed++
		f.mu.Unlock()
	}
}

// Subscribers returns the current subscription count.
func (f *FakeIdentityClient) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}
