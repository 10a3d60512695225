package llmclient

import (
	"context"
	"sync"
	"time"
)

// FakeClient is a scripted in-memory Client for tests: it records calls and
// plays back a fixed response or error.
type FakeClient struct {
	ClientName string
	Response   string
	Err        error
	Delay      time.Duration

	mu       sync.Mutex
	calls    int
	lastUser string
}

func (f *FakeClient) Name() string {
	if f.ClientName == "" {
		return "fake"
	}
	return f.ClientName
}

func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Complete(ctx context.Context, system, user string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastUser = user
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// Calls reports how many times Complete ran.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// LastUser returns the user prompt of the most recent call.
func (f *FakeClient) LastUser() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUser
}
