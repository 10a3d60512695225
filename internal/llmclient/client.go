// Package llmclient holds thin clients for the completion providers the
// engine can call. Each client makes exactly one network call per Complete
// and returns the provider's raw text; cross-cutting concerns (rate
// limiting, logging) are layered on with Middleware, and JSON extraction
// from the raw text lives in ExtractJSONObject.
package llmclient

import (
	"context"
	"errors"
)

// Client is the narrow provider contract the orchestrator depends on.
type Client interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
	Close() error
}

var (
	// ErrEmptyCompletion signals a 2xx response that carried no usable text.
	ErrEmptyCompletion = errors.New("empty completion from provider")
	// ErrNoJSONObject signals completion text with no balanced JSON object.
	ErrNoJSONObject = errors.New("no JSON object in completion text")
)

// PermanentError marks a provider rejection that will not resolve by trying
// again with the same payload (e.g. context length exceeded).
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	return &PermanentError{Err: err}
}
