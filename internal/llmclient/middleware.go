package llmclient

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"
)

// Middleware decorates a Client to inject cross-cutting concerns
// (rate limiting, logging).
type Middleware func(Client) Client

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner Client, mws ...Middleware) Client {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// RateLimit bounds request rate with a token bucket.
// If rps <= 0, the limiter is disabled.
func RateLimit(rps float64, burst int) Middleware {
	return func(next Client) Client {
		var lim *rate.Limiter
		if rps > 0 {
			if burst < 1 {
				burst = 1
			}
			lim = rate.NewLimiter(rate.Limit(rps), burst)
		}
		return &rateLimited{next: next, lim: lim}
	}
}

type rateLimited struct {
	next Client
	lim  *rate.Limiter
}

func (c *rateLimited) Name() string { return c.next.Name() }
func (c *rateLimited) Close() error { return c.next.Close() }

func (c *rateLimited) Complete(ctx context.Context, system, user string) (string, error) {
	if c.lim != nil {
		if err := c.lim.Wait(ctx); err != nil {
			return "", err
		}
	}
	return c.next.Complete(ctx, system, user)
}

// WithLogging logs request size, duration and errors. Provide a custom
// logger or nil to use log.Default().
func WithLogging(logger *log.Logger) Middleware {
	if logger == nil {
		logger = log.Default()
	}
	return func(next Client) Client {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next Client
	log  *log.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Complete(ctx context.Context, system, user string) (string, error) {
	start := time.Now()
	l.log.Printf("llm request (%s): %d bytes", l.next.Name(), len(system)+len(user))
	out, err := l.next.Complete(ctx, system, user)
	if err != nil {
		l.log.Printf("llm error (%s) after %s: %v", l.next.Name(), time.Since(start).Round(time.Millisecond), err)
		return "", err
	}
	l.log.Printf("llm ok (%s): %d bytes in %s", l.next.Name(), len(out), time.Since(start).Round(time.Millisecond))
	return out, nil
}
