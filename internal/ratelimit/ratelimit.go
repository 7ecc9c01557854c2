// Package ratelimit provides the process-wide pacing gate shared by every outbound call.
package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Limiter serializes outbound calls so that consecutive Wait returns are at
// least one interval apart. It has no burst allowance and is safe for
// concurrent use.
type Limiter struct {
	interval time.Duration
	limiter  *rate.Limiter
	acquired atomic.Uint64

	gate       chan struct{} // held while a caller is being paced
	lastReturn time.Time
}

// New returns a Limiter pacing calls at interval. A non-positive interval disables pacing.
func New(interval time.Duration) *Limiter {
	l := &Limiter{gate: make(chan struct{}, 1)}
	if interval <= 0 {
		l.limiter = rate.NewLimiter(rate.Inf, 1)
		return l
	}
	l.interval = interval
	l.limiter = rate.NewLimiter(rate.Every(interval), 1)
	return l
}

// Wait blocks until at least one interval has passed since the previous Wait returned,
// or until ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	select {
	case l.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.gate }()

	// rate spaces the scheduled slots, the floor below spaces the actual returns
	if err := l.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := l.sleepUntil(ctx, l.lastReturn.Add(l.interval)); err != nil {
		return err
	}

	l.lastReturn = time.Now()
	l.acquired.Add(1)
	return nil
}

func (l *Limiter) sleepUntil(ctx context.Context, deadline time.Time) error {
	for {
		d := time.Until(deadline)
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// last returns when the most recent Wait returned.
func (l *Limiter) last() time.Time {
	l.gate <- struct{}{}
	defer func() { <-l.gate }()
	return l.lastReturn
}

// Interval returns the configured pacing interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

// Acquired returns how many times the gate has been passed.
func (l *Limiter) Acquired() uint64 {
	return l.acquired.Load()
}

// Middleware returns a resty request middleware that passes the gate with the request context.
func (l *Limiter) Middleware() resty.RequestMiddleware {
	return func(_ *resty.Client, r *resty.Request) error {
		return l.Wait(r.Context())
	}
}

// Attach registers the gate on client so that every request it sends is paced.
func (l *Limiter) Attach(client *resty.Client) *resty.Client {
	return client.OnBeforeRequest(l.Middleware())
}
