package ratelimit

import (
	"sync"
	"time"

	"github.com/sadaqat12/snapconnect/pkg/config"
	"golang.org/x/time/rate"
)

// Limiter decides whether a user may perform another mutating call.
type Limiter interface {
	Allow(userID string) bool
}

// InMemoryLimiter keeps one token bucket per user.
type InMemoryLimiter struct {
	users map[string]*rate.Limiter
	mu    sync.Mutex
	r     rate.Limit
	b     int
}

// NewInMemoryLimiter allows requests per `per`, with bursts of up to burst.
// A non-positive requests disables limiting.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	r := rate.Inf
	if requests > 0 && per > 0 {
		r = rate.Every(per / time.Duration(requests))
	}
	if burst <= 0 {
		burst = 1
	}
	return &InMemoryLimiter{
		users: make(map[string]*rate.Limiter),
		r:     r,
		b:     burst,
	}
}

func New(cfg *config.Config) *InMemoryLimiter {
	return NewInMemoryLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Per, cfg.RateLimit.Burst)
}

var _ Limiter = (*InMemoryLimiter)(nil)

func (l *InMemoryLimiter) Allow(userID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.users[userID]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.users[userID] = limiter
	}

	return limiter.Allow()
}
