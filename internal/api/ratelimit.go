package api

import (
	"log/slog"
	"sync"
	"time"
)

// Limiter is a sliding-window in-memory rate limiter. A client that
// exceeds the limit within the window is blocked outright for the block
// duration before its window is consulted again.
type Limiter struct {
	limit    int
	window   time.Duration
	blockFor time.Duration

	mu      sync.Mutex
	hits    map[string][]time.Time
	blocked map[string]time.Time

	now    func() time.Time // test seam
	logger *slog.Logger
}

// NewLimiter creates a rate limiter.
func NewLimiter(limit int, window, blockFor time.Duration, logger *slog.Logger) *Limiter {
	return &Limiter{
		limit:    limit,
		window:   window,
		blockFor: blockFor,
		hits:     make(map[string][]time.Time),
		blocked:  make(map[string]time.Time),
		now:      time.Now,
		logger:   logger.With("component", "rate_limiter"),
	}
}

// Allow records a request from the given client and reports whether it
// may proceed.
func (l *Limiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if until, ok := l.blocked[client]; ok {
		if now.Before(until) {
			return false
		}
		delete(l.blocked, client)
	}

	// Drop hits that have slid out of the window.
	hits := l.hits[client]
	cutoff := now.Add(-l.window)
	for len(hits) > 0 && hits[0].Before(cutoff) {
		hits = hits[1:]
	}

	if len(hits) >= l.limit {
		l.blocked[client] = now.Add(l.blockFor)
		l.hits[client] = hits
		l.logger.Warn("rate limit exceeded", "client", client, "blocked_until", l.blocked[client])
		return false
	}

	l.hits[client] = append(hits, now)
	return true
}
