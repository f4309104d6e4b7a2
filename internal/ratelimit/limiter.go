// Package ratelimit admits requests per client over a trailing time window.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a sliding-window limiter keyed by client id. Only timestamps
// inside the window are retained; rejected requests are not recorded.
type Limiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	clients map[string][]time.Time
}

type Option func(*Limiter)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a limiter admitting at most limit requests per client within window.
// A limit of zero disables limiting.
func New(limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		limit:   limit,
		window:  window,
		now:     time.Now,
		clients: make(map[string][]time.Time),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit reports whether clientID may make another request now and records it if so.
func (l *Limiter) Admit(clientID string) bool {
	if l.limit <= 0 {
		return true
	}

	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	stamps := prune(l.clients[clientID], now.Add(-l.window))
	if len(stamps) >= l.limit {
		l.clients[clientID] = stamps
		return false
	}
	l.clients[clientID] = append(stamps, now)
	return true
}

// Remaining returns how many more requests clientID may make in the current window.
func (l *Limiter) Remaining(clientID string) int {
	if l.limit <= 0 {
		return -1
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	n := l.limit - len(prune(l.clients[clientID], now.Add(-l.window)))
	if n < 0 {
		return 0
	}
	return n
}

// Sweep drops clients with no request inside the window and returns how many were removed.
func (l *Limiter) Sweep() int {
	cutoff := l.now().Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, stamps := range l.clients {
		stamps = prune(stamps, cutoff)
		if len(stamps) == 0 {
			delete(l.clients, id)
			removed++
			continue
		}
		l.clients[id] = stamps
	}
	return removed
}

// Clients returns the number of tracked clients.
func (l *Limiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

// prune drops timestamps at or before cutoff. Stamps are in ascending order.
func prune(stamps []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(stamps) && !stamps[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return stamps
	}
	kept := make([]time.Time, len(stamps)-i)
	copy(kept, stamps[i:])
	return kept
}
