// Package ratelimit keeps one token bucket per key, such as a client IP or a
// chat user, and forgets keys that have been idle.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idle keys are swept at most this often
const sweepEvery = time.Minute

// Keyed is a set of token buckets sharing one rate.
type Keyed struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyed allows each key perSecond events with the given burst. Keys idle
// for longer than idle are dropped.
func NewKeyed(perSecond float64, burst int, idle time.Duration) *Keyed {
	return &Keyed{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		idle:    idle,
		now:     time.Now,
		clients: make(map[string]*client),
	}
}

// Allow reports whether key may proceed now.
func (k *Keyed) Allow(key string) bool {
	ok, _ := k.Reserve(key)
	return ok
}

// Reserve reports whether key may proceed now and, if not, how long until
// it may.
func (k *Keyed) Reserve(key string) (bool, time.Duration) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	k.sweep(now)
	c, ok := k.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.clients[key] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, 0
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.clients)
}

func (k *Keyed) sweep(now time.Time) {
	if k.idle <= 0 || now.Sub(k.lastSweep) < sweepEvery {
		return
	}
	k.lastSweep = now
	for key, c := range k.clients {
		if now.Sub(c.lastSeen) > k.idle {
			delete(k.clients, key)
		}
	}
}
