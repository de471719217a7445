package api

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	maxTrackedClients = 10_000
	clientIdleTTL     = 10 * time.Minute
)

type clientEntry struct {
	limiter *rate.Limiter
	seen    time.Time
}

// clientLimiter keeps one token bucket per client key.
type clientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	perMinute int
	clients   map[string]*clientEntry
	now       func() time.Time
}

func newClientLimiter(perMinute, burst int) *clientLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &clientLimiter{
		limit:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:     burst,
		perMinute: perMinute,
		clients:   make(map[string]*clientEntry),
		now:       time.Now,
	}
}

func (c *clientLimiter) allow(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.clients[key]
	if !ok {
		if len(c.clients) >= maxTrackedClients {
			c.evictIdle(now)
		}
		e = &clientEntry{limiter: rate.NewLimiter(c.limit, c.burst)}
		c.clients[key] = e
	}
	e.seen = now
	return e.limiter.AllowN(now, 1)
}

// evictIdle drops clients idle past the TTL, or everything if that frees nothing.
func (c *clientLimiter) evictIdle(now time.Time) {
	for k, e := range c.clients {
		if now.Sub(e.seen) > clientIdleTTL {
			delete(c.clients, k)
		}
	}
	if len(c.clients) >= maxTrackedClients {
		clear(c.clients)
	}
}

// retryAfterSeconds is the time for one token to refill, rounded up.
func (c *clientLimiter) retryAfterSeconds() int {
	return int(math.Max(1, math.Ceil(60/float64(c.perMinute))))
}

func (c *clientLimiter) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}
