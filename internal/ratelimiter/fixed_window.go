package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter allows limit requests per key in each window. A key's
// window opens on its first request and is cleared by a timer when it closes.
type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
}

type window struct {
	count   int
	resetAt time.Time
}

func NewFixedWindowLimiter(limit int, w time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  w,
		now:     time.Now,
	}
}

func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	c, ok := rl.clients[key]
	if !ok || !now.Before(c.resetAt) {
		c = &window{resetAt: now.Add(rl.window)}
		rl.clients[key] = c
		time.AfterFunc(rl.window, func() { rl.reset(key, c) })
	}

	if c.count < rl.limit {
		c.count++
		return true, 0
	}
	return false, c.resetAt.Sub(now)
}

func (rl *FixedWindowRateLimiter) reset(key string, c *window) {
	rl.Lock()
	if rl.clients[key] == c {
		delete(rl.clients, key)
	}
	rl.Unlock()
}
