package http

import (
	"sync"
	"time"
)

// Mutation endpoints are capped per client IP; reads are never limited.
const (
	rateLimitMax    = 60
	rateLimitWindow = time.Minute
	rateSweepEvery  = 5 * time.Minute
	rateEntryTTL    = 10 * time.Minute
)

// rateLimiter counts requests per client IP. The counter restarts once a
// full window has elapsed since the window opened.
type rateLimiter struct {
	mu   sync.Mutex
	seen map[string]*ipWindow
	done chan struct{}
	once sync.Once
}

type ipWindow struct {
	start time.Time
	last  time.Time
	count int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		seen: make(map[string]*ipWindow),
		done: make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// allow records one request from ip and reports whether it stays within the
// per-window cap.
func (rl *rateLimiter) allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w := rl.seen[ip]
	if w == nil || now.Sub(w.start) >= rateLimitWindow {
		rl.seen[ip] = &ipWindow{start: now, last: now, count: 1}
		return true
	}

	w.count++
	w.last = now
	return w.count <= rateLimitMax
}

// sweep drops IPs that have been quiet long enough that their window no
// longer matters, keeping the map bounded.
func (rl *rateLimiter) sweep() {
	ticker := time.NewTicker(rateSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rateEntryTTL)
			rl.mu.Lock()
			for ip, w := range rl.seen {
				if w.last.Before(cutoff) {
					delete(rl.seen, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}
