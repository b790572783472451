// Package ratelimit keeps per-client token buckets shared by the REST and
// gRPC transports, so a client cannot double its budget by switching
// protocols.
package ratelimit

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit allows Requests per Window for each client. Zero Requests disables it.
type Limit struct {
	Requests int
	Window   time.Duration
}

func (l Limit) enabled() bool {
	return l.Requests > 0 && l.Window > 0
}

// Limiter keeps one token bucket per client key. A bucket holds Requests
// tokens and refills over Window, so a client can burst the full allowance
// and then continues at the average rate.
type Limiter struct {
	limit   Limit
	mu      sync.Mutex
	clients map[string]*client
	swept   time.Time
	now     func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func New(limit Limit) *Limiter {
	return &Limiter{
		limit:   limit,
		clients: make(map[string]*client),
		now:     time.Now,
	}
}

// Enabled reports whether the limiter ever rejects anything.
func (l *Limiter) Enabled() bool {
	return l != nil && l.limit.enabled()
}

// RetryAfter is the hint sent to rejected clients.
func (l *Limiter) RetryAfter() time.Duration {
	return l.limit.Window
}

// Allow takes one token from key's bucket.
func (l *Limiter) Allow(key string) bool {
	if !l.Enabled() {
		return true
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	// Buckets idle for a whole window are full again and can be dropped.
	if now.Sub(l.swept) > l.limit.Window {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > l.limit.Window {
				delete(l.clients, k)
			}
		}
		l.swept = now
	}

	c, ok := l.clients[key]
	if !ok {
		every := rate.Every(l.limit.Window / time.Duration(l.limit.Requests))
		c = &client{limiter: rate.NewLimiter(every, l.limit.Requests)}
		l.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Policy groups the buckets applied to every request (Global), to
// register and login together (Auth) and to salt lookups (Salt).
type Policy struct {
	Global *Limiter
	Auth   *Limiter
	Salt   *Limiter
}

func NewPolicy(global, auth, salt Limit) *Policy {
	return &Policy{Global: New(global), Auth: New(auth), Salt: New(salt)}
}

// DefaultPolicy returns the production limits: 300 requests overall, 10
// register or login attempts and 30 salt lookups per 15 minutes.
func DefaultPolicy() *Policy {
	const window = 15 * time.Minute
	return NewPolicy(
		Limit{Requests: 300, Window: window},
		Limit{Requests: 10, Window: window},
		Limit{Requests: 30, Window: window},
	)
}

// HostKey strips the port from a network address so all connections from
// one host share a bucket.
func HostKey(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}
