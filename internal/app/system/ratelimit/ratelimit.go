// Package ratelimit throttles admin sign-in attempts per client IP and per
// email with fixed windows held in memory.
//
// The client IP is the connection's remote address. Proxy headers are
// client-controlled, so they only count when the router rewrites
// RemoteAddr from them (chi middleware.RealIP, mounted when
// trust_proxy_headers is set behind a proxy that overwrites them).
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Limiter counts hits per key in fixed windows. Safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	windows map[string]window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	count     int
	expiresAt time.Time
}

// sweepAt is the map size above which Allow drops expired windows.
const sweepAt = 1024

// New allows limit hits per key in each period.
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		windows: make(map[string]window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Allow records a hit for key and reports whether it is within the limit.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if len(l.windows) > sweepAt {
		for k, w := range l.windows {
			if now.After(w.expiresAt) {
				delete(l.windows, k)
			}
		}
	}

	w, ok := l.windows[key]
	if !ok || now.After(w.expiresAt) {
		l.windows[key] = window{count: 1, expiresAt: now.Add(l.period)}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	l.windows[key] = w
	return true
}

// Reset forgets key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
}

// ClientIP is the remote address without its port. Headers are ignored.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// Messages shown when a sign-in attempt is refused.
const (
	MsgTooManyFromIP     = "Too many login attempts. Please wait a minute before trying again."
	MsgTooManyForAccount = "Too many login attempts for this account. Please wait a few minutes."
)

// LoginLimiter combines an IP limit and an email limit.
type LoginLimiter struct {
	ip    *Limiter
	email *Limiter
}

// NewLoginLimiter allows 10 attempts per IP per minute and 5 per email per
// five minutes.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{ip: New(10, time.Minute), email: New(5, 5*time.Minute)}
}

// Check records an attempt and returns "" when it may proceed, otherwise
// the message to show.
func (ll *LoginLimiter) Check(r *http.Request, email string) string {
	if !ll.ip.Allow(ClientIP(r)) {
		return MsgTooManyFromIP
	}
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" && !ll.email.Allow(key) {
		return MsgTooManyForAccount
	}
	return ""
}

// Succeeded clears the email window after a good sign-in.
func (ll *LoginLimiter) Succeeded(email string) {
	if key := strings.ToLower(strings.TrimSpace(email)); key != "" {
		ll.email.Reset(key)
	}
}
