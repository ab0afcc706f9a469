package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/aethra/haven/internal/config"
)

type attempt struct {
	count        int
	blockedUntil time.Time
}

// LoginLimiter counts failed logins per key. A key that fails MaxAttempts
// times inside the window is blocked for the block duration; entries expire
// on their own.
type LoginLimiter struct {
	cache  *ccache.Cache[*attempt]
	mu     sync.Mutex
	max    int
	window time.Duration
	block  time.Duration
}

// NewLoginLimiter creates a limiter from the auth settings
func NewLoginLimiter(cfg config.AuthConfig) *LoginLimiter {
	max := cfg.MaxLoginAttempts
	if max <= 0 {
		max = 5
	}
	window := time.Duration(cfg.LoginWindowMins) * time.Minute
	if window <= 0 {
		window = 5 * time.Minute
	}
	block := time.Duration(cfg.LoginBlockMins) * time.Minute
	if block <= 0 {
		block = 15 * time.Minute
	}
	return &LoginLimiter{
		cache:  ccache.New(ccache.Configure[*attempt]().MaxSize(10000)),
		max:    max,
		window: window,
		block:  block,
	}
}

// Key builds the limiter key of a login request
func Key(ip, email string) string {
	return ip + "|" + strings.ToLower(strings.TrimSpace(email))
}

// Allow reports whether key may try again, and if not, for how long it waits
func (l *LoginLimiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.cache.Get(key)
	if item == nil || item.Expired() {
		return true, 0
	}
	if wait := time.Until(item.Value().blockedUntil); wait > 0 {
		return false, wait
	}
	return true, 0
}

// Fail records a failed attempt and returns the attempts left before a block
func (l *LoginLimiter) Fail(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	item := l.cache.Get(key)
	if item == nil || item.Expired() {
		item = nil
	}

	a := &attempt{}
	if item != nil {
		a = item.Value()
	}
	a.count++

	if a.count >= l.max {
		a.blockedUntil = time.Now().Add(l.block)
		l.cache.Set(key, a, l.block)
		return 0
	}
	if item == nil {
		l.cache.Set(key, a, l.window)
	}
	return l.max - a.count
}

// Reset forgets key after a successful login
func (l *LoginLimiter) Reset(key string) {
	l.cache.Delete(key)
}

// Stop releases the cache's background worker
func (l *LoginLimiter) Stop() {
	l.cache.Stop()
}
