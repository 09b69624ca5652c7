package security

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// defaultMaxHosts bounds the number of hosts tracked simultaneously
	// so a discovery crawl over many profiles cannot grow the limiter
	// map without bound.
	defaultMaxHosts = 10000

	// idleEviction is how long a host limiter may sit unused before it
	// is eligible for pruning.
	idleEviction = 10 * time.Minute
)

// hostLimiter tracks a limiter and its last access time.
type hostLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter applies a token-bucket limit to outbound discovery
// fetches, per target host. It protects the sites being discovered
// against request storms from misbehaving callers, not the local
// process. Safe for concurrent use.
type RateLimiter struct {
	mu       sync.Mutex
	hosts    map[string]*hostLimiter
	rate     int
	burst    int
	maxHosts int
	logger   *slog.Logger
}

// NewRateLimiter creates a per-host rate limiter. A zero or negative
// requestsPerSecond disables limiting; a zero burst defaults to the
// rate.
func NewRateLimiter(requestsPerSecond, burst int, logger *slog.Logger) *RateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	if burst <= 0 {
		burst = requestsPerSecond
	}

	return &RateLimiter{
		hosts:    make(map[string]*hostLimiter),
		rate:     requestsPerSecond,
		burst:    burst,
		maxHosts: defaultMaxHosts,
		logger:   logger,
	}
}

// Allow reports whether a request to the given host may proceed now.
func (r *RateLimiter) Allow(host string) bool {
	if r.rate <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, ok := r.hosts[host]
	if !ok {
		if len(r.hosts) >= r.maxHosts {
			r.pruneLocked(now)
		}
		entry = &hostLimiter{limiter: rate.NewLimiter(rate.Limit(r.rate), r.burst)}
		r.hosts[host] = entry
	}
	entry.lastAccess = now

	allowed := entry.limiter.Allow()
	if !allowed {
		r.logger.Warn("Outbound rate limit exceeded", "host", host, "rate", r.rate, "burst", r.burst)
	}
	return allowed
}

// pruneLocked drops limiters that have been idle past the eviction
// window. Called with the mutex held when the map is full.
func (r *RateLimiter) pruneLocked(now time.Time) {
	evicted := 0
	for host, entry := range r.hosts {
		if now.Sub(entry.lastAccess) > idleEviction {
			delete(r.hosts, host)
			evicted++
		}
	}

	r.logger.Debug("Pruned idle host rate limiters", "evicted", evicted, "remaining", len(r.hosts))
}

// Size returns the number of hosts currently tracked.
func (r *RateLimiter) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.hosts)
}
