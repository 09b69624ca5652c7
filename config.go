package indieauth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/indienet/indieauth/instrumentation"
)

const (
	// DefaultCacheTTL is how long successful discovery results are
	// cached when no expiration is configured.
	DefaultCacheTTL = 5 * time.Minute

	// DefaultHTTPTimeout is the timeout applied to the default HTTP
	// client when the caller does not supply one.
	DefaultHTTPTimeout = 10 * time.Second
)

// Config holds the client configuration.
// Structured using composition for better organization and maintainability.
type Config struct {
	// HTTPClient is the HTTP client used for all outbound requests.
	// If not provided, a default client with a 10s timeout is used.
	// Can be used to add timeouts, logging, proxies, etc.
	HTTPClient *http.Client

	// Cache stores successful discovery results. Nil disables caching.
	Cache Cache

	// CacheTTL is the default TTL for cached discovery results.
	// Default: 5 minutes.
	CacheTTL time.Duration

	// UseHeadOptimization makes discovery try an HTTP HEAD before the
	// GET, saving the body transfer when endpoints are advertised in
	// Link headers. A HEAD that fails or carries no usable Link headers
	// silently falls through to GET.
	UseHeadOptimization bool

	// RateLimit bounds outbound discovery fetches per target host.
	RateLimit RateLimitConfig

	// Audit controls security event logging.
	Audit AuditConfig

	// Logger for structured logging (optional, uses default if not provided).
	Logger *slog.Logger

	// Instrumentation provides OpenTelemetry metrics and tracing
	// (optional; nil disables instrumentation).
	Instrumentation *instrumentation.Instrumentation
}

// RateLimitConfig holds outbound rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the allowed request rate per target host.
	// Zero disables limiting.
	RequestsPerSecond int

	// Burst is the maximum burst size allowed per host.
	Burst int
}

// AuditConfig holds security audit logging configuration.
type AuditConfig struct {
	// Enabled turns on audit logging of security rejections
	// (confirmation mismatches, issuer mismatches, rate limiting).
	Enabled bool
}

// DiscoverOptions are per-call discovery options. A nil options value
// uses the client defaults.
type DiscoverOptions struct {
	// UseHeadOptimization overrides the client-level HEAD setting.
	UseHeadOptimization bool

	// BypassCache skips the cache lookup. The successful result is
	// still written back to the cache.
	BypassCache bool

	// CacheExpiration overrides the TTL for the cache write.
	// Zero uses the client default.
	CacheExpiration time.Duration
}
