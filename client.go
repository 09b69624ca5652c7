package indieauth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/indienet/indieauth/instrumentation"
	"github.com/indienet/indieauth/internal/util"
	"github.com/indienet/indieauth/security"
)

// Client implements IndieAuth endpoint discovery, authorization server
// confirmation, and the token lifecycle operations. It is stateless
// between calls apart from the configured cache and is safe for
// concurrent use.
type Client struct {
	httpClient *http.Client
	cache      Cache
	cacheTTL   time.Duration
	useHead    bool

	limiter *security.RateLimiter
	auditor *security.Auditor

	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *instrumentation.Metrics
}

// NewClient creates a client from the given configuration, applying
// defaults for anything unset.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		httpClient: httpClient,
		cache:      cfg.Cache,
		cacheTTL:   cacheTTL,
		useHead:    cfg.UseHeadOptimization,
		auditor:    security.NewAuditor(logger, cfg.Audit.Enabled),
		logger:     logger,
		tracer:     tracenoop.NewTracerProvider().Tracer("github.com/indienet/indieauth"),
	}

	if cfg.RateLimit.RequestsPerSecond > 0 {
		c.limiter = security.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	}

	if cfg.Instrumentation != nil {
		c.tracer = cfg.Instrumentation.Tracer("client")
		c.metrics = cfg.Instrumentation.Metrics()
	}

	return c
}

// fetch issues a single request and records every URL visited through
// redirects. The chain starts with the request URL itself, so the
// response's final URL is always the last element.
func (c *Client) fetch(ctx context.Context, method, rawURL string) (*http.Response, []string, error) {
	chain := []string{rawURL}

	// Shallow-copy the client so the redirect hook stays scoped to this
	// request; a shared CheckRedirect would race across callers.
	client := *c.httpClient
	prev := c.httpClient.CheckRedirect
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		chain = append(chain, req.URL.String())
		if prev != nil {
			return prev(req, via)
		}
		if len(via) >= 10 {
			return errors.New("stopped after 10 redirects")
		}
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, chain, err
	}
	req.Header.Set("Accept", "text/html, application/json")
	req.Header.Set("User-Agent", userAgent)

	if c.metrics != nil {
		c.metrics.RecordHTTPFetch(ctx, method)
	}

	resp, err := client.Do(req)
	return resp, chain, err
}

// allowHost consults the outbound rate limiter for the given URL's host.
func (c *Client) allowHost(ctx context.Context, rawURL string) bool {
	if c.limiter == nil {
		return true
	}

	host := util.HostOf(rawURL)
	if c.limiter.Allow(host) {
		return true
	}

	c.auditor.LogRateLimitExceeded(host)
	if c.metrics != nil {
		c.metrics.RecordRateLimitExceeded(ctx)
	}
	return false
}

const userAgent = "indieauth-client/1.0 (+https://github.com/indienet/indieauth)"
