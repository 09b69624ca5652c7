package instrumentation

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the IndieAuth client.
type Metrics struct {
	// Discovery metrics
	DiscoveryRequestsTotal metric.Int64Counter
	DiscoveryDuration      metric.Float64Histogram
	MetadataFetchesTotal   metric.Int64Counter
	HTTPFetchesTotal       metric.Int64Counter

	// Cache metrics
	CacheHitsTotal    metric.Int64Counter
	CacheMissesTotal  metric.Int64Counter
	CacheEntriesCount metric.Int64ObservableGauge

	// Confirmation metrics
	ConfirmationsTotal metric.Int64Counter

	// Security metrics
	RateLimitExceededTotal metric.Int64Counter
}

// newMetrics creates and registers all metric instruments.
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	clientMeter := inst.Meter("client")
	cacheMeter := inst.Meter("cache")

	var err error
	m.DiscoveryRequestsTotal, err = clientMeter.Int64Counter(
		"indieauth.discovery.requests.total",
		metric.WithDescription("Total number of discovery attempts"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery.requests.total counter: %w", err)
	}

	m.DiscoveryDuration, err = clientMeter.Float64Histogram(
		"indieauth.discovery.duration",
		metric.WithDescription("Discovery duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery.duration histogram: %w", err)
	}

	m.MetadataFetchesTotal, err = clientMeter.Int64Counter(
		"indieauth.discovery.metadata_fetches.total",
		metric.WithDescription("Number of server metadata documents fetched"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery.metadata_fetches.total counter: %w", err)
	}

	m.HTTPFetchesTotal, err = clientMeter.Int64Counter(
		"indieauth.http.fetches.total",
		metric.WithDescription("Number of profile URL fetches issued"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http.fetches.total counter: %w", err)
	}

	m.CacheHitsTotal, err = cacheMeter.Int64Counter(
		"indieauth.cache.hits.total",
		metric.WithDescription("Discovery cache hits"),
		metric.WithUnit("{hit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache.hits.total counter: %w", err)
	}

	m.CacheMissesTotal, err = cacheMeter.Int64Counter(
		"indieauth.cache.misses.total",
		metric.WithDescription("Discovery cache misses"),
		metric.WithUnit("{miss}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache.misses.total counter: %w", err)
	}

	m.CacheEntriesCount, err = cacheMeter.Int64ObservableGauge(
		"indieauth.cache.entries",
		metric.WithDescription("Current number of live discovery cache entries"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache.entries gauge: %w", err)
	}

	m.ConfirmationsTotal, err = clientMeter.Int64Counter(
		"indieauth.confirmations.total",
		metric.WithDescription("Authorization server confirmation attempts"),
		metric.WithUnit("{confirmation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create confirmations.total counter: %w", err)
	}

	m.RateLimitExceededTotal, err = clientMeter.Int64Counter(
		"indieauth.ratelimit.exceeded.total",
		metric.WithDescription("Outbound fetches rejected by the per-host rate limiter"),
		metric.WithUnit("{rejection}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ratelimit.exceeded.total counter: %w", err)
	}

	return m, nil
}

// RecordDiscovery records one completed discovery attempt.
func (m *Metrics) RecordDiscovery(ctx context.Context, method string, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", success),
	)
	m.DiscoveryRequestsTotal.Add(ctx, 1, attrs)
	m.DiscoveryDuration.Record(ctx, float64(duration.Milliseconds()),
		metric.WithAttributes(attribute.String("method", method)))
}

// RecordMetadataFetch records one metadata document fetch.
func (m *Metrics) RecordMetadataFetch(ctx context.Context) {
	m.MetadataFetchesTotal.Add(ctx, 1)
}

// RecordHTTPFetch records one profile URL fetch.
func (m *Metrics) RecordHTTPFetch(ctx context.Context, httpMethod string) {
	m.HTTPFetchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("http.method", httpMethod)))
}

// RecordCacheHit records a discovery cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	m.CacheHitsTotal.Add(ctx, 1)
}

// RecordCacheMiss records a discovery cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	m.CacheMissesTotal.Add(ctx, 1)
}

// RecordConfirmation records one confirmation attempt.
func (m *Metrics) RecordConfirmation(ctx context.Context, method string, success bool) {
	m.ConfirmationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.Bool("success", success),
	))
}

// RecordRateLimitExceeded records an outbound fetch rejected by the
// rate limiter.
func (m *Metrics) RecordRateLimitExceeded(ctx context.Context) {
	m.RateLimitExceededTotal.Add(ctx, 1)
}
