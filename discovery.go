package indieauth

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/indienet/indieauth/linkrel"
)

// Link relations consulted during discovery, in precedence order.
const (
	// RelMetadata is the indieauth-metadata link relation pointing at a
	// server metadata document.
	RelMetadata = "indieauth-metadata"

	// RelAuthorizationEndpoint is the legacy authorization endpoint relation.
	RelAuthorizationEndpoint = "authorization_endpoint"

	// RelTokenEndpoint is the legacy token endpoint relation.
	RelTokenEndpoint = "token_endpoint"
)

// maxBodySize bounds the profile and metadata bodies read into memory.
const maxBodySize = 1 << 20

// DiscoverEndpoints locates the authorization, token and optional
// metadata endpoints for a profile URL.
//
// Precedence, highest first: indieauth-metadata in HTTP Link headers,
// indieauth-metadata in HTML markup, the legacy
// authorization_endpoint + token_endpoint pair in Link headers, the
// same pair in HTML. The first satisfied tier wins; later tiers are not
// consulted even when they would yield different URLs.
//
// A configured cache short-circuits the whole network path: a hit is
// returned re-tagged MethodCached with zero requests issued. Successful
// results are cached; failures never are.
//
// All expected failures (bad input, unreachable hosts, failure status
// codes, malformed metadata, exhausted precedence) come back as a
// failed DiscoveryResult, never as a panic or error value.
func (c *Client) DiscoverEndpoints(ctx context.Context, profileURL string, opts *DiscoverOptions) *DiscoveryResult {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, "indieauth.discover")
	defer span.End()

	if strings.TrimSpace(profileURL) == "" {
		span.SetStatus(codes.Error, ErrMsgProfileURLRequired)
		return failedDiscovery(CategoryInput, ErrMsgProfileURLRequired)
	}

	if opts == nil {
		opts = &DiscoverOptions{UseHeadOptimization: c.useHead}
	}

	canonical := Canonicalize(profileURL)
	span.SetAttributes(attribute.String("indieauth.profile_url", canonical))

	if c.cache != nil && !opts.BypassCache {
		cached, ok, err := c.cache.Get(ctx, canonical)
		if err != nil {
			c.logger.Warn("Discovery cache read failed", "profile_url", canonical, "error", err)
		} else if ok {
			c.logger.Debug("Discovery cache hit", "profile_url", canonical)
			if c.metrics != nil {
				c.metrics.RecordCacheHit(ctx)
			}
			out := cached.Clone()
			out.Method = MethodCached
			return out
		}
		if c.metrics != nil {
			c.metrics.RecordCacheMiss(ctx)
		}
	}

	result := c.discover(ctx, canonical, opts)

	if result.Success && c.cache != nil {
		ttl := opts.CacheExpiration
		if ttl <= 0 {
			ttl = c.cacheTTL
		}
		if err := c.cache.Set(ctx, canonical, result, ttl); err != nil {
			c.logger.Warn("Discovery cache write failed", "profile_url", canonical, "error", err)
		}
	}

	if c.metrics != nil {
		c.metrics.RecordDiscovery(ctx, result.Method.String(), result.Success, time.Since(start))
	}

	if result.Success {
		span.SetAttributes(attribute.String("indieauth.method", result.Method.String()))
		c.logger.Info("IndieAuth discovery successful",
			"profile_url", canonical,
			"method", result.Method.String(),
			"authorization_endpoint", result.AuthorizationEndpoint,
			"token_endpoint", result.TokenEndpoint)
	} else {
		span.SetStatus(codes.Error, result.ErrorMessage)
		c.logger.Debug("IndieAuth discovery failed",
			"profile_url", canonical,
			"category", string(result.ErrorCategory),
			"error", result.ErrorMessage)
	}

	return result
}

// discover runs the network portion of the algorithm against a
// canonicalized profile URL.
func (c *Client) discover(ctx context.Context, canonical string, opts *DiscoverOptions) *DiscoveryResult {
	if !c.allowHost(ctx, canonical) {
		return failedDiscovery(CategoryNetwork, fmt.Sprintf("rate limit exceeded for host %q", canonical))
	}

	if opts.UseHeadOptimization {
		if result := c.tryHead(ctx, canonical); result != nil {
			return result
		}
	}

	resp, chain, err := c.fetch(ctx, http.MethodGet, canonical)
	if err != nil {
		return failedDiscovery(CategoryNetwork, fmt.Sprintf("Failed to fetch profile URL: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failedDiscovery(CategoryProtocol, fmt.Sprintf("Profile URL returned %d", resp.StatusCode))
	}

	// Relative endpoint URLs resolve against the URL that finally
	// answered, not the one the user typed.
	base := resp.Request.URL

	headerRels := linkrel.Parse(resp.Header.Values("Link"))

	var htmlRels []linkrel.Relation
	mediatype, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediatype == "text/html" {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		if readErr != nil {
			return failedDiscovery(CategoryNetwork, fmt.Sprintf("Failed to read profile URL body: %v", readErr))
		}
		htmlRels = linkrel.ParseHTML(bytes.NewReader(body))
	}

	if mdURL, ok := linkrel.FindFirstByRel(headerRels, RelMetadata); ok {
		return c.fetchMetadata(ctx, linkrel.ResolveURL(mdURL, base), MethodMetadataLinkHeader, chain, canonical)
	}
	if mdURL, ok := linkrel.FindFirstByRel(htmlRels, RelMetadata); ok {
		return c.fetchMetadata(ctx, linkrel.ResolveURL(mdURL, base), MethodMetadataHTMLLink, chain, canonical)
	}
	if result := legacyResult(headerRels, base, MethodLegacyLinkHeader, chain, canonical); result != nil {
		return result
	}
	if result := legacyResult(htmlRels, base, MethodLegacyHTMLLink, chain, canonical); result != nil {
		return result
	}

	return failedDiscovery(CategoryProtocol, ErrMsgNoEndpointsFound)
}

// tryHead issues the optional HEAD request. It returns a result only
// when the Link headers alone decide discovery; nil means inconclusive
// and the caller proceeds with GET. A failed HEAD is deliberately not a
// failure, and a successful HEAD with no usable Link headers records no
// fallback signal before the GET re-fetch.
func (c *Client) tryHead(ctx context.Context, canonical string) *DiscoveryResult {
	resp, chain, err := c.fetch(ctx, http.MethodHead, canonical)
	if err != nil {
		c.logger.Debug("HEAD optimization failed, falling back to GET", "profile_url", canonical, "error", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("HEAD optimization returned non-success, falling back to GET",
			"profile_url", canonical, "status", resp.StatusCode)
		return nil
	}

	base := resp.Request.URL
	rels := linkrel.Parse(resp.Header.Values("Link"))

	// HEAD has no body, so only the Link headers can be consulted.
	if mdURL, ok := linkrel.FindFirstByRel(rels, RelMetadata); ok {
		return c.fetchMetadata(ctx, linkrel.ResolveURL(mdURL, base), MethodMetadataLinkHeader, chain, canonical)
	}
	if result := legacyResult(rels, base, MethodLegacyLinkHeader, chain, canonical); result != nil {
		return result
	}

	return nil
}

// legacyResult builds a result from the authorization_endpoint +
// token_endpoint relation pair. Both must be present; a lone endpoint
// is not usable and yields nil so the next tier is consulted.
func legacyResult(rels []linkrel.Relation, base *url.URL, method DiscoveryMethod, chain []string, canonical string) *DiscoveryResult {
	authURL, authOK := linkrel.FindFirstByRel(rels, RelAuthorizationEndpoint)
	tokenURL, tokenOK := linkrel.FindFirstByRel(rels, RelTokenEndpoint)
	if !authOK || !tokenOK {
		return nil
	}

	return &DiscoveryResult{
		Success:               true,
		AuthorizationEndpoint: linkrel.ResolveURL(authURL, base),
		TokenEndpoint:         linkrel.ResolveURL(tokenURL, base),
		Method:                method,
		DiscoveredAt:          time.Now(),
		DiscoveredURLs:        chain,
		OriginalURL:           canonical,
	}
}
