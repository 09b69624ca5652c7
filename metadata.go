package indieauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// fetchMetadata retrieves and validates an IndieAuth server metadata
// document. Metadata failures are terminal: once a metadata link was
// advertised, discovery does not fall back to the legacy relation
// tiers.
func (c *Client) fetchMetadata(ctx context.Context, metadataURL string, method DiscoveryMethod, chain []string, canonical string) *DiscoveryResult {
	ctx, span := c.tracer.Start(ctx, "indieauth.fetch_metadata")
	defer span.End()

	c.logger.Debug("Fetching IndieAuth server metadata", "url", metadataURL)
	if c.metrics != nil {
		c.metrics.RecordMetadataFetch(ctx)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, metadataURL, nil)
	if err != nil {
		return failedDiscovery(CategoryInput, fmt.Sprintf("Invalid metadata URL: %v", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failedDiscovery(CategoryNetwork, fmt.Sprintf("Failed to fetch metadata: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failedDiscovery(CategoryProtocol, fmt.Sprintf("Metadata URL returned %d", resp.StatusCode))
	}

	var md ServerMetadata
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&md); err != nil {
		return failedDiscovery(CategoryProtocol, fmt.Sprintf("Invalid metadata JSON: %v", err))
	}

	if md.AuthorizationEndpoint == "" || md.TokenEndpoint == "" {
		return failedDiscovery(CategoryProtocol, ErrMsgMetadataMissingEndpoints)
	}

	return &DiscoveryResult{
		Success:                       true,
		AuthorizationEndpoint:         md.AuthorizationEndpoint,
		TokenEndpoint:                 md.TokenEndpoint,
		Issuer:                        md.Issuer,
		UserinfoEndpoint:              md.UserinfoEndpoint,
		RevocationEndpoint:            md.RevocationEndpoint,
		IntrospectionEndpoint:         md.IntrospectionEndpoint,
		ScopesSupported:               md.ScopesSupported,
		CodeChallengeMethodsSupported: md.CodeChallengeMethodsSupported,
		Method:                        method,
		DiscoveredAt:                  time.Now(),
		DiscoveredURLs:                chain,
		OriginalURL:                   canonical,
	}
}
