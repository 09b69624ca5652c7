package indieauth

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ConfirmAuthorizationServer verifies that the server which issued an
// identity assertion is entitled to speak for the returned identity
// URL. The endpoint answering for an identity may legitimately differ
// from what the user typed (subdomain delegation, path-based multi-user
// services), so naive string equality would reject valid flows while no
// check at all would allow endpoint confusion.
//
// Ordered checks, first success wins:
//
//  1. the canonicalized returned URL equals the canonicalized input
//  2. the returned URL appears in the original discovery's redirect
//     chain (no network needed)
//  3. re-discovery of the returned URL yields the same authorization
//     endpoint as the original discovery
//
// A re-discovered authorization endpoint that differs from the original
// is the security-critical rejection: an attacker's server cannot claim
// an identity whose real authorization endpoint is not the attacker's.
func (c *Client) ConfirmAuthorizationServer(ctx context.Context, original *DiscoveryResult, returnedMe, canonicalizedInput string) *ConfirmationResult {
	ctx, span := c.tracer.Start(ctx, "indieauth.confirm")
	defer span.End()

	if original == nil || !original.Success {
		span.SetStatus(codes.Error, "original discovery not successful")
		return failedConfirmation(CategoryInput, "original discovery result is required and must be successful")
	}
	if strings.TrimSpace(returnedMe) == "" {
		span.SetStatus(codes.Error, "returned identity missing")
		return failedConfirmation(CategoryInput, "returned identity URL is required")
	}

	returned := Canonicalize(returnedMe)
	span.SetAttributes(attribute.String("indieauth.returned_me", returned))

	if strings.EqualFold(returned, canonicalizedInput) {
		return c.confirmed(ctx, ConfirmationExactMatch)
	}

	for _, visited := range original.DiscoveredURLs {
		if strings.EqualFold(Canonicalize(visited), returned) {
			return c.confirmed(ctx, ConfirmationRedirectChainMatch)
		}
	}

	// The cache is deliberately not bypassed here: a cached original
	// discovery is state the remote server cannot influence, and it
	// keeps confirmation cheap.
	rediscovery := c.DiscoverEndpoints(ctx, returned, nil)
	if !rediscovery.Success {
		span.SetStatus(codes.Error, rediscovery.ErrorMessage)
		return failedConfirmation(rediscovery.ErrorCategory,
			fmt.Sprintf("re-discovery of returned identity failed: %s", rediscovery.ErrorMessage))
	}

	if strings.EqualFold(rediscovery.AuthorizationEndpoint, original.AuthorizationEndpoint) {
		return c.confirmed(ctx, ConfirmationReDiscoveryMatch)
	}

	message := fmt.Sprintf("authorization endpoint mismatch: %q declares %q but the original discovery found %q",
		returned, rediscovery.AuthorizationEndpoint, original.AuthorizationEndpoint)
	span.SetStatus(codes.Error, message)
	c.auditor.LogConfirmationMismatch(returned, rediscovery.AuthorizationEndpoint, original.AuthorizationEndpoint)
	if c.metrics != nil {
		c.metrics.RecordConfirmation(ctx, ConfirmationUnknown.String(), false)
	}
	return failedConfirmation(CategorySecurity, message)
}

func (c *Client) confirmed(ctx context.Context, method ConfirmationMethod) *ConfirmationResult {
	if c.metrics != nil {
		c.metrics.RecordConfirmation(ctx, method.String(), true)
	}
	return &ConfirmationResult{Success: true, Method: method}
}

// ValidateIssuer compares the issuer recorded during discovery with the
// iss parameter received on the authentication callback. The comparison
// is ordinal and case-sensitive, unlike the host matching used
// elsewhere: issuer identifiers are exact strings per RFC 8414.
//
// A missing received issuer when one was expected is a failure. A
// missing expected issuer (legacy discovery with no metadata document)
// skips validation entirely, since there is no baseline to check
// against.
func (c *Client) ValidateIssuer(expected, received string) *ConfirmationResult {
	if expected == "" {
		return &ConfirmationResult{Success: true, Method: ConfirmationUnknown}
	}

	if received == "" {
		c.auditor.LogIssuerMismatch(expected, received)
		return failedConfirmation(CategorySecurity,
			fmt.Sprintf("issuer parameter missing from callback, expected %q", expected))
	}

	if expected != received {
		c.auditor.LogIssuerMismatch(expected, received)
		return failedConfirmation(CategorySecurity,
			fmt.Sprintf("issuer mismatch: expected %q, received %q", expected, received))
	}

	return &ConfirmationResult{Success: true, Method: ConfirmationUnknown}
}
