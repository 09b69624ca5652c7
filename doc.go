// Package indieauth implements the client side of the IndieAuth
// decentralized identity protocol: endpoint discovery for a user's
// profile URL, authorization server confirmation after authentication,
// and the surrounding token lifecycle operations.
//
// The central entry point is Client. Given a profile URL it locates the
// authorization, token and metadata endpoints the URL declares (via
// HTTP Link headers, HTML <link> markup, or an IndieAuth server
// metadata document), verifies that a server issuing an identity
// assertion is actually entitled to speak for that identity, and caches
// discovery results to avoid repeated round-trips.
//
// # Example Usage
//
//	client := indieauth.NewClient(indieauth.Config{
//	    Cache: memory.New(),
//	})
//
//	result := client.DiscoverEndpoints(ctx, "https://example.com/", nil)
//	if !result.Success {
//	    return fmt.Errorf("discovery failed: %s", result.ErrorMessage)
//	}
//	// Use result.AuthorizationEndpoint, result.TokenEndpoint, ...
//
// After the browser redirect round-trip completes, confirm the server
// that answered is allowed to claim the returned identity:
//
//	confirmation := client.ConfirmAuthorizationServer(ctx, result, returnedMe, canonicalMe)
//	if !confirmation.Success {
//	    return fmt.Errorf("rejected: %s", confirmation.ErrorMessage)
//	}
//
// Expected failures (unreachable hosts, malformed responses, missing
// endpoints, security rejections) are reported as typed result values,
// never as errors; see DiscoveryResult and ConfirmationResult.
package indieauth
