package indieauth

import (
	"time"
)

// DiscoveryMethod identifies which discovery tier produced a result.
// The tiers form a strict precedence order; keeping this a closed enum
// (rather than a string) lets each tier be tested exhaustively.
type DiscoveryMethod int

const (
	// MethodUnknown is the zero value, used on failed results.
	MethodUnknown DiscoveryMethod = iota

	// MethodMetadataLinkHeader means an indieauth-metadata relation was
	// found in an HTTP Link response header.
	MethodMetadataLinkHeader

	// MethodMetadataHTMLLink means an indieauth-metadata relation was
	// found in HTML <link> markup.
	MethodMetadataHTMLLink

	// MethodLegacyLinkHeader means the authorization_endpoint and
	// token_endpoint relation pair was found in HTTP Link headers.
	MethodLegacyLinkHeader

	// MethodLegacyHTMLLink means the legacy relation pair was found in
	// HTML <link> markup.
	MethodLegacyHTMLLink

	// MethodCached means the result was served from the discovery cache
	// with no network requests.
	MethodCached
)

// String returns the method name for logging and metrics attributes.
func (m DiscoveryMethod) String() string {
	switch m {
	case MethodMetadataLinkHeader:
		return "metadata_link_header"
	case MethodMetadataHTMLLink:
		return "metadata_html_link"
	case MethodLegacyLinkHeader:
		return "legacy_link_header"
	case MethodLegacyHTMLLink:
		return "legacy_html_link"
	case MethodCached:
		return "cached"
	default:
		return "unknown"
	}
}

// DiscoveryResult is the record produced by every discovery attempt.
// It is immutable once returned; the cache re-tags copies, never the
// stored value. The struct is JSON-serializable so callers can persist
// it across the authorization redirect round-trip.
type DiscoveryResult struct {
	// Success reports whether two valid endpoints were located.
	Success bool `json:"success"`

	// AuthorizationEndpoint is the discovered authorization endpoint URL.
	AuthorizationEndpoint string `json:"authorization_endpoint,omitempty"`

	// TokenEndpoint is the discovered token endpoint URL.
	TokenEndpoint string `json:"token_endpoint,omitempty"`

	// ErrorMessage describes the failure when Success is false.
	ErrorMessage string `json:"error_message,omitempty"`

	// ErrorCategory classifies the failure (input, network, protocol,
	// security) when Success is false.
	ErrorCategory ErrorCategory `json:"error_category,omitempty"`

	// Issuer is the issuer identifier from the metadata document, when
	// metadata discovery was used.
	Issuer string `json:"issuer,omitempty"`

	// UserinfoEndpoint is the optional userinfo endpoint URL.
	UserinfoEndpoint string `json:"userinfo_endpoint,omitempty"`

	// RevocationEndpoint is the optional token revocation endpoint URL.
	RevocationEndpoint string `json:"revocation_endpoint,omitempty"`

	// IntrospectionEndpoint is the optional token introspection endpoint URL.
	IntrospectionEndpoint string `json:"introspection_endpoint,omitempty"`

	// ScopesSupported lists the scopes the server advertises.
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// CodeChallengeMethodsSupported lists the PKCE challenge methods the
	// server advertises.
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported,omitempty"`

	// Method is the discovery tier that produced this result.
	Method DiscoveryMethod `json:"method"`

	// DiscoveredAt is when discovery completed.
	DiscoveredAt time.Time `json:"discovered_at,omitempty"`

	// DiscoveredURLs is the redirect chain visited while fetching the
	// profile URL, in visit order, final URL included. Confirmation uses
	// it to accept identities that moved during discovery without a
	// second network round-trip.
	DiscoveredURLs []string `json:"discovered_urls,omitempty"`

	// OriginalURL is the canonicalized profile URL discovery started from.
	OriginalURL string `json:"original_url,omitempty"`
}

// Clone returns a copy of the result with its slices duplicated. The
// cache layer stores and returns clones, so neither the "override
// Method on read" behavior nor caller mutations can reach a stored
// entry.
func (r *DiscoveryResult) Clone() *DiscoveryResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.ScopesSupported != nil {
		out.ScopesSupported = append([]string(nil), r.ScopesSupported...)
	}
	if r.CodeChallengeMethodsSupported != nil {
		out.CodeChallengeMethodsSupported = append([]string(nil), r.CodeChallengeMethodsSupported...)
	}
	if r.DiscoveredURLs != nil {
		out.DiscoveredURLs = append([]string(nil), r.DiscoveredURLs...)
	}
	return &out
}

// ConfirmationMethod identifies which check accepted an identity claim.
type ConfirmationMethod int

const (
	// ConfirmationUnknown is the zero value, used on failures and on
	// skipped issuer validation.
	ConfirmationUnknown ConfirmationMethod = iota

	// ConfirmationExactMatch means the returned identity equals the
	// canonicalized input URL.
	ConfirmationExactMatch

	// ConfirmationRedirectChainMatch means the returned identity was
	// visited during the original discovery's redirect chain.
	ConfirmationRedirectChainMatch

	// ConfirmationReDiscoveryMatch means re-discovery of the returned
	// identity yielded the same authorization endpoint as the original.
	ConfirmationReDiscoveryMatch
)

// String returns the confirmation method name for logging and metrics.
func (m ConfirmationMethod) String() string {
	switch m {
	case ConfirmationExactMatch:
		return "exact_match"
	case ConfirmationRedirectChainMatch:
		return "redirect_chain_match"
	case ConfirmationReDiscoveryMatch:
		return "rediscovery_match"
	default:
		return "unknown"
	}
}

// ConfirmationResult reports whether an authorization server is
// entitled to claim the identity it returned, and which check decided.
type ConfirmationResult struct {
	// Success reports whether the identity claim was accepted.
	Success bool `json:"success"`

	// ErrorMessage describes the rejection when Success is false.
	ErrorMessage string `json:"error_message,omitempty"`

	// ErrorCategory classifies the rejection. Security rejections
	// indicate a potential impersonation attempt, not a misconfiguration.
	ErrorCategory ErrorCategory `json:"error_category,omitempty"`

	// Method is the check that accepted the claim.
	Method ConfirmationMethod `json:"method"`
}

// ServerMetadata is the IndieAuth server metadata document, a profile
// of OAuth 2.0 Authorization Server Metadata (RFC 8414).
type ServerMetadata struct {
	// Issuer is the authorization server's issuer identifier URL.
	Issuer string `json:"issuer"`

	// AuthorizationEndpoint is the URL of the authorization endpoint.
	AuthorizationEndpoint string `json:"authorization_endpoint"`

	// TokenEndpoint is the URL of the token endpoint.
	TokenEndpoint string `json:"token_endpoint"`

	// IntrospectionEndpoint is the URL of the token introspection endpoint (RFC 7662).
	IntrospectionEndpoint string `json:"introspection_endpoint,omitempty"`

	// RevocationEndpoint is the URL of the token revocation endpoint (RFC 7009).
	RevocationEndpoint string `json:"revocation_endpoint,omitempty"`

	// UserinfoEndpoint is the URL of the userinfo endpoint.
	UserinfoEndpoint string `json:"userinfo_endpoint,omitempty"`

	// ScopesSupported lists the scope values the server supports.
	ScopesSupported []string `json:"scopes_supported,omitempty"`

	// CodeChallengeMethodsSupported lists the PKCE code challenge methods supported.
	CodeChallengeMethodsSupported []string `json:"code_challenge_methods_supported,omitempty"`
}

// IntrospectionResponse is a token introspection response (RFC 7662)
// extended with the IndieAuth "me" claim.
type IntrospectionResponse struct {
	// Active reports whether the token is currently valid.
	Active bool `json:"active"`

	// Me is the profile URL the token was issued for.
	Me string `json:"me,omitempty"`

	// ClientID is the client the token was issued to.
	ClientID string `json:"client_id,omitempty"`

	// Scope is the space-separated scope the token carries.
	Scope string `json:"scope,omitempty"`

	// Exp is the expiration time as a Unix timestamp.
	Exp int64 `json:"exp,omitempty"`

	// Iat is the issue time as a Unix timestamp.
	Iat int64 `json:"iat,omitempty"`
}

// UserInfo is the profile information returned by a userinfo endpoint.
type UserInfo struct {
	// Name is the user's display name.
	Name string `json:"name,omitempty"`

	// URL is the user's profile URL.
	URL string `json:"url,omitempty"`

	// Photo is the user's avatar URL.
	Photo string `json:"photo,omitempty"`

	// Email is the user's email address, if the email scope was granted.
	Email string `json:"email,omitempty"`
}
