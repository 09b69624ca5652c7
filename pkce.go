package indieauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
)

// GenerateCodeVerifier returns a PKCE code verifier: 32 bytes of
// cryptographically secure randomness as a 43-character base64url
// string (RFC 7636 §4.1).
func GenerateCodeVerifier() string {
	return randomURLSafe(32)
}

// CodeChallengeS256 derives the S256 code challenge for a verifier
// (RFC 7636 §4.2).
func CodeChallengeS256(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// GenerateState returns a random state value for the authorization
// request, 128 bits encoded as base64url.
func GenerateState() string {
	return randomURLSafe(16)
}

// randomURLSafe panics if the system RNG fails, which indicates a
// critical system-level failure rather than a recoverable condition.
func randomURLSafe(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand.Read failed: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// AuthCodeURL assembles the authorization request URL for a discovered
// authorization endpoint. The me hint and scopes are optional.
func AuthCodeURL(authorizationEndpoint, clientID, redirectURL, state, codeChallenge, me string, scopes []string) string {
	form := url.Values{
		"response_type":         {"code"},
		"client_id":             {clientID},
		"redirect_uri":          {redirectURL},
		"state":                 {state},
		"code_challenge":        {codeChallenge},
		"code_challenge_method": {"S256"},
	}

	if me != "" {
		form.Set("me", me)
	}
	if len(scopes) > 0 {
		form.Set("scope", strings.Join(scopes, " "))
	}

	endpoint, err := url.Parse(authorizationEndpoint)
	if err != nil {
		return ""
	}

	return endpoint.ResolveReference(&url.URL{RawQuery: form.Encode()}).String()
}
