package indieauth

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ProfileURLErrorCode identifies why a profile URL was rejected.
type ProfileURLErrorCode string

const (
	// ProfileURLValid means the URL passed every check.
	ProfileURLValid ProfileURLErrorCode = ""

	// ProfileURLNullOrEmpty means the input was empty or whitespace.
	ProfileURLNullOrEmpty ProfileURLErrorCode = "null_or_empty"

	// ProfileURLMalformed means the input is not a well-formed absolute URL.
	ProfileURLMalformed ProfileURLErrorCode = "malformed_url"

	// ProfileURLInvalidScheme means the scheme is not http or https.
	ProfileURLInvalidScheme ProfileURLErrorCode = "invalid_scheme"

	// ProfileURLMissingPath means the URL has no path component at all.
	ProfileURLMissingPath ProfileURLErrorCode = "missing_path"

	// ProfileURLDotPathSegment means the path contains a "." or ".." segment.
	ProfileURLDotPathSegment ProfileURLErrorCode = "dot_path_segment"

	// ProfileURLContainsFragment means the URL has a fragment.
	ProfileURLContainsFragment ProfileURLErrorCode = "contains_fragment"

	// ProfileURLContainsUsername means the URL has userinfo with a username.
	ProfileURLContainsUsername ProfileURLErrorCode = "contains_username"

	// ProfileURLContainsPassword means the URL has a password without a username.
	ProfileURLContainsPassword ProfileURLErrorCode = "contains_password"

	// ProfileURLContainsPort means the URL spells out a port, default ports included.
	ProfileURLContainsPort ProfileURLErrorCode = "contains_port"

	// ProfileURLHostIsIPv4 means the host is an IPv4 literal.
	ProfileURLHostIsIPv4 ProfileURLErrorCode = "host_is_ipv4_address"

	// ProfileURLHostIsIPv6 means the host is a bracketed IPv6 literal.
	ProfileURLHostIsIPv6 ProfileURLErrorCode = "host_is_ipv6_address"
)

// ProfileURLValidationResult is the outcome of ValidateProfileURL.
type ProfileURLValidationResult struct {
	// Valid reports whether the URL is acceptable as a profile URL.
	Valid bool `json:"valid"`

	// ErrorCode identifies the first failed check.
	ErrorCode ProfileURLErrorCode `json:"error_code,omitempty"`

	// ErrorMessage is a human-readable description of the failure.
	ErrorMessage string `json:"error_message,omitempty"`
}

func invalidProfileURL(code ProfileURLErrorCode, message string) *ProfileURLValidationResult {
	return &ProfileURLValidationResult{
		Valid:        false,
		ErrorCode:    code,
		ErrorMessage: message,
	}
}

// ValidateProfileURL checks that a URL has the narrow shape the
// IndieAuth protocol requires for identity URLs. It is pure and
// performs no I/O. Checks run in a fixed order and the first failure
// wins, so error reporting is deterministic.
//
// Query strings, deep paths, internationalized hosts and hidden-file
// style segments (".hidden") are all valid. Hostnames like "localhost"
// are valid; only IP literals are rejected.
func ValidateProfileURL(profileURL string) *ProfileURLValidationResult {
	if strings.TrimSpace(profileURL) == "" {
		return invalidProfileURL(ProfileURLNullOrEmpty, "profile URL is empty")
	}

	u, err := url.Parse(profileURL)
	if err != nil || !u.IsAbs() {
		return invalidProfileURL(ProfileURLMalformed, fmt.Sprintf("%q is not a well-formed absolute URL", profileURL))
	}

	// Scheme is checked before the host so that non-web schemes like
	// mailto: (which have no host at all) report the scheme problem.
	if u.Scheme != "http" && u.Scheme != "https" {
		return invalidProfileURL(ProfileURLInvalidScheme, fmt.Sprintf("scheme must be http or https, got %q", u.Scheme))
	}

	if u.Host == "" {
		return invalidProfileURL(ProfileURLMalformed, fmt.Sprintf("%q has no host", profileURL))
	}

	if u.Path == "" {
		return invalidProfileURL(ProfileURLMissingPath, "profile URL must have a path component")
	}

	for _, segment := range strings.Split(u.Path, "/") {
		if segment == "." || segment == ".." {
			return invalidProfileURL(ProfileURLDotPathSegment, "path must not contain single-dot or double-dot segments")
		}
	}

	if u.Fragment != "" {
		return invalidProfileURL(ProfileURLContainsFragment, "profile URL must not contain a fragment")
	}

	if u.User != nil {
		if u.User.Username() != "" {
			return invalidProfileURL(ProfileURLContainsUsername, "profile URL must not contain a username")
		}
		if _, set := u.User.Password(); set {
			return invalidProfileURL(ProfileURLContainsPassword, "profile URL must not contain a password")
		}
	}

	if u.Port() != "" {
		return invalidProfileURL(ProfileURLContainsPort, "profile URL must not contain a port")
	}

	// Hostname() strips IPv6 brackets, so ParseIP sees the bare literal.
	if ip := net.ParseIP(u.Hostname()); ip != nil {
		if ip.To4() != nil {
			return invalidProfileURL(ProfileURLHostIsIPv4, "host must be a domain name, not an IPv4 address")
		}
		return invalidProfileURL(ProfileURLHostIsIPv6, "host must be a domain name, not an IPv6 address")
	}

	return &ProfileURLValidationResult{Valid: true}
}
