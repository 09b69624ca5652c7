package indieauth

import (
	"net/url"
	"strings"
)

// Canonicalize normalizes user input into a canonical profile URL:
//
//   - bare-host shorthand ("example.com") gets an https:// scheme
//   - the host is lowercased (path case is server-defined and preserved)
//   - an empty path becomes "/"
//   - the fragment is stripped
//   - scheme, port, query string and non-empty paths pass through verbatim
//
// Canonicalize is idempotent. Empty input is returned unchanged; callers
// must guard for it.
func Canonicalize(input string) string {
	if input == "" {
		return input
	}

	if !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := url.Parse(input)
	if err != nil {
		return input
	}

	u.Host = strings.ToLower(u.Host)
	if u.Path == "" {
		u.Path = "/"
	}
	u.Fragment = ""
	u.RawFragment = ""

	return u.String()
}

// CacheKey normalizes a canonicalized profile URL into a discovery
// cache key: lowercase with one trailing slash stripped, so URLs
// differing only by host case or trailing slash collide.
func CacheKey(profileURL string) string {
	key := strings.ToLower(profileURL)
	return strings.TrimSuffix(key, "/")
}
