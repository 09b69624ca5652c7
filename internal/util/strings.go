// Package util provides small shared helpers that don't belong to a
// domain-specific package.
package util

import (
	"net/url"
	"strings"
)

// SafeTruncate truncates a string to maxLen characters without
// panicking. Used when logging token material, where only a prefix
// should ever appear.
func SafeTruncate(s string, maxLen int) string {
	if maxLen < 0 {
		return ""
	}
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// HostOf returns the host (without port) of a URL, or the input
// unchanged when it does not parse. Used as the rate limiter key.
func HostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return strings.ToLower(rawURL)
	}
	return strings.ToLower(u.Hostname())
}
