package indieauth

import (
	"context"
	"time"
)

// Cache stores successful discovery results keyed by canonicalized
// profile URL. Implementations must normalize keys with CacheKey and
// must be safe for concurrent use; see cache/memory and cache/valkey.
//
// The cache is passed in explicitly via Config rather than held as
// process-global state, so cache lifetime and test isolation stay under
// the caller's control.
type Cache interface {
	// Get returns the stored result for a profile URL. The boolean
	// reports presence; expired entries are treated as absent. The
	// returned result must be a copy the caller may modify.
	Get(ctx context.Context, profileURL string) (*DiscoveryResult, bool, error)

	// Set stores a result under the profile URL with the given TTL.
	Set(ctx context.Context, profileURL string, result *DiscoveryResult, ttl time.Duration) error

	// Delete removes the entry for a profile URL, if present.
	Delete(ctx context.Context, profileURL string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error
}
