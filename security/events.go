package security

// Event type constants for security audit logging. Constants keep
// event names consistent across the codebase and prevent typos.
const (
	// EventConfirmationMismatch is logged when re-discovery of a
	// returned identity yields a different authorization endpoint than
	// the original discovery. This is the impersonation rejection path.
	EventConfirmationMismatch = "confirmation_mismatch"

	// EventIssuerMismatch is logged when the issuer received on the
	// authentication callback differs from the issuer recorded during
	// discovery, or is missing when one was expected.
	EventIssuerMismatch = "issuer_mismatch"

	// EventRateLimitExceeded is logged when an outbound fetch is
	// rejected by the per-host rate limiter.
	EventRateLimitExceeded = "rate_limit_exceeded"
)
