package security

import (
	"log/slog"
	"time"
)

// Auditor logs security-relevant events. Unlike ordinary debug
// logging, audit events mark potential impersonation attempts and are
// meant to feed alerting, so they are emitted at Warn level with a
// fixed message and structured fields.
type Auditor struct {
	logger  *slog.Logger
	enabled bool
}

// NewAuditor creates a security auditor.
func NewAuditor(logger *slog.Logger, enabled bool) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		logger:  logger,
		enabled: enabled,
	}
}

// Event is one security audit event.
type Event struct {
	Type       string
	ProfileURL string
	Details    map[string]any
	Timestamp  time.Time
}

// LogEvent logs a security event.
func (a *Auditor) LogEvent(event Event) {
	if !a.enabled {
		return
	}

	event.Timestamp = time.Now()

	a.logger.Warn("security_audit",
		"event_type", event.Type,
		"profile_url", event.ProfileURL,
		"details", event.Details,
		"timestamp", event.Timestamp,
	)
}

// LogConfirmationMismatch logs a rejected identity claim: the
// authorization endpoint declared by the returned identity does not
// match the endpoint found during the original discovery.
func (a *Auditor) LogConfirmationMismatch(returnedMe, claimedEndpoint, originalEndpoint string) {
	a.LogEvent(Event{
		Type:       EventConfirmationMismatch,
		ProfileURL: returnedMe,
		Details: map[string]any{
			"claimed_endpoint":  claimedEndpoint,
			"original_endpoint": originalEndpoint,
		},
	})
}

// LogIssuerMismatch logs a failed issuer validation on the
// authentication callback.
func (a *Auditor) LogIssuerMismatch(expected, received string) {
	a.LogEvent(Event{
		Type: EventIssuerMismatch,
		Details: map[string]any{
			"expected_issuer": expected,
			"received_issuer": received,
		},
	})
}

// LogRateLimitExceeded logs a fetch rejected by the outbound rate
// limiter.
func (a *Auditor) LogRateLimitExceeded(host string) {
	a.LogEvent(Event{
		Type: EventRateLimitExceeded,
		Details: map[string]any{
			"host": host,
		},
	})
}
