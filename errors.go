package indieauth

// ErrorCategory classifies expected failures on result values.
//
// The categories matter operationally: network failures are usually
// transient, protocol failures indicate a misconfigured site, and
// security failures indicate a potential impersonation attempt and
// should be alerted on, not retried.
type ErrorCategory string

const (
	// CategoryNone is the zero value, present on successful results.
	CategoryNone ErrorCategory = ""

	// CategoryInput marks missing or malformed caller input.
	CategoryInput ErrorCategory = "input"

	// CategoryNetwork marks connection failures and timeouts, as opposed
	// to well-formed HTTP responses with failure status codes.
	CategoryNetwork ErrorCategory = "network"

	// CategoryProtocol marks well-formed responses that are unusable:
	// failure status codes, malformed JSON, missing required fields, or
	// discovery precedence exhausted with no endpoints found.
	CategoryProtocol ErrorCategory = "protocol"

	// CategorySecurity marks confirmation and issuer rejections.
	CategorySecurity ErrorCategory = "security"
)

// Shared failure messages. Kept as constants so tests and callers can
// match on them without duplicating strings.
const (
	// ErrMsgProfileURLRequired is returned when discovery is invoked
	// with an empty profile URL.
	ErrMsgProfileURLRequired = "Profile URL is required"

	// ErrMsgNoEndpointsFound is returned when every discovery tier was
	// consulted and none produced an endpoint pair.
	ErrMsgNoEndpointsFound = "No IndieAuth endpoints found"

	// ErrMsgMetadataMissingEndpoints is returned when a metadata
	// document lacks authorization_endpoint or token_endpoint.
	ErrMsgMetadataMissingEndpoints = "Metadata missing required endpoints"
)

func failedDiscovery(category ErrorCategory, message string) *DiscoveryResult {
	return &DiscoveryResult{
		Success:       false,
		ErrorMessage:  message,
		ErrorCategory: category,
		Method:        MethodUnknown,
	}
}

func failedConfirmation(category ErrorCategory, message string) *ConfirmationResult {
	return &ConfirmationResult{
		Success:       false,
		ErrorMessage:  message,
		ErrorCategory: category,
		Method:        ConfirmationUnknown,
	}
}
