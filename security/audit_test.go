package security

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newCapturedLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestAuditorDisabled(t *testing.T) {
	logger, buf := newCapturedLogger()
	a := NewAuditor(logger, false)

	a.LogConfirmationMismatch("https://example.com/", "https://evil.example.net/auth", "https://auth.example.com/auth")
	a.LogIssuerMismatch("https://a.example.com/", "https://b.example.com/")
	a.LogRateLimitExceeded("example.com")

	if buf.Len() != 0 {
		t.Errorf("disabled auditor wrote output: %s", buf.String())
	}
}

func TestAuditorConfirmationMismatch(t *testing.T) {
	logger, buf := newCapturedLogger()
	a := NewAuditor(logger, true)

	a.LogConfirmationMismatch("https://example.com/", "https://evil.example.net/auth", "https://auth.example.com/auth")

	out := buf.String()
	if !strings.Contains(out, "security_audit") {
		t.Errorf("output missing the audit marker: %s", out)
	}
	if !strings.Contains(out, EventConfirmationMismatch) {
		t.Errorf("output missing the event type: %s", out)
	}
	if !strings.Contains(out, "evil.example.net") {
		t.Errorf("output missing the claimed endpoint: %s", out)
	}
	if !strings.Contains(out, "level=WARN") {
		t.Errorf("audit events must log at warn level: %s", out)
	}
}

func TestAuditorIssuerMismatch(t *testing.T) {
	logger, buf := newCapturedLogger()
	a := NewAuditor(logger, true)

	a.LogIssuerMismatch("https://expected.example.com/", "https://received.example.com/")

	out := buf.String()
	if !strings.Contains(out, EventIssuerMismatch) {
		t.Errorf("output missing the event type: %s", out)
	}
	if !strings.Contains(out, "expected.example.com") || !strings.Contains(out, "received.example.com") {
		t.Errorf("output missing issuer details: %s", out)
	}
}

func TestAuditorRateLimitExceeded(t *testing.T) {
	logger, buf := newCapturedLogger()
	a := NewAuditor(logger, true)

	a.LogRateLimitExceeded("example.com")

	out := buf.String()
	if !strings.Contains(out, EventRateLimitExceeded) {
		t.Errorf("output missing the event type: %s", out)
	}
	if !strings.Contains(out, "example.com") {
		t.Errorf("output missing the host: %s", out)
	}
}

func TestAuditorNilLoggerDefaults(t *testing.T) {
	a := NewAuditor(nil, false)
	// Must not panic.
	a.LogRateLimitExceeded("example.com")
}
