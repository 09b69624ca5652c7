package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if inst.config.ServiceName != DefaultServiceName {
		t.Errorf("service name = %q, want %q", inst.config.ServiceName, DefaultServiceName)
	}
	if inst.config.ServiceVersion != DefaultServiceVersion {
		t.Errorf("service version = %q, want %q", inst.config.ServiceVersion, DefaultServiceVersion)
	}
	if inst.Metrics() == nil {
		t.Error("metrics holder is nil")
	}
	if inst.MeterProvider() == nil || inst.TracerProvider() == nil {
		t.Error("providers are nil, want no-op defaults")
	}
}

func TestRecordingWithNoopProviders(t *testing.T) {
	ctx := context.Background()

	inst, err := New(Config{ServiceName: "test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Recording against no-op instruments must be safe.
	m := inst.Metrics()
	m.RecordDiscovery(ctx, "metadata_link_header", true, 42*time.Millisecond)
	m.RecordDiscovery(ctx, "unknown", false, time.Millisecond)
	m.RecordMetadataFetch(ctx)
	m.RecordHTTPFetch(ctx, "GET")
	m.RecordCacheHit(ctx)
	m.RecordCacheMiss(ctx)
	m.RecordConfirmation(ctx, "exact_match", true)
	m.RecordRateLimitExceeded(ctx)
}

func TestRegisterCacheSizeCallback(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := inst.RegisterCacheSizeCallback(nil); err == nil {
		t.Error("no error for a nil callback")
	}

	if err := inst.RegisterCacheSizeCallback(func() int64 { return 7 }); err != nil {
		t.Errorf("RegisterCacheSizeCallback: %v", err)
	}
}

func TestShutdownIdempotent(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	if err := inst.Shutdown(ctx); err != nil {
		t.Errorf("first Shutdown: %v", err)
	}
	if err := inst.Shutdown(ctx); err != nil {
		t.Errorf("second Shutdown: %v", err)
	}
}

func TestScopedNames(t *testing.T) {
	inst, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if inst.Meter("cache") == nil {
		t.Error("Meter returned nil")
	}
	if inst.Tracer("client") == nil {
		t.Error("Tracer returned nil")
	}
}
