package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/indienet/indieauth"
	"github.com/indienet/indieauth/internal/testutil"
)

func sampleResult(profileURL string) *indieauth.DiscoveryResult {
	return &indieauth.DiscoveryResult{
		Success:               true,
		AuthorizationEndpoint: "https://auth.example.com/authorize",
		TokenEndpoint:         "https://auth.example.com/token",
		Issuer:                "https://auth.example.com/",
		Method:                indieauth.MethodMetadataLinkHeader,
		DiscoveredAt:          time.Now(),
		DiscoveredURLs:        []string{profileURL},
		OriginalURL:           profileURL,
	}
}

func TestCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := New()

	const profileURL = "https://example.com/"
	stored := sampleResult(profileURL)

	if err := c.Set(ctx, profileURL, stored, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := c.Get(ctx, profileURL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("entry absent after Set")
	}
	if got.AuthorizationEndpoint != stored.AuthorizationEndpoint {
		t.Errorf("authorization endpoint = %q, want %q", got.AuthorizationEndpoint, stored.AuthorizationEndpoint)
	}

	// Mutating what Get returned must not reach the stored entry.
	got.AuthorizationEndpoint = "https://evil.example.com/"
	got.DiscoveredURLs[0] = "https://evil.example.com/"

	again, ok, err := c.Get(ctx, profileURL)
	if err != nil || !ok {
		t.Fatalf("second Get: ok=%v err=%v", ok, err)
	}
	if again.AuthorizationEndpoint != stored.AuthorizationEndpoint {
		t.Error("caller mutation of a returned result reached the cache")
	}
	if again.DiscoveredURLs[0] != profileURL {
		t.Error("caller mutation of a returned slice reached the cache")
	}

	// Mutating the result after Set must not reach the cache either.
	stored.TokenEndpoint = "https://evil.example.com/token"
	final, _, _ := c.Get(ctx, profileURL)
	if final.TokenEndpoint == stored.TokenEndpoint {
		t.Error("caller mutation after Set reached the cache")
	}
}

func TestCacheKeyNormalization(t *testing.T) {
	ctx := context.Background()
	c := New()

	if err := c.Set(ctx, "https://Example.com/", sampleResult("https://example.com/"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	for _, variant := range []string{
		"https://example.com/",
		"https://example.com",
		"https://EXAMPLE.COM/",
	} {
		if _, ok, _ := c.Get(ctx, variant); !ok {
			t.Errorf("Get(%q) missed an equivalent key", variant)
		}
	}

	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheExpiry(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewMockTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	c := New()
	c.now = clock.Now

	const profileURL = "https://example.com/"
	if err := c.Set(ctx, profileURL, sampleResult(profileURL), 50*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if _, ok, _ := c.Get(ctx, profileURL); !ok {
		t.Fatal("entry absent before expiry")
	}

	clock.Advance(100 * time.Millisecond)

	if _, ok, _ := c.Get(ctx, profileURL); ok {
		t.Error("expired entry still returned")
	}

	// The lazy expiry on read also removes the entry.
	if c.Len() != 0 {
		t.Errorf("Len = %d after expired read, want 0", c.Len())
	}
}

func TestCacheDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	c := New()

	for i := 0; i < 3; i++ {
		u := fmt.Sprintf("https://example%d.com/", i)
		if err := c.Set(ctx, u, sampleResult(u), time.Minute); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	if err := c.Delete(ctx, "https://example0.com/"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "https://example0.com/"); ok {
		t.Error("deleted entry still present")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d after delete, want 2", c.Len())
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len = %d after clear, want 0", c.Len())
	}
}

func TestCacheSweep(t *testing.T) {
	ctx := context.Background()
	clock := testutil.NewMockTime(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	c := New()
	c.now = clock.Now

	if err := c.Set(ctx, "https://short.example.com/", sampleResult("https://short.example.com/"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "https://long.example.com/", sampleResult("https://long.example.com/"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}

	clock.Advance(time.Minute)
	c.sweep()

	if c.Len() != 1 {
		t.Errorf("Len = %d after sweep, want 1", c.Len())
	}
	if _, ok, _ := c.Get(ctx, "https://long.example.com/"); !ok {
		t.Error("unexpired entry removed by sweep")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	c := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			u := fmt.Sprintf("https://example%d.com/", n%4)
			for j := 0; j < 100; j++ {
				_ = c.Set(ctx, u, sampleResult(u), time.Minute)
				_, _, _ = c.Get(ctx, u)
				if j%10 == 0 {
					_ = c.Delete(ctx, u)
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestCacheCloseIdempotent(t *testing.T) {
	c := NewWithCleanup(time.Minute)
	c.Close()
	c.Close()
}
