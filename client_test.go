package indieauth_test

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/indienet/indieauth"
	"github.com/indienet/indieauth/cache/memory"
	"github.com/indienet/indieauth/instrumentation"
	"github.com/indienet/indieauth/internal/testutil"
)

// TestAuthorizationFlow walks the full client-side flow: discovery via
// a metadata Link header, authorization URL construction, identity
// confirmation after the callback, and issuer validation.
func TestAuthorizationFlow(t *testing.T) {
	ctx := context.Background()
	var counter testutil.RequestCounter

	mux := http.NewServeMux()
	srv := httptest.NewServer(counter.Wrap(mux))
	defer srv.Close()

	mux.HandleFunc("/metadata", metadataHandler(srv.URL))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s/metadata>; rel="indieauth-metadata"`, srv.URL))
		fmt.Fprint(w, "profile")
	})

	client := indieauth.NewClient(indieauth.Config{
		Cache:    memory.New(),
		CacheTTL: time.Minute,
		Logger:   slog.New(slog.DiscardHandler),
	})

	profileURL := srv.URL + "/"

	if v := indieauth.ValidateProfileURL("https://example.com/"); !v.Valid {
		t.Fatalf("profile URL validation failed: %s", v.ErrorMessage)
	}

	discovery := client.DiscoverEndpoints(ctx, profileURL, nil)
	if !discovery.Success {
		t.Fatalf("discovery failed: %s", discovery.ErrorMessage)
	}
	if got := counter.Count(); got != 2 {
		t.Errorf("discovery issued %d requests, want 2", got)
	}

	verifier := indieauth.GenerateCodeVerifier()
	authURL := indieauth.AuthCodeURL(
		discovery.AuthorizationEndpoint,
		"https://app.example.com/",
		"https://app.example.com/callback",
		indieauth.GenerateState(),
		indieauth.CodeChallengeS256(verifier),
		profileURL,
		[]string{"profile"},
	)
	if !strings.HasPrefix(authURL, discovery.AuthorizationEndpoint+"?") {
		t.Errorf("authorization URL %q does not target the discovered endpoint", authURL)
	}

	// The server returns the same identity it was asked about, so the
	// claim is confirmed without another network round-trip.
	before := counter.Count()
	confirmation := client.ConfirmAuthorizationServer(ctx, discovery, profileURL, indieauth.Canonicalize(profileURL))
	if !confirmation.Success {
		t.Fatalf("confirmation failed: %s", confirmation.ErrorMessage)
	}
	if confirmation.Method != indieauth.ConfirmationExactMatch {
		t.Errorf("confirmation method = %s", confirmation.Method)
	}
	if counter.Count() != before {
		t.Error("exact-match confirmation issued network requests")
	}

	issuer := client.ValidateIssuer(discovery.Issuer, srv.URL+"/")
	if !issuer.Success {
		t.Errorf("issuer validation failed: %s", issuer.ErrorMessage)
	}

	// A later session reuses the cached discovery.
	cached := client.DiscoverEndpoints(ctx, profileURL, nil)
	if cached.Method != indieauth.MethodCached {
		t.Errorf("second discovery method = %s, want %s", cached.Method, indieauth.MethodCached)
	}
}

func TestNewClientDefaults(t *testing.T) {
	// A zero config must produce a working client.
	client := indieauth.NewClient(indieauth.Config{})

	result := client.DiscoverEndpoints(context.Background(), "", nil)
	if result.Success || result.ErrorCategory != indieauth.CategoryInput {
		t.Errorf("got success %v category %s", result.Success, result.ErrorCategory)
	}
}

func TestClientWithInstrumentation(t *testing.T) {
	ctx := context.Background()

	inst, err := instrumentation.New(instrumentation.Config{
		ServiceName: "indieauth-test",
		Enabled:     true,
	})
	if err != nil {
		t.Fatalf("instrumentation.New: %v", err)
	}
	defer func() { _ = inst.Shutdown(ctx) }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Link", `</auth>; rel="authorization_endpoint"`)
		w.Header().Add("Link", `</token>; rel="token_endpoint"`)
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	cache := memory.New()
	if err := cache.SetInstrumentation(inst); err != nil {
		t.Fatalf("SetInstrumentation: %v", err)
	}

	client := indieauth.NewClient(indieauth.Config{
		Cache:           cache,
		Instrumentation: inst,
		Logger:          slog.New(slog.DiscardHandler),
	})

	// Instrumented paths must behave identically to uninstrumented ones.
	if result := client.DiscoverEndpoints(ctx, srv.URL, nil); !result.Success {
		t.Fatalf("discovery failed: %s", result.ErrorMessage)
	}
	if result := client.DiscoverEndpoints(ctx, srv.URL, nil); result.Method != indieauth.MethodCached {
		t.Errorf("second discovery method = %s", result.Method)
	}
}
