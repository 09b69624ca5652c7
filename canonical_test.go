package indieauth

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty input unchanged", "", ""},
		{"bare host gets scheme and slash", "example.com", "https://example.com/"},
		{"bare host equals explicit form", "https://example.com/", "https://example.com/"},
		{"host lowercased, path case preserved", "HTTPS://EXAMPLE.com/Path", "https://example.com/Path"},
		{"empty path becomes slash", "https://example.com", "https://example.com/"},
		{"fragment stripped", "https://example.com/page#section", "https://example.com/page"},
		{"port preserved", "https://example.com:8443/", "https://example.com:8443/"},
		{"query preserved", "https://example.com/?q=1", "https://example.com/?q=1"},
		{"http scheme preserved", "http://example.com/", "http://example.com/"},
		{"deep path preserved", "https://example.com/users/alice", "https://example.com/users/alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Canonicalize(tt.input); got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"example.com",
		"HTTPS://EXAMPLE.com/Path",
		"https://example.com/page#section",
		"https://example.com:8443/a?b=c",
		"http://sub.EXAMPLE.org",
	}

	for _, input := range inputs {
		once := Canonicalize(input)
		twice := Canonicalize(once)
		if once != twice {
			t.Errorf("Canonicalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
	}{
		{"trailing slash collides", "https://example.com/", "https://example.com"},
		{"host case collides", "https://EXAMPLE.com/", "https://example.com/"},
		{"case and slash collide", "https://Example.com", "https://example.com/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if CacheKey(tt.a) != CacheKey(tt.b) {
				t.Errorf("CacheKey(%q) = %q, CacheKey(%q) = %q, want equal",
					tt.a, CacheKey(tt.a), tt.b, CacheKey(tt.b))
			}
		})
	}

	t.Run("strips only one trailing slash", func(t *testing.T) {
		if got := CacheKey("https://example.com//"); got != "https://example.com/" {
			t.Errorf("CacheKey = %q, want %q", got, "https://example.com/")
		}
	})
}
