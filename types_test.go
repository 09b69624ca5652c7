package indieauth

import "testing"

func TestDiscoveryResultClone(t *testing.T) {
	t.Run("nil receiver", func(t *testing.T) {
		var r *DiscoveryResult
		if r.Clone() != nil {
			t.Error("cloning nil should yield nil")
		}
	})

	t.Run("slices are independent", func(t *testing.T) {
		original := &DiscoveryResult{
			Success:         true,
			ScopesSupported: []string{"profile"},
			DiscoveredURLs:  []string{"https://example.com/"},
		}

		clone := original.Clone()
		clone.ScopesSupported[0] = "mutated"
		clone.DiscoveredURLs[0] = "mutated"
		clone.Method = MethodCached

		if original.ScopesSupported[0] != "profile" || original.DiscoveredURLs[0] != "https://example.com/" {
			t.Error("mutating a clone's slices reached the original")
		}
		if original.Method == MethodCached {
			t.Error("mutating a clone's fields reached the original")
		}
	})
}

func TestDiscoveryMethodString(t *testing.T) {
	tests := []struct {
		method DiscoveryMethod
		want   string
	}{
		{MethodUnknown, "unknown"},
		{MethodMetadataLinkHeader, "metadata_link_header"},
		{MethodMetadataHTMLLink, "metadata_html_link"},
		{MethodLegacyLinkHeader, "legacy_link_header"},
		{MethodLegacyHTMLLink, "legacy_html_link"},
		{MethodCached, "cached"},
	}
	for _, tt := range tests {
		if got := tt.method.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
