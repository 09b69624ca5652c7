// Package linkrel extracts (url, relation) pairs from RFC 8288 HTTP
// Link headers and from HTML <link> markup, and resolves the extracted
// URLs against a base. It is the parsing layer under IndieAuth endpoint
// discovery and performs no I/O itself.
package linkrel

import (
	"io"
	"net/url"
	"strings"

	"github.com/tomnomnom/linkheader"
	"golang.org/x/net/html"
)

// Relation is one link relation: a target URL associated with a named
// role such as "authorization_endpoint". Relations are ephemeral,
// produced per discovery attempt and discarded after endpoint
// extraction.
type Relation struct {
	URL string
	Rel string
}

// Parse extracts relations from Link header values. Each value may
// contain multiple comma-separated entries. Parsing is tolerant: a
// malformed entry is skipped and well-formed entries in the same input
// still yield results. Entries without a rel parameter are silently
// skipped. A header carrying several whitespace-separated rel values
// yields one relation per value.
func Parse(headerValues []string) []Relation {
	var rels []Relation

	for _, link := range linkheader.ParseMultiple(headerValues) {
		if link.Rel == "" {
			continue
		}
		for _, rel := range strings.Fields(link.Rel) {
			rels = append(rels, Relation{URL: link.URL, Rel: rel})
		}
	}

	return rels
}

// ParseHTML extracts relations from <link rel="..."> elements in an
// HTML document. Multi-valued rel attributes are split on whitespace.
// Elements without a rel attribute are skipped. A parse error yields no
// relations; HTML discovery is best-effort.
func ParseHTML(r io.Reader) []Relation {
	root, err := html.Parse(r)
	if err != nil {
		return nil
	}

	var rels []Relation
	walk(root, func(node *html.Node) {
		if node.Type != html.ElementNode || node.Data != "link" {
			return
		}
		href := attr(node, "href")
		for _, rel := range strings.Fields(attr(node, "rel")) {
			rels = append(rels, Relation{URL: href, Rel: rel})
		}
	})

	return rels
}

// FindFirstByRel returns the URL of the first relation matching rel,
// case-insensitively. First-wins precedence in document order is a
// protocol requirement, not an implementation convenience.
func FindFirstByRel(rels []Relation, rel string) (string, bool) {
	for _, r := range rels {
		if strings.EqualFold(r.Rel, rel) {
			return r.URL, true
		}
	}
	return "", false
}

// ResolveURL returns raw unchanged when it is already an absolute
// http/https URL, resolves it against base when one is given, and
// otherwise returns it as-is. Root-relative paths ("/x") are resolved
// through net/url, never reinterpreted as filesystem paths.
func ResolveURL(raw string, base *url.URL) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	if u.IsAbs() && (u.Scheme == "http" || u.Scheme == "https") {
		return raw
	}

	if base != nil {
		return base.ResolveReference(u).String()
	}

	return raw
}

func walk(node *html.Node, visit func(*html.Node)) {
	visit(node)
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

func attr(node *html.Node, name string) string {
	for _, a := range node.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}
