// Package fallback produces deterministic synthetic responses for
// requests that neither network nor cache could satisfy.
//
// Rules form an ordered table of (name, predicate, response template)
// pairs, evaluated top to bottom; the first match wins. The default
// table distinguishes four resource classes: icon assets fail silently
// with an empty 404, backend API calls get a structured JSON 503 the
// data layer can parse, external images get an empty 404 (so an image
// host outage is not mistaken for a backend outage), and everything
// else gets a bare 503.
package fallback

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// APIErrorBody is the JSON payload of the backend-API fallback. Its
// fixed message text is the contract that lets calling code tell
// "offline" apart from a genuine backend rejection.
const APIErrorBody = `{"error":"Service temporairement indisponible","message":"Veuillez réessayer plus tard"}`

// Rule pairs a request predicate with the response to synthesize when
// it matches.
type Rule struct {
	Name        string
	Match       func(*http.Request) bool
	StatusCode  int
	Reason      string
	Body        []byte
	ContentType string
}

// Table is an ordered fallback rule set. The zero value has no rules;
// use NewTable for the standard classification.
type Table struct {
	rules []Rule
}

// Config parameterizes the standard table. Zero-value fields disable
// the corresponding rule.
type Config struct {
	// IconPathPrefix marks icon assets by URL path (e.g. "/icons/").
	IconPathPrefix string

	// APIHosts are backend API hosts; a request host matches a listed
	// host or any of its subdomains.
	APIHosts []string

	// ImageHosts are external image/CDN providers, matched like APIHosts.
	ImageHosts []string
}

// NewTable builds the standard four-class table from cfg.
func NewTable(cfg Config) *Table {
	t := &Table{}

	if cfg.IconPathPrefix != "" {
		prefix := cfg.IconPathPrefix
		t.rules = append(t.rules, Rule{
			Name: "icon",
			Match: func(req *http.Request) bool {
				return strings.HasPrefix(req.URL.Path, prefix)
			},
			StatusCode: http.StatusNotFound,
			Reason:     "Icon not found",
		})
	}

	if len(cfg.APIHosts) > 0 {
		hosts := cfg.APIHosts
		t.rules = append(t.rules, Rule{
			Name: "api",
			Match: func(req *http.Request) bool {
				return hostMatchesAny(req.URL.Host, hosts)
			},
			StatusCode:  http.StatusServiceUnavailable,
			Reason:      "Service Unavailable",
			Body:        []byte(APIErrorBody),
			ContentType: "application/json",
		})
	}

	if len(cfg.ImageHosts) > 0 {
		hosts := cfg.ImageHosts
		t.rules = append(t.rules, Rule{
			Name: "image",
			Match: func(req *http.Request) bool {
				return hostMatchesAny(req.URL.Host, hosts)
			},
			StatusCode: http.StatusNotFound,
			Reason:     "Image not available",
		})
	}

	t.rules = append(t.rules, Rule{
		Name:       "generic",
		Match:      func(*http.Request) bool { return true },
		StatusCode: http.StatusServiceUnavailable,
		Reason:     "Service Unavailable",
	})

	return t
}

// Append adds a custom rule ahead of the generic catch-all.
func (t *Table) Append(r Rule) {
	if n := len(t.rules); n > 0 && t.rules[n-1].Name == "generic" {
		t.rules = append(t.rules[:n-1], r, t.rules[n-1])
		return
	}
	t.rules = append(t.rules, r)
}

// Classify returns the name of the first matching rule, or "" when the
// table is empty of matches.
func (t *Table) Classify(req *http.Request) string {
	for _, r := range t.rules {
		if r.Match(req) {
			return r.Name
		}
	}
	return ""
}

// Synthesize fabricates the fallback response for req. The result is
// deterministic: same request class, same response, every time.
func (t *Table) Synthesize(req *http.Request) *http.Response {
	for _, r := range t.rules {
		if r.Match(req) {
			return synthesize(r)
		}
	}
	// No rules configured at all; bare 503.
	return synthesize(Rule{
		Name:       "generic",
		StatusCode: http.StatusServiceUnavailable,
		Reason:     "Service Unavailable",
	})
}

func synthesize(r Rule) *http.Response {
	header := make(http.Header)
	if r.ContentType != "" {
		header.Set("Content-Type", r.ContentType)
	}

	return &http.Response{
		StatusCode:    r.StatusCode,
		Status:        fmt.Sprintf("%d %s", r.StatusCode, r.Reason),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}
}

// hostMatchesAny reports whether host (optionally host:port) equals one
// of the patterns or is a subdomain of one.
func hostMatchesAny(host string, patterns []string) bool {
	h := host
	if splitHost, _, err := net.SplitHostPort(host); err == nil {
		h = splitHost
	}
	h = strings.ToLower(h)

	for _, p := range patterns {
		p = strings.ToLower(p)
		if h == p || strings.HasSuffix(h, "."+p) {
			return true
		}
	}
	return false
}
