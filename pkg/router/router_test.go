package router

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		target   string
		eligible bool
		rule     string
	}{
		{
			name:     "https GET eligible",
			method:   http.MethodGet,
			target:   "https://example.com/feed",
			eligible: true,
			rule:     "default",
		},
		{
			name:     "http GET eligible",
			method:   http.MethodGet,
			target:   "http://example.com/",
			eligible: true,
			rule:     "default",
		},
		{
			name:     "POST excluded by method rule",
			method:   http.MethodPost,
			target:   "https://api.example.com/rest/cart",
			eligible: false,
			rule:     "method",
		},
		{
			name:     "DELETE excluded by method rule",
			method:   http.MethodDelete,
			target:   "https://api.example.com/rest/cart",
			eligible: false,
			rule:     "method",
		},
		{
			name:     "localhost excluded",
			method:   http.MethodGet,
			target:   "http://localhost:3000/feed",
			eligible: false,
			rule:     "local-host",
		},
		{
			name:     "loopback IP excluded",
			method:   http.MethodGet,
			target:   "http://127.0.0.1:5173/",
			eligible: false,
			rule:     "local-host",
		},
		{
			name:     "localhost subdomain excluded",
			method:   http.MethodGet,
			target:   "http://app.localhost/",
			eligible: false,
			rule:     "local-host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			d := Evaluate(req)
			if d.Eligible != tt.eligible {
				t.Errorf("Eligible = %v, want %v", d.Eligible, tt.eligible)
			}
			if d.Rule != tt.rule {
				t.Errorf("Rule = %q, want %q", d.Rule, tt.rule)
			}
		})
	}
}

// Non-http(s) schemes must be rejected by the scheme rule before the
// method rule ever runs.
func TestEvaluate_SchemeBeforeMethod(t *testing.T) {
	req := &http.Request{
		Method: http.MethodPost,
		URL:    mustParse(t, "chrome-extension://abcdef/script.js"),
	}
	d := Evaluate(req)
	if d.Eligible {
		t.Fatal("extension URL must not be eligible")
	}
	if d.Rule != "scheme" {
		t.Errorf("Rule = %q, want %q", d.Rule, "scheme")
	}
}

func TestIsLoopbackHost(t *testing.T) {
	tests := []struct {
		host string
		want bool
	}{
		{"localhost", true},
		{"localhost:8080", true},
		{"app.localhost", true},
		{"127.0.0.1", true},
		{"127.0.0.1:3000", true},
		{"[::1]:8080", true},
		{"example.com", false},
		{"example.com:443", false},
		{"notlocalhost.com", false},
	}

	for _, tt := range tests {
		if got := IsLoopbackHost(tt.host); got != tt.want {
			t.Errorf("IsLoopbackHost(%q) = %v, want %v", tt.host, got, tt.want)
		}
	}
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}
