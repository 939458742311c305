package cache

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{
		{
			name:   "simple path no query",
			target: "https://example.com/",
			want:   "sw:GET:https://example.com/",
		},
		{
			name:   "path with single query param",
			target: "https://cdn.example.com/img/feed.jpg?w=640",
			want:   "sw:GET:https://cdn.example.com/img/feed.jpg:w=640",
		},
		{
			name:   "query params sorted",
			target: "https://api.example.com/rest/products?select=*&order=created_at",
			want:   "sw:GET:https://api.example.com/rest/products:order=created_at:select=*",
		},
		{
			name:   "fragment dropped",
			target: "https://example.com/feed#top",
			want:   "sw:GET:https://example.com/feed",
		},
		{
			name:   "repeated query param keeps every value",
			target: "https://api.example.com/rest/products?a=1&a=2",
			want:   "sw:GET:https://api.example.com/rest/products:a=1:a=2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			got := NewKey(req).String()
			if got != tt.want {
				t.Errorf("Key.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewKey_Normalization(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://Example.COM/icons/icon-192.png", nil)
	key := NewKey(req)

	if key.Host != "example.com" {
		t.Errorf("Host not lowered: %q", key.Host)
	}
	if key.Method != http.MethodGet {
		t.Errorf("Method = %q, want GET", key.Method)
	}
}

func TestNewKey_Deterministic(t *testing.T) {
	a := httptest.NewRequest(http.MethodGet, "https://example.com/p?b=2&a=1", nil)
	b := httptest.NewRequest(http.MethodGet, "https://example.com/p?a=1&b=2", nil)

	if NewKey(a).String() != NewKey(b).String() {
		t.Errorf("keys for equivalent URLs differ: %q vs %q",
			NewKey(a).String(), NewKey(b).String())
	}
}

func TestNewKey_RepeatedParamDistinct(t *testing.T) {
	a := httptest.NewRequest(http.MethodGet, "https://example.com/p?a=1", nil)
	b := httptest.NewRequest(http.MethodGet, "https://example.com/p?a=1&a=2", nil)

	if NewKey(a).String() == NewKey(b).String() {
		t.Errorf("distinct URLs share key %q", NewKey(a).String())
	}
}
