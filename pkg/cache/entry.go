package cache

import (
	"net/http"
	"time"
)

// Entry is an immutable snapshot of an HTTP response.
//
// Entries carry no per-entry TTL: a snapshot lives as long as the store
// that holds it, and stale stores are dropped wholesale during worker
// activation. That keeps eviction a single, versioned operation instead
// of a per-key bookkeeping concern.
type Entry struct {
	// Body is the captured response body.
	Body []byte `json:"body"`

	// StatusCode is the HTTP status code of the captured response.
	StatusCode int `json:"status_code"`

	// Status is the full status line text (e.g. "200 OK").
	Status string `json:"status"`

	// Headers are the captured response headers.
	Headers http.Header `json:"headers"`

	// CachedAt is when the snapshot was taken.
	CachedAt time.Time `json:"cached_at"`
}

// IsSuccess reports whether the captured response had a 2xx status.
// Only successful responses are eligible for storage.
func (e *Entry) IsSuccess() bool {
	return e.StatusCode >= 200 && e.StatusCode < 300
}

// Size returns the body size in bytes.
func (e *Entry) Size() int {
	return len(e.Body)
}
