// Package testutil provides testing utilities for the offline worker.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// MockResponse defines the behavior of a mock origin path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
}

// MockOrigin is a configurable upstream origin for testing. It counts
// requests per path so tests can assert how often (or that never) the
// network was consulted.
type MockOrigin struct {
	server *httptest.Server

	mu        sync.Mutex
	responses map[string]MockResponse
	failing   map[string]bool
	counts    map[string]int
	total     int
}

// NewMockOrigin creates a mock origin. Paths without a configured
// response answer 200 with a small HTML body.
func NewMockOrigin() *MockOrigin {
	mock := &MockOrigin{
		responses: make(map[string]MockResponse),
		failing:   make(map[string]bool),
		counts:    make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.total++
		mock.counts[r.URL.Path]++
		fail := mock.failing[r.URL.Path]
		resp, configured := mock.responses[r.URL.Path]
		mock.mu.Unlock()

		if fail {
			// Simulate a network-level failure: kill the connection
			// without writing a response.
			hj, ok := w.(http.Hijacker)
			if !ok {
				panic("mock origin: ResponseWriter does not support hijacking")
			}
			conn, _, err := hj.Hijack()
			if err != nil {
				panic("mock origin: hijack failed: " + err.Error())
			}
			conn.Close()
			return
		}

		if !configured {
			resp = MockResponse{
				StatusCode: http.StatusOK,
				Body:       "<html>ok</html>",
				Headers:    map[string]string{"Content-Type": "text/html"},
			}
		}

		for k, v := range resp.Headers {
			w.Header().Set(k, v)
		}
		w.WriteHeader(resp.StatusCode)
		w.Write([]byte(resp.Body))
	}))

	return mock
}

// URL returns the origin base URL.
func (m *MockOrigin) URL() string {
	return m.server.URL
}

// Close shuts the origin down.
func (m *MockOrigin) Close() {
	m.server.Close()
}

// SetResponse configures the response served for path.
func (m *MockOrigin) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = resp
}

// FailPath makes requests to path die at the connection level,
// surfacing as a network error to the client.
func (m *MockOrigin) FailPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[path] = true
}

// Requests returns the number of requests seen for path.
func (m *MockOrigin) Requests(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[path]
}

// TotalRequests returns the number of requests seen overall.
func (m *MockOrigin) TotalRequests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

// Reset clears counters and configured behaviors.
func (m *MockOrigin) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = make(map[string]MockResponse)
	m.failing = make(map[string]bool)
	m.counts = make(map[string]int)
	m.total = 0
}
