package cache

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseToEntry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	entry, err := ResponseToEntry(resp)
	if err != nil {
		t.Fatalf("ResponseToEntry failed: %v", err)
	}

	if string(entry.Body) != `{"items":[]}` {
		t.Errorf("Body = %q", entry.Body)
	}
	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", entry.StatusCode)
	}
	if entry.Headers.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", entry.Headers.Get("Content-Type"))
	}
	if !entry.IsSuccess() {
		t.Error("IsSuccess() = false for 200")
	}
	if entry.CachedAt.IsZero() {
		t.Error("CachedAt not set")
	}

	// Body must be restored for the caller
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read restored body: %v", err)
	}
	if string(body) != `{"items":[]}` {
		t.Errorf("restored body = %q", body)
	}
}

func TestResponseToEntry_Nil(t *testing.T) {
	if _, err := ResponseToEntry(nil); err == nil {
		t.Error("expected error for nil response")
	}
}

func TestEntryToResponse(t *testing.T) {
	entry := &Entry{
		Body:       []byte("cached body"),
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Headers:    http.Header{"Content-Type": []string{"text/plain"}},
	}

	resp := EntryToResponse(entry)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.ContentLength != int64(len("cached body")) {
		t.Errorf("ContentLength = %d", resp.ContentLength)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "cached body" {
		t.Errorf("body = %q", body)
	}
}

func TestEntryToResponse_FillsStatus(t *testing.T) {
	resp := EntryToResponse(&Entry{StatusCode: http.StatusNotFound})
	if resp.Status != "404 Not Found" {
		t.Errorf("Status = %q, want %q", resp.Status, "404 Not Found")
	}
}

func TestEntryToResponse_Nil(t *testing.T) {
	if resp := EntryToResponse(nil); resp != nil {
		t.Error("expected nil response for nil entry")
	}
}

func TestEntry_IsSuccess(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, true},
		{204, true},
		{299, true},
		{304, false},
		{404, false},
		{503, false},
	}

	for _, tt := range tests {
		e := &Entry{StatusCode: tt.status}
		if got := e.IsSuccess(); got != tt.want {
			t.Errorf("IsSuccess(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
