package cache

import (
	"context"
	"net/http"
	"sort"
	"testing"
)

func setupLevelStore(t *testing.T) *LevelStore {
	t.Helper()

	store, err := OpenLevelStore(t.TempDir() + "/cache")
	if err != nil {
		t.Fatalf("OpenLevelStore failed: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestLevelStore_PutAndMatch(t *testing.T) {
	store := setupLevelStore(t)
	ctx := context.Background()
	key := testKey(t, "https://example.com/manifest.json")

	entry := &Entry{
		Body:       []byte(`{"name":"shop"}`),
		StatusCode: http.StatusOK,
		Headers:    http.Header{"Content-Type": []string{"application/manifest+json"}},
	}

	if err := store.Put(ctx, "offline-v1", key, entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Match(ctx, "offline-v1", key)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if string(got.Body) != `{"name":"shop"}` {
		t.Errorf("Body = %q", got.Body)
	}
	if got.Headers.Get("Content-Type") != "application/manifest+json" {
		t.Errorf("Content-Type = %q", got.Headers.Get("Content-Type"))
	}
}

func TestLevelStore_Match_Miss(t *testing.T) {
	store := setupLevelStore(t)

	if _, err := store.Match(context.Background(), "offline-v1", testKey(t, "https://example.com/missing")); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss, got %v", err)
	}
}

func TestLevelStore_NamesAndDrop(t *testing.T) {
	store := setupLevelStore(t)
	ctx := context.Background()

	if err := store.Open(ctx, "offline-v1"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	key := testKey(t, "https://example.com/icons/icon-192.png")
	if err := store.Put(ctx, "offline-v2", key, &Entry{StatusCode: 200}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	names, err := store.Names(ctx)
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	sort.Strings(names)
	if len(names) != 2 || names[0] != "offline-v1" || names[1] != "offline-v2" {
		t.Errorf("Names = %v", names)
	}

	if err := store.Drop(ctx, "offline-v1"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	names, err = store.Names(ctx)
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	if len(names) != 1 || names[0] != "offline-v2" {
		t.Errorf("Names after drop = %v", names)
	}

	// Entries of the surviving store are untouched
	if _, err := store.Match(ctx, "offline-v2", key); err != nil {
		t.Errorf("Match in surviving store failed: %v", err)
	}
}

func TestLevelStore_Drop_RemovesEntries(t *testing.T) {
	store := setupLevelStore(t)
	ctx := context.Background()
	key := testKey(t, "https://example.com/feed")

	if err := store.Put(ctx, "offline-v1", key, &Entry{StatusCode: 200, Body: []byte("x")}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Drop(ctx, "offline-v1"); err != nil {
		t.Fatalf("Drop failed: %v", err)
	}
	if _, err := store.Match(ctx, "offline-v1", key); err != ErrCacheMiss {
		t.Errorf("expected ErrCacheMiss after drop, got %v", err)
	}
}

func TestLevelStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir() + "/cache"
	ctx := context.Background()
	key := Key{Method: "GET", Scheme: "https", Host: "example.com", Path: "/"}

	store, err := OpenLevelStore(dir)
	if err != nil {
		t.Fatalf("OpenLevelStore failed: %v", err)
	}
	if err := store.Put(ctx, "offline-v1", key, &Entry{StatusCode: 200, Body: []byte("shell")}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenLevelStore(dir)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Match(ctx, "offline-v1", key)
	if err != nil {
		t.Fatalf("Match after reopen failed: %v", err)
	}
	if string(got.Body) != "shell" {
		t.Errorf("Body = %q", got.Body)
	}
}
