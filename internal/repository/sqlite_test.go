package repository

import (
	"context"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return s
}

func TestSQLiteStore_PutAndGet(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	payload := []byte(`{"id":"S2A_20260801","cloudCover":12.5}`)

	err := s.Put(ctx, "scene:abc", payload, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "scene:abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a cache hit")
	}
	if string(got) != string(payload) {
		t.Errorf("expected payload %s, got %s", payload, got)
	}
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	_, ok, err := s.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected a miss for an absent key")
	}
}

func TestSQLiteStore_GetExpired(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "stale", []byte("old"), time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	_, ok, err := s.Get(ctx, "stale")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected an expired entry to count as a miss")
	}
}

func TestSQLiteStore_PutReplaces(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "k", []byte("first"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "k", []byte("second"), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if string(got) != "second" {
		t.Errorf("expected replaced payload, got %s", got)
	}
}

func TestSQLiteStore_PurgeExpired(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	ctx := context.Background()
	now := time.Now()

	entries := map[string]time.Time{
		"live1": now.Add(time.Hour),
		"live2": now.Add(30 * time.Minute),
		"dead1": now.Add(-time.Minute),
		"dead2": now.Add(-time.Hour),
	}
	for key, exp := range entries {
		if err := s.Put(ctx, key, []byte(key), exp); err != nil {
			t.Fatalf("Put %s failed: %v", key, err)
		}
	}

	purged, err := s.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 2 {
		t.Errorf("expected 2 purged rows, got %d", purged)
	}

	if _, ok, _ := s.Get(ctx, "live1"); !ok {
		t.Error("live entry should survive the purge")
	}
	if _, ok, _ := s.Get(ctx, "dead1"); ok {
		t.Error("expired entry should be gone")
	}

	// A second purge has nothing left to remove.
	purged, err = s.PurgeExpired(ctx, now)
	if err != nil {
		t.Fatalf("PurgeExpired failed: %v", err)
	}
	if purged != 0 {
		t.Errorf("expected 0 purged rows, got %d", purged)
	}
}
