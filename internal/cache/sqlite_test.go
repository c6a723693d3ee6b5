package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_SetGetOverwrite(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v1"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "k", []byte("v2"), time.Minute); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, ok, err := s.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if string(got) != "v2" {
		t.Errorf("value = %q, want last write", got)
	}
}

func TestSQLiteStore_Expiry(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	s.Set(ctx, "gone", []byte("x"), -time.Second)
	if _, ok, _ := s.Get(ctx, "gone"); ok {
		t.Error("expired entry should not be returned")
	}

	s.Set(ctx, "kept", []byte("y"), time.Minute)
	s.Set(ctx, "dead", []byte("z"), -time.Second)
	n, err := s.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("PurgeExpired: %v", err)
	}
	if n < 1 {
		t.Errorf("PurgeExpired removed %d rows, want at least 1", n)
	}
	if _, ok, _ := s.Get(ctx, "kept"); !ok {
		t.Error("live entry must survive the purge")
	}
}

func TestSQLiteStore_KeysPattern(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	s.Set(ctx, "pair:a:b", []byte("1"), time.Minute)
	s.Set(ctx, "enrichment:9", []byte("2"), time.Minute)
	s.Set(ctx, "pair:c:d", []byte("3"), -time.Second)

	keys, err := s.Keys(ctx, "pair:*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "pair:a:b" {
		t.Errorf("Keys = %v, want only the live pair key", keys)
	}
}
