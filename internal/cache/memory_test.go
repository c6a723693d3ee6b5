package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore_SetGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "pair:a:b", []byte("hello"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := s.Get(ctx, "pair:a:b")
	if err != nil || !ok {
		t.Fatalf("Get = (%v, %v), want hit", ok, err)
	}
	if string(got) != "hello" {
		t.Errorf("value = %q, want %q", got, "hello")
	}

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Error("missing key should not be found")
	}
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "short", []byte("x"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(2 * time.Second)

	if _, ok, _ := s.Get(ctx, "short"); ok {
		t.Error("entry with ttl=1s must be absent after 2s")
	}
	keys, err := s.Keys(ctx, "*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("expired key still listed: %v", keys)
	}
}

func TestMemoryStore_LastWriteWins(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "k", []byte("first"), 10*time.Millisecond)
	s.Set(ctx, "k", []byte("second"), time.Minute)

	// The first write's timer firing must not evict the second write.
	time.Sleep(50 * time.Millisecond)
	got, ok, _ := s.Get(ctx, "k")
	if !ok || string(got) != "second" {
		t.Errorf("Get = (%q, %v), want surviving second write", got, ok)
	}
}

func TestMemoryStore_KeysPattern(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	s.Set(ctx, "pair:alice:bob", []byte("1"), time.Minute)
	s.Set(ctx, "pair:carol:dan", []byte("2"), time.Minute)
	s.Set(ctx, "enrichment:123", []byte("3"), time.Minute)

	keys, err := s.Keys(ctx, "pair:*")
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	want := []string{"pair:alice:bob", "pair:carol:dan"}
	if len(keys) != 2 || keys[0] != want[0] || keys[1] != want[1] {
		t.Errorf("Keys = %v, want %v", keys, want)
	}
}

func TestSetGetJSON(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	in := payload{Name: "coffee", Count: 3}
	if err := SetJSON(ctx, s, "j", in, time.Minute); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	var out payload
	ok, err := GetJSON(ctx, s, "j", &out)
	if err != nil || !ok {
		t.Fatalf("GetJSON = (%v, %v), want hit", ok, err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}

	var miss payload
	if ok, _ := GetJSON(ctx, s, "absent", &miss); ok {
		t.Error("GetJSON on a missing key should report ok=false")
	}
}
