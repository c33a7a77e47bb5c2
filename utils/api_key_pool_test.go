package utils

import (
	"testing"
	"time"
)

func TestNewAPIKeyPoolEmpty(t *testing.T) {
	if pool := NewAPIKeyPool(nil); pool != nil {
		t.Error("expected nil pool for empty key list")
	}
}

func TestNextRoundRobin(t *testing.T) {
	pool := NewAPIKeyPool([]string{"a", "b", "c"})

	got := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		key, err := pool.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got = append(got, key)
	}

	want := []string{"a", "b", "c", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNextSkipsCoolingKeys(t *testing.T) {
	pool := NewAPIKeyPool([]string{"a", "b"})
	pool.MarkFailed("a", time.Minute)

	for i := 0; i < 3; i++ {
		key, err := pool.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if key != "b" {
			t.Errorf("call %d: got %q, want b", i, key)
		}
	}
}

func TestNextAllKeysCooling(t *testing.T) {
	pool := NewAPIKeyPool([]string{"a", "b"})
	pool.MarkFailed("a", time.Minute)
	pool.MarkFailed("b", time.Minute)

	if _, err := pool.Next(); err != ErrNoKeysAvailable {
		t.Errorf("got %v, want ErrNoKeysAvailable", err)
	}
}

func TestCooldownExpires(t *testing.T) {
	pool := NewAPIKeyPool([]string{"a"})
	pool.MarkFailed("a", -time.Second) // already expired

	key, err := pool.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "a" {
		t.Errorf("got %q, want a", key)
	}
}

func TestAvailable(t *testing.T) {
	pool := NewAPIKeyPool([]string{"a", "b", "c"})
	if n := pool.Available(); n != 3 {
		t.Errorf("got %d available, want 3", n)
	}

	pool.MarkFailed("b", time.Minute)
	if n := pool.Available(); n != 2 {
		t.Errorf("got %d available, want 2", n)
	}
}
