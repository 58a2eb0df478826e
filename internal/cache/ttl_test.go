package cache

import (
	"testing"
	"time"
)

func TestGetReturnsFreshEntry(t *testing.T) {
	now := time.Now()
	c := NewWithClock[string](time.Hour, func() time.Time { return now })

	c.Set("k", "v")

	now = now.Add(59 * time.Minute)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected entry to be present before TTL")
	}
	if got != "v" {
		t.Errorf("Expected value 'v', got %s", got)
	}
}

func TestGetTreatsExpiredEntryAsAbsent(t *testing.T) {
	now := time.Now()
	c := NewWithClock[string](time.Hour, func() time.Time { return now })

	c.Set("k", "v")

	now = now.Add(time.Hour)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry at exactly TTL age to be absent")
	}

	now = now.Add(time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Error("Expected entry past TTL to be absent")
	}
}

func TestGetMissingKey(t *testing.T) {
	c := New[int](time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Error("Expected missing key to be absent")
	}
}

func TestSetOverwritesAndResetsAge(t *testing.T) {
	now := time.Now()
	c := NewWithClock[int](time.Minute, func() time.Time { return now })

	c.Set("k", 1)
	now = now.Add(50 * time.Second)
	c.Set("k", 2)
	now = now.Add(50 * time.Second)

	got, ok := c.Get("k")
	if !ok {
		t.Fatal("Expected rewritten entry to be fresh")
	}
	if got != 2 {
		t.Errorf("Expected value 2, got %d", got)
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New[string](time.Hour)

	c.Set("a", "1")
	c.Set("b", "2")
	c.InvalidateAll()

	if _, ok := c.Get("a"); ok {
		t.Error("Expected 'a' to be absent after InvalidateAll")
	}
	if _, ok := c.Get("b"); ok {
		t.Error("Expected 'b' to be absent after InvalidateAll")
	}
}
