package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestCache(size int, ttl time.Duration) (*LRUCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 9, 20, 8, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](size, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_GetSet(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", "1")
	if got, ok := c.Get("a"); !ok || got != "1" {
		t.Errorf("Get(a) = %q, %v, want 1, true", got, ok)
	}
	if _, ok := c.Get("missing"); ok {
		t.Errorf("Get(missing) should miss")
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Errorf("b should have been evicted")
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(10, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.t = clock.t.Add(2 * time.Minute)
	c.Set("c", "3")

	if _, ok := c.Get("a"); ok {
		t.Errorf("a should have expired")
	}
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 1 {
		t.Errorf("Size() = %d, want 1", c.Size())
	}
}

func TestLRUCache_Add(t *testing.T) {
	c, clock := newTestCache(10, time.Hour)

	if !c.Add("visa:2024-09-20", "x") {
		t.Fatal("first Add() should store")
	}
	if c.Add("visa:2024-09-20", "y") {
		t.Error("second Add() should not store")
	}
	if got, _ := c.Get("visa:2024-09-20"); got != "x" {
		t.Errorf("Get() = %q, want x", got)
	}

	clock.t = clock.t.Add(2 * time.Hour)
	if !c.Add("visa:2024-09-20", "z") {
		t.Error("Add() after expiry should store")
	}
}

func TestManager_CleanAll(t *testing.T) {
	a, clockA := newTestCache(10, time.Minute)
	b, _ := newTestCache(10, time.Hour)
	a.Set("k", "v")
	b.Set("k", "v")
	clockA.t = clockA.t.Add(time.Hour)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)
	if n := m.CleanAll(); n != 1 {
		t.Errorf("CleanAll() = %d, want 1", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func TestLRUCache_Clear(t *testing.T) {
	c, _ := newTestCache(10, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Clear()
	if c.Size() != 0 {
		t.Errorf("Size() after Clear() = %d, want 0", c.Size())
	}
	c.Set("a", "3")
	if got, ok := c.Get("a"); !ok || got != "3" {
		t.Errorf("Get(a) after Clear() = %q, %v", got, ok)
	}
}
