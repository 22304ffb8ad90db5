package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCache_SetGetRoundTrip(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	hash := HashBytes([]byte("package p"))
	if err := c.Set("src/a.go", hash, []byte(`{"findings":null}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	data, ok := c.Get("src/a.go", hash)
	if !ok {
		t.Fatal("Get missed a fresh entry")
	}
	if string(data) != `{"findings":null}` {
		t.Errorf("Get = %q", data)
	}
}

func TestCache_HashMismatchMisses(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), 24, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.Set("src/a.go", HashBytes([]byte("v1")), []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, ok := c.Get("src/a.go", HashBytes([]byte("v2"))); ok {
		t.Error("Get hit despite a changed content hash")
	}
}

func TestCache_ExpiredEntryEvicted(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, 0, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	hash := HashBytes([]byte("v1"))
	if err := c.Set("src/a.go", hash, []byte("x")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	// TTL of zero hours expires everything immediately.
	time.Sleep(time.Millisecond)
	if _, ok := c.Get("src/a.go", hash); ok {
		t.Error("Get hit an expired entry")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expired entry not evicted, %d files remain", len(entries))
	}
}

func TestCache_DisabledIsNoOp(t *testing.T) {
	c, err := New("", 0, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := c.Set("k", "h", []byte("x")); err != nil {
		t.Errorf("Set on disabled cache failed: %v", err)
	}
	if _, ok := c.Get("k", "h"); ok {
		t.Error("Get hit on a disabled cache")
	}
	if err := c.Clear(); err != nil {
		t.Errorf("Clear on disabled cache failed: %v", err)
	}
}

func TestCache_Clear(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c, err := New(dir, 24, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	hash := HashBytes([]byte("v1"))
	if err := c.Set("a", hash, []byte("1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Set("b", hash, []byte("2")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get("a", hash); ok {
		t.Error("Get hit after Clear")
	}
}

func TestHashBytes_Deterministic(t *testing.T) {
	a := HashBytes([]byte("package p"))
	b := HashBytes([]byte("package p"))
	if a != b {
		t.Errorf("HashBytes not deterministic: %s vs %s", a, b)
	}
	if a == HashBytes([]byte("package q")) {
		t.Error("distinct inputs produced the same hash")
	}
	if len(a) != 64 {
		t.Errorf("len(hash) = %d, want 64 hex chars", len(a))
	}
}
