package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestKV(t *testing.T) *KV {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestKV_GetMissingKey(t *testing.T) {
	s := openTestKV(t)

	v, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for absent key, got %q", v)
	}
}

func TestKV_PutGet(t *testing.T) {
	s := openTestKV(t)
	ctx := context.Background()

	if err := s.Put(ctx, "notifications", []byte(`[{"id":1}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	v, err := s.Get(ctx, "notifications")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != `[{"id":1}]` {
		t.Errorf("unexpected value: %q", v)
	}
}

func TestKV_PutReplaces(t *testing.T) {
	s := openTestKV(t)
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("one")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "k", []byte("two")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	v, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "two" {
		t.Errorf("expected replacement value, got %q", v)
	}
}

func TestKV_Delete(t *testing.T) {
	s := openTestKV(t)
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	v, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil after delete, got %q", v)
	}

	// Deleting an absent key is a no-op.
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete absent key: %v", err)
	}
}

func TestKV_MigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	if err := s.Put(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	s.Close()

	// Reopening runs migrations again; existing data must survive.
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	v, err := s2.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(v) != "v" {
		t.Errorf("expected value to survive reopen, got %q", v)
	}
}
