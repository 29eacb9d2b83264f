package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(filepath.Join(t.TempDir(), "file"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "sqlite", "state.db"))
	if err != nil {
		t.Fatalf("sqlite store: %v", err)
	}
	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fileStore,
		"sqlite": sqliteStore,
	}
}

func TestStore_MissingKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v, ok, err := s.Get("recentCard")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok || v != nil {
				t.Fatalf("expected missing key, got ok=%v value=%q", ok, v)
			}
		})
	}
}

func TestStore_PutReplacesValue(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put("recentCard", []byte(`[1]`)); err != nil {
				t.Fatalf("first put: %v", err)
			}
			if err := s.Put("recentCard", []byte(`[1,2]`)); err != nil {
				t.Fatalf("second put: %v", err)
			}
			v, ok, err := s.Get("recentCard")
			if err != nil || !ok {
				t.Fatalf("get: ok=%v err=%v", ok, err)
			}
			if string(v) != `[1,2]` {
				t.Fatalf("want [1,2] got %s", v)
			}
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put("k", []byte("v")); err != nil {
				t.Fatalf("put: %v", err)
			}
			if err := s.Delete("k"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, ok, _ := s.Get("k"); ok {
				t.Fatalf("key still present after delete")
			}
			if err := s.Delete("k"); err != nil {
				t.Fatalf("deleting a missing key should not fail: %v", err)
			}
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "../escape", `a\b`, ".."} {
				if err := s.Put(key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("put %q: expected ErrInvalidKey, got %v", key, err)
				}
				if _, _, err := s.Get(key); !errors.Is(err, ErrInvalidKey) {
					t.Errorf("get %q: expected ErrInvalidKey, got %v", key, err)
				}
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	in := []byte("abc")
	if err := s.Put("k", in); err != nil {
		t.Fatalf("put: %v", err)
	}
	in[0] = 'z'
	out, _, _ := s.Get("k")
	if string(out) != "abc" {
		t.Fatalf("store aliased caller slice: %q", out)
	}
	out[1] = 'z'
	again, _, _ := s.Get("k")
	if string(again) != "abc" {
		t.Fatalf("store aliased returned slice: %q", again)
	}
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Put("recentCard", []byte(strings.Repeat("x", i+1))); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "recentCard" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only recentCard in dir, got %v", names)
	}
}

func TestFileStore_FailedPutKeepsPreviousValue(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.Put("recentCard", []byte(`["old"]`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Occupy the target with a non-empty directory so the rename fails.
	if err := s.Put("blocked", []byte("x")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "blocked")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "blocked", "child"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := s.Put("blocked", []byte("new")); err == nil {
		t.Fatalf("expected put over a directory to fail")
	}

	v, ok, err := s.Get("recentCard")
	if err != nil || !ok || string(v) != `["old"]` {
		t.Fatalf("unrelated key changed: ok=%v err=%v value=%s", ok, err, v)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestOpen_Backends(t *testing.T) {
	dir := t.TempDir()
	for _, backend := range []string{BackendFile, BackendSQLite, BackendMemory} {
		s, err := Open(backend, dir)
		if err != nil {
			t.Fatalf("open %s: %v", backend, err)
		}
		if err := s.Put("k", []byte("v")); err != nil {
			t.Fatalf("%s put: %v", backend, err)
		}
		_ = s.Close()
	}
	if _, err := os.Stat(filepath.Join(dir, sqliteFileName)); err != nil {
		t.Fatalf("sqlite file not created: %v", err)
	}
	if _, err := Open("etcd", dir); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
