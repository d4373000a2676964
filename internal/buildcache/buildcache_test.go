package buildcache

import (
	"path/filepath"
	"testing"
)

func TestKeyIsDeterministicAndVersionSensitive(t *testing.T) {
	a := Key("1 + 1", "v1")
	b := Key("1 + 1", "v1")
	if a != b {
		t.Fatal("Key must be deterministic for the same (source, version) pair")
	}
	if Key("1 + 1", "v2") == a {
		t.Fatal("a version bump must change the digest so stale entries never hit")
	}
	if Key("1 + 2", "v1") == a {
		t.Fatal("different source must change the digest")
	}
}

func TestStoreAndLookupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	digest := Key("1 + 1", "v1")
	if _, ok, err := c.Lookup(digest); err != nil || ok {
		t.Fatalf("Lookup before Store: ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	if err := c.Store(digest, "v1", "main:\n\tret\n"); err != nil {
		t.Fatalf("Store: %v", err)
	}

	asm, ok, err := c.Lookup(digest)
	if err != nil || !ok {
		t.Fatalf("Lookup after Store: ok=%v err=%v, want ok=true err=nil", ok, err)
	}
	if asm != "main:\n\tret\n" {
		t.Errorf("Lookup returned %q, want the stored assembly text", asm)
	}
}

func TestStoreOverwritesPriorEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	digest := Key("1 + 1", "v1")
	if err := c.Store(digest, "v1", "first\n"); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := c.Store(digest, "v1", "second\n"); err != nil {
		t.Fatalf("Store (overwrite): %v", err)
	}
	asm, ok, err := c.Lookup(digest)
	if err != nil || !ok || asm != "second\n" {
		t.Errorf("Lookup after overwrite = (%q, %v, %v), want (\"second\\n\", true, nil)", asm, ok, err)
	}
}
