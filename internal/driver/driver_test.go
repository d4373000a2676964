package driver

import (
	"path/filepath"
	"testing"

	"tacc/internal/buildcache"
)

func TestCompileToIRAndAsm(t *testing.T) {
	code, err := CompileToIR("1 + 2 * 3")
	if err != nil {
		t.Fatalf("CompileToIR: %v", err)
	}
	if _, ok := code["main"]; !ok {
		t.Fatal("expected a 'main' entry in the IR map")
	}

	asm, err := CompileToAsm("1 + 2 * 3", nil)
	if err != nil {
		t.Fatalf("CompileToAsm: %v", err)
	}
	if asm == "" {
		t.Fatal("CompileToAsm returned empty assembly text")
	}
}

func TestCompileToIRPropagatesCheckerErrors(t *testing.T) {
	if _, err := CompileToIR("1 + true"); err == nil {
		t.Fatal("CompileToIR should surface a checker error for an ill-typed program")
	}
}

func TestCompileToAsmUsesCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.sqlite")
	cache, err := buildcache.Open(path)
	if err != nil {
		t.Fatalf("buildcache.Open: %v", err)
	}
	defer cache.Close()

	asm1, err := CompileToAsm("1 + 1", cache)
	if err != nil {
		t.Fatalf("CompileToAsm (miss): %v", err)
	}

	digest := buildcache.Key("1 + 1", BuildVersion)
	cached, ok, err := cache.Lookup(digest)
	if err != nil || !ok {
		t.Fatalf("expected the first CompileToAsm call to populate the cache: ok=%v err=%v", ok, err)
	}
	if cached != asm1 {
		t.Error("cached assembly should match what CompileToAsm returned")
	}

	asm2, err := CompileToAsm("1 + 1", cache)
	if err != nil {
		t.Fatalf("CompileToAsm (hit): %v", err)
	}
	if asm2 != asm1 {
		t.Error("a cache hit must return the exact previously generated assembly")
	}
}
