package main

import (
	"os"
	"path/filepath"
	"testing"

	"tacc/internal/corpus"
)

// TestCorpusEndToEnd compiles, assembles, links, and runs every case in
// testdata/*.tc against the host's assembler and linker (§6 "Compile, run,
// compare"), the same round trip "tacc test" performs.
func TestCorpusEndToEnd(t *testing.T) {
	root, err := filepath.Abs("../../testdata")
	if err != nil {
		t.Fatalf("resolving testdata dir: %v", err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatalf("reading testdata dir: %v", err)
	}

	var ran int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(root, entry.Name())
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("reading %s: %v", path, err)
		}
		for _, c := range corpus.Parse(entry.Name(), string(content)) {
			ran++
			t.Run(c.Name(), func(t *testing.T) {
				result := corpus.Run(c)
				if result.Err != nil {
					t.Fatalf("Run(%s): %v", c.Name(), result.Err)
				}
				if !result.Passed {
					t.Fatalf("Run(%s): got %q, want %q", c.Name(), result.Got, c.ExpectedStdout())
				}
			})
		}
	}
	if ran == 0 {
		t.Fatal("no corpus cases found under testdata/")
	}
}
