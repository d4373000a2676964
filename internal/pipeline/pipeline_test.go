package pipeline

import (
	"errors"
	"testing"
)

func TestRunStopsAtFirstError(t *testing.T) {
	var ran []int
	ok := StageFunc(func(ctx *Context) error { ran = append(ran, 1); return nil })
	failing := StageFunc(func(ctx *Context) error { ran = append(ran, 2); return errors.New("boom") })
	never := StageFunc(func(ctx *Context) error { ran = append(ran, 3); return nil })

	ctx := New("source")
	err := Run(ctx, ok, failing, never)
	if err == nil {
		t.Fatal("Run should propagate the failing stage's error")
	}
	if len(ran) != 2 {
		t.Fatalf("stages run = %v, want exactly the first two (never must not run)", ran)
	}
}

func TestRunThreadsContextForward(t *testing.T) {
	setTokens := StageFunc(func(ctx *Context) error { ctx.Asm = "asm-from-stage-one"; return nil })
	readTokens := StageFunc(func(ctx *Context) error {
		if ctx.Asm != "asm-from-stage-one" {
			t.Errorf("second stage saw Asm = %q, want the first stage's write", ctx.Asm)
		}
		return nil
	})

	ctx := New("source")
	if err := Run(ctx, setTokens, readTokens); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestNewSetsSource(t *testing.T) {
	ctx := New("1 + 1")
	if ctx.Source != "1 + 1" {
		t.Errorf("New(...).Source = %q, want %q", ctx.Source, "1 + 1")
	}
}
