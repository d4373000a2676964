// Package pipeline threads a single Context value through the compiler's
// ordered stages. Grounded on the teacher's internal/pipeline
// package (PipelineContext + Processor), re-typed to this compiler's data
// model and re-shaped from Processor.Process(ctx) ctx to Stage.Run(ctx)
// error: our stages cannot produce a partial result to keep processing
// with (§7 — every error is fatal, no batched diagnostics).
package pipeline

import (
	"tacc/internal/ast"
	"tacc/internal/ir"
	"tacc/internal/token"
)

// Context carries every stage's output forward to the stages after it.
// Each stage reads the fields the prior stages populated and fills in its
// own before returning. Concurrency & resource model (§5): the whole
// pipeline is single-threaded and synchronous, so no field here needs
// synchronization.
type Context struct {
	Source string
	Tokens []token.Token
	Module *ast.Module
	IR     map[string][]ir.Instruction
	Asm    string
}

// New creates a Context ready for the first stage.
func New(source string) *Context {
	return &Context{Source: source}
}

// Stage is one compiler pass that Run can execute. The lexer, parser and
// checker each provide one; IR and assembly generation are plain
// functions called after Run.
type Stage interface {
	Run(ctx *Context) error
}

// StageFunc adapts a plain function to the Stage interface.
type StageFunc func(ctx *Context) error

func (f StageFunc) Run(ctx *Context) error { return f(ctx) }

// Run executes stages in order, stopping at and returning the first error.
func Run(ctx *Context, stages ...Stage) error {
	for _, s := range stages {
		if err := s.Run(ctx); err != nil {
			return err
		}
	}
	return nil
}
