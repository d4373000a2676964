// Package ir defines the three-address IR (§3 IR) and the generator that
// lowers a typed ast.Module into it (§4.4). Grounded on the teacher's
// internal/vm/compiler.go for the overall shape of a single-pass AST
// walker with monotonic temporary/label counters, adapted from a
// bytecode Chunk to a textual three-address instruction list — this
// language targets assembly text directly, never a VM (§1).
package ir

import "fmt"

// Var is a name-tagged IR value location (§3 IRVar). Prefixes distinguish
// local temporaries ("x1, x2, …"), function parameters ("p1, p2, …"), the
// distinguished unit sentinel, and operator/function call targets. Vars
// are value-equal and hashable by name, so Var is a plain comparable
// struct rather than a pointer.
type Var struct {
	Name string
}

func (v Var) String() string { return v.Name }

// Unit is the distinguished IRVar used whenever an expression's type is
// Unit.
var Unit = Var{Name: "unit"}

// Fun returns the Var naming an operator, runtime primitive, or user
// function used as a Call target.
func Fun(name string) Var { return Var{Name: name} }

// IsParam reports whether v was allocated as a function parameter slot,
// the distinction the assembly generator's stack-layout pass relies on
// (§4.5: "excluding parameter IRVars (those whose name begins with p)").
func (v Var) IsParam() bool {
	return len(v.Name) > 0 && v.Name[0] == 'p'
}

// Instruction is the closed sum of IR instructions. All are immutable
// once constructed.
type Instruction interface {
	isInstruction()
	String() string
}

type Label struct{ Name string }

func (Label) isInstruction()    {}
func (l Label) String() string  { return fmt.Sprintf("Label(%s)", l.Name) }

type LoadIntConst struct {
	Value int64
	Dest  Var
}

func (LoadIntConst) isInstruction() {}
func (i LoadIntConst) String() string {
	return fmt.Sprintf("LoadIntConst(%d, %s)", i.Value, i.Dest)
}

type LoadBoolConst struct {
	Value bool
	Dest  Var
}

func (LoadBoolConst) isInstruction() {}
func (i LoadBoolConst) String() string {
	return fmt.Sprintf("LoadBoolConst(%t, %s)", i.Value, i.Dest)
}

type Copy struct {
	Source Var
	Dest   Var
}

func (Copy) isInstruction()   {}
func (c Copy) String() string { return fmt.Sprintf("Copy(%s, %s)", c.Source, c.Dest) }

// Call invokes Fun — an operator, runtime primitive, or user function — on
// Args, storing the result in Dest. The IR generator does not distinguish
// between these three kinds of callee (§4.4): the assembly stage
// dispatches on the name.
type Call struct {
	Fun  Var
	Args []Var
	Dest Var
}

func (Call) isInstruction() {}
func (c Call) String() string {
	return fmt.Sprintf("Call(%s, %v, %s)", c.Fun, c.Args, c.Dest)
}

type Jump struct{ Label string }

func (Jump) isInstruction()   {}
func (j Jump) String() string { return fmt.Sprintf("Jump(%s)", j.Label) }

// CondJump branches to ThenLabel iff Cond is nonzero, else to ElseLabel.
type CondJump struct {
	Cond      Var
	ThenLabel string
	ElseLabel string
}

func (CondJump) isInstruction() {}
func (c CondJump) String() string {
	return fmt.Sprintf("CondJump(%s, %s, %s)", c.Cond, c.ThenLabel, c.ElseLabel)
}

// Return ends the current function, optionally carrying a value in %rax.
// Val is the zero Var (Name == "") when no value is returned.
type Return struct{ Val Var }

func (Return) isInstruction() {}
func (r Return) String() string {
	if r.Val.Name == "" {
		return "Return()"
	}
	return fmt.Sprintf("Return(%s)", r.Val)
}
