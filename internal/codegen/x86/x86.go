// Package x86 implements the assembly generator (§4.5): function-
// partitioned IR in, a single GAS-syntax x86-64 program out, targeting the
// System V AMD64 ABI. Grounded on original_source/src/compiler/
// assembly_generator.py's emit-to-a-line-buffer shape and its Locals
// stack-slot allocator, extended from that draft's single hardcoded
// `main:` function to the multi-function, user-call-supporting form
// spec.md §4.5 describes; the strings.Builder-per-section emit idiom
// follows the corpus's own x86-64 generator
// (other_examples/.../x86_64_generator.go).
package x86

import (
	"fmt"
	"sort"
	"strings"

	"tacc/internal/config"
	"tacc/internal/diagnostics"
	"tacc/internal/ir"
)

// Generate emits a complete assembly program for the given function-
// partitioned IR. funcs is keyed by function name (config.MainFunctionName
// for the implicit top-level expression); iteration order is made
// deterministic (main first, then the rest sorted) purely so repeated
// runs over the same IR produce byte-identical output.
func Generate(funcs map[string][]ir.Instruction) (string, error) {
	var out strings.Builder

	emitHeader(&out, funcs)

	names := orderedFunctionNames(funcs)
	for _, name := range names {
		if err := generateFunction(&out, name, funcs[name]); err != nil {
			return "", err
		}
	}

	return out.String(), nil
}

func orderedFunctionNames(funcs map[string][]ir.Instruction) []string {
	names := make([]string, 0, len(funcs))
	for name := range funcs {
		if name != config.MainFunctionName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{config.MainFunctionName}, names...)
}

func emitHeader(out *strings.Builder, funcs map[string][]ir.Instruction) {
	for _, extern := range config.RuntimeExterns {
		fmt.Fprintf(out, ".extern %s\n", extern)
	}
	for _, name := range orderedFunctionNames(funcs) {
		fmt.Fprintf(out, ".global %s\n", name)
		fmt.Fprintf(out, ".type %s, @function\n", name)
	}
	out.WriteString(".section .text\n")
}

// locals assigns every non-parameter IRVar in a function's instruction
// list a unique stack slot (§4.5 "Per-function stack layout"), in first-
// appearance order, starting at -8(%rbp) per original_source's Locals
// class (_stack_used begins at 8, "initially holds the caller's %rbp").
type locals struct {
	slot      map[string]int // byte offset, positive; ref is -offset(%rbp)
	stackUsed int
}

func newLocals(instrs []ir.Instruction) *locals {
	l := &locals{slot: map[string]int{}, stackUsed: 8}
	add := func(v ir.Var) {
		if v.Name == "" || v.IsParam() {
			return
		}
		if _, ok := l.slot[v.Name]; ok {
			return
		}
		l.slot[v.Name] = l.stackUsed
		l.stackUsed += 8
	}
	for _, instr := range instrs {
		for _, v := range varsOf(instr) {
			add(v)
		}
	}
	return l
}

// varsOf returns every IRVar field an instruction carries, in a fixed
// order, for both the locals pass and (indirectly, via dispatch) codegen.
func varsOf(instr ir.Instruction) []ir.Var {
	switch i := instr.(type) {
	case ir.LoadIntConst:
		return []ir.Var{i.Dest}
	case ir.LoadBoolConst:
		return []ir.Var{i.Dest}
	case ir.Copy:
		return []ir.Var{i.Source, i.Dest}
	case ir.Call:
		vs := append([]ir.Var{}, i.Args...)
		return append(vs, i.Dest)
	case ir.CondJump:
		return []ir.Var{i.Cond}
	case ir.Return:
		if i.Val.Name == "" {
			return nil
		}
		return []ir.Var{i.Val}
	default:
		return nil
	}
}

// ref returns the assembly operand for v: a stack slot for a local, or the
// parameter-addressing formula of §4.5 for a `pk` parameter.
func (l *locals) ref(v ir.Var) (string, error) {
	if v.IsParam() {
		var k int
		if _, err := fmt.Sscanf(v.Name, "p%d", &k); err != nil {
			return "", diagnostics.New(diagnostics.PhaseAsm, diagnostics.AsmUnknownInstruction, v.Name)
		}
		return fmt.Sprintf("%d(%%rbp)", 8*k+8), nil
	}
	off, ok := l.slot[v.Name]
	if !ok {
		return "", diagnostics.New(diagnostics.PhaseAsm, diagnostics.AsmUnknownInstruction, v.Name)
	}
	return fmt.Sprintf("-%d(%%rbp)", off), nil
}

func generateFunction(out *strings.Builder, name string, instrs []ir.Instruction) error {
	l := newLocals(instrs)

	fmt.Fprintf(out, "%s:\n", name)
	out.WriteString("\tpushq %rbp\n")
	out.WriteString("\tmovq %rsp, %rbp\n")
	fmt.Fprintf(out, "\tsubq $%d, %%rsp\n", l.stackUsed)

	for _, instr := range instrs {
		if _, ok := instr.(ir.Return); ok {
			if err := generateReturn(out, l, instr.(ir.Return)); err != nil {
				return err
			}
			continue
		}
		if err := generateInstruction(out, l, name, instr); err != nil {
			return err
		}
	}

	if name == config.MainFunctionName {
		out.WriteString("\tmovq $0, %rax\n")
	}
	out.WriteString("\tmovq %rbp, %rsp\n")
	out.WriteString("\tpopq %rbp\n")
	out.WriteString("\tret\n\n")
	return nil
}

func generateReturn(out *strings.Builder, l *locals, r ir.Return) error {
	if r.Val.Name != "" {
		ref, err := l.ref(r.Val)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tmovq %s, %%rax\n", ref)
	}
	return nil
}

func generateInstruction(out *strings.Builder, l *locals, fn string, instr ir.Instruction) error {
	switch i := instr.(type) {
	case ir.Label:
		fmt.Fprintf(out, ".L%s:\n", i.Name)

	case ir.LoadIntConst:
		dest, err := l.ref(i.Dest)
		if err != nil {
			return err
		}
		if i.Value >= -(1<<31) && i.Value < (1<<31) {
			fmt.Fprintf(out, "\tmovq $%d, %s\n", i.Value, dest)
		} else {
			out.WriteString(fmt.Sprintf("\tmovabsq $%d, %%rax\n", i.Value))
			fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
		}

	case ir.LoadBoolConst:
		dest, err := l.ref(i.Dest)
		if err != nil {
			return err
		}
		val := 0
		if i.Value {
			val = 1
		}
		fmt.Fprintf(out, "\tmovq $%d, %s\n", val, dest)

	case ir.Copy:
		src, err := l.ref(i.Source)
		if err != nil {
			return err
		}
		dest, err := l.ref(i.Dest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tmovq %s, %%rax\n", src)
		fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)

	case ir.Jump:
		fmt.Fprintf(out, "\tjmp .L%s\n", i.Label)

	case ir.CondJump:
		cond, err := l.ref(i.Cond)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tcmpq $0, %s\n", cond)
		fmt.Fprintf(out, "\tjne .L%s\n", i.ThenLabel)
		fmt.Fprintf(out, "\tjmp .L%s\n", i.ElseLabel)

	case ir.Call:
		return generateCall(out, l, i)

	default:
		return diagnostics.New(diagnostics.PhaseAsm, diagnostics.AsmUnknownInstruction, instr)
	}
	return nil
}

var intrinsicBinary = map[string]string{
	"+": "addq", "-": "subq", "*": "imulq",
}

// generateCall implements §4.5's call dispatch table.
func generateCall(out *strings.Builder, l *locals, c ir.Call) error {
	name := c.Fun.Name

	if config.IntrinsicOperators[name] {
		return generateIntrinsic(out, l, name, c)
	}

	if name == config.PrintIntFunc || name == config.PrintBoolFunc {
		arg, err := l.ref(c.Args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tmovq %s, %%rdi\n", arg)
		fmt.Fprintf(out, "\tcall %s\n", name)
		return nil
	}

	if len(c.Args) == 0 {
		fmt.Fprintf(out, "\tcall %s\n", name)
		dest, err := l.ref(c.Dest)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
		return nil
	}

	for _, arg := range c.Args {
		ref, err := l.ref(arg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tpushq %s\n", ref)
	}
	if len(c.Args)%2 == 1 {
		out.WriteString("\tsubq $8, %rsp\n")
	}
	fmt.Fprintf(out, "\tcall %s\n", name)
	dest, err := l.ref(c.Dest)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
	return nil
}

// generateIntrinsic inlines one of the operator/unary intrinsics (§4.5
// "Call dispatch"). Division and modulus use cqto/idivq; comparisons zero
// %rax, cmpq, then set the low byte with the matching condition code.
func generateIntrinsic(out *strings.Builder, l *locals, name string, c ir.Call) error {
	dest, err := l.ref(c.Dest)
	if err != nil {
		return err
	}

	if name == config.UnaryMinus || name == config.UnaryNot {
		arg, err := l.ref(c.Args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tmovq %s, %%rax\n", arg)
		if name == config.UnaryMinus {
			out.WriteString("\tnegq %rax\n")
		} else {
			out.WriteString("\tcmpq $0, %rax\n")
			out.WriteString("\tsete %al\n")
			out.WriteString("\tmovzbq %al, %rax\n")
		}
		fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
		return nil
	}

	if name == "and" || name == "or" {
		// Not reached from generated IR: the IR generator never emits
		// Call("and"/"or", ...) (it lowers and/or via branches), but the
		// intrinsic stays defined so the dispatch table remains
		// exhaustive over IntrinsicOperators.
		left, err := l.ref(c.Args[0])
		if err != nil {
			return err
		}
		right, err := l.ref(c.Args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\tmovq %s, %%rax\n", left)
		if name == "and" {
			fmt.Fprintf(out, "\tandq %s, %%rax\n", right)
		} else {
			fmt.Fprintf(out, "\torq %s, %%rax\n", right)
		}
		fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
		return nil
	}

	left, err := l.ref(c.Args[0])
	if err != nil {
		return err
	}
	right, err := l.ref(c.Args[1])
	if err != nil {
		return err
	}

	if op, ok := intrinsicBinary[name]; ok {
		fmt.Fprintf(out, "\tmovq %s, %%rax\n", left)
		fmt.Fprintf(out, "\t%s %s, %%rax\n", op, right)
		fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
		return nil
	}

	if name == "/" || name == "%" {
		fmt.Fprintf(out, "\tmovq %s, %%rax\n", left)
		out.WriteString("\tcqto\n")
		fmt.Fprintf(out, "\tidivq %s\n", right)
		if name == "/" {
			fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
		} else {
			fmt.Fprintf(out, "\tmovq %%rdx, %s\n", dest)
		}
		return nil
	}

	setcc, ok := comparisonSetcc[name]
	if !ok {
		return diagnostics.New(diagnostics.PhaseAsm, diagnostics.AsmUnknownInstruction, name)
	}
	out.WriteString("\txorq %rax, %rax\n")
	fmt.Fprintf(out, "\tmovq %s, %%rcx\n", left)
	fmt.Fprintf(out, "\tcmpq %s, %%rcx\n", right)
	fmt.Fprintf(out, "\t%s %%al\n", setcc)
	fmt.Fprintf(out, "\tmovq %%rax, %s\n", dest)
	return nil
}

var comparisonSetcc = map[string]string{
	"<": "setl", ">": "setg", "<=": "setle", ">=": "setge",
	"==": "sete", "!=": "setne",
}
