package ir_test

import (
	"testing"

	"tacc/internal/checker"
	"tacc/internal/config"
	"tacc/internal/ir"
	"tacc/internal/lexer"
	"tacc/internal/parser"
)

func compileToIR(t *testing.T, source string) map[string][]ir.Instruction {
	t.Helper()
	toks, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", source, err)
	}
	m, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	if err := checker.Check(m); err != nil {
		t.Fatalf("Check(%q): %v", source, err)
	}
	code, err := ir.Generate(m)
	if err != nil {
		t.Fatalf("Generate(%q): %v", source, err)
	}
	return code
}

// everyFunctionEndsInReturn asserts each function's instruction list ends
// with a Return, the contract lowerMain/lowerFunction both guarantee.
func everyFunctionEndsInReturn(t *testing.T, code map[string][]ir.Instruction) {
	t.Helper()
	for name, instrs := range code {
		if len(instrs) == 0 {
			t.Fatalf("function %q has no instructions", name)
			continue
		}
		last := instrs[len(instrs)-1]
		if _, ok := last.(ir.Return); !ok {
			t.Errorf("function %q's last instruction is %T, want Return", name, last)
		}
	}
}

// everyJumpTargetIsLabeledOnce asserts every label referenced by a Jump or
// CondJump appears as a Label exactly once within the same function.
func everyJumpTargetIsLabeledOnce(t *testing.T, code map[string][]ir.Instruction) {
	t.Helper()
	for name, instrs := range code {
		counts := map[string]int{}
		var referenced []string
		for _, instr := range instrs {
			switch i := instr.(type) {
			case ir.Label:
				counts[i.Name]++
			case ir.Jump:
				referenced = append(referenced, i.Label)
			case ir.CondJump:
				referenced = append(referenced, i.ThenLabel, i.ElseLabel)
			}
		}
		for _, label := range referenced {
			if counts[label] != 1 {
				t.Errorf("function %q: label %q referenced but defined %d times, want 1", name, label, counts[label])
			}
		}
	}
}

func TestGenerateArithmetic(t *testing.T) {
	code := compileToIR(t, "1 + 2 * 3")
	everyFunctionEndsInReturn(t, code)
	everyJumpTargetIsLabeledOnce(t, code)

	main := code[config.MainFunctionName]
	var sawPrintInt bool
	for _, instr := range main {
		if call, ok := instr.(ir.Call); ok && call.Fun.Name == config.PrintIntFunc {
			sawPrintInt = true
		}
	}
	if !sawPrintInt {
		t.Error("expected an Int-typed main expression to emit a print_int call")
	}
}

func TestGenerateIfAndWhile(t *testing.T) {
	for _, src := range []string{
		"if 1 < 2 then 3 else 4",
		"var a = 1; while a < 3 do a = a + 1; a",
	} {
		code := compileToIR(t, src)
		everyFunctionEndsInReturn(t, code)
		everyJumpTargetIsLabeledOnce(t, code)
	}
}

func TestGenerateShortCircuitOr(t *testing.T) {
	code := compileToIR(t, "true or { print_int(1); true }")
	everyFunctionEndsInReturn(t, code)
	everyJumpTargetIsLabeledOnce(t, code)

	main := code[config.MainFunctionName]
	for _, instr := range main {
		if call, ok := instr.(ir.Call); ok && call.Fun.Name == "or" {
			t.Fatal("'or' must lower to branches, never a Call(\"or\", ...)")
		}
	}
}

func TestGenerateFunctionCallOddArity(t *testing.T) {
	code := compileToIR(t, "fun sq(x: Int): Int { return x*x; } sq(5)")
	everyFunctionEndsInReturn(t, code)
	everyJumpTargetIsLabeledOnce(t, code)

	fn, ok := code["sq"]
	if !ok {
		t.Fatal("expected an IR entry for function sq")
	}
	// One parameter is odd arity: the phantom consumes p1, so the single
	// real parameter binds to p2.
	var sawP2Copy bool
	for _, instr := range fn {
		if c, ok := instr.(ir.Copy); ok && c.Source.Name == "p2" {
			sawP2Copy = true
		}
	}
	if !sawP2Copy {
		t.Error("expected sq's single real parameter to be copied from p2 (phantom consumes p1)")
	}
}

func TestGenerateFunctionCallTwoArgs(t *testing.T) {
	code := compileToIR(t, "fun vls(x: Int, y: Int): Int { return x*x + y*y; } vls(3, 4)")
	everyFunctionEndsInReturn(t, code)
	everyJumpTargetIsLabeledOnce(t, code)

	fn, ok := code["vls"]
	if !ok {
		t.Fatal("expected an IR entry for function vls")
	}
	var sawP1, sawP2 bool
	for _, instr := range fn {
		if c, ok := instr.(ir.Copy); ok {
			switch c.Source.Name {
			case "p1":
				sawP1 = true
			case "p2":
				sawP2 = true
			}
		}
	}
	if !sawP1 || !sawP2 {
		t.Error("expected vls's two real parameters to bind directly to p1 and p2 (even arity, no phantom)")
	}
}

func TestVarIsParamPrefixDetection(t *testing.T) {
	if !(ir.Var{Name: "p3"}).IsParam() {
		t.Error("p3 should be recognized as a parameter Var")
	}
	if (ir.Var{Name: "x3"}).IsParam() {
		t.Error("x3 should not be recognized as a parameter Var")
	}
	if (ir.Var{Name: ""}).IsParam() {
		t.Error("the empty Var should not be recognized as a parameter Var")
	}
}
