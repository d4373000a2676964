package checker

import (
	"testing"

	"tacc/internal/lexer"
	"tacc/internal/parser"
	"tacc/internal/types"
)

func checkSource(t *testing.T, source string) error {
	t.Helper()
	toks, err := lexer.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", source, err)
	}
	m, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	return Check(m)
}

func TestCheckAcceptsValidPrograms(t *testing.T) {
	tests := []string{
		"1 + 2 * 3",
		"if 1 < 2 then 3 else 4",
		"var a = 1; while a < 3 do a = a + 1; a",
		"true or { print_int(1); true }",
		"fun sq(x: Int): Int { return x*x; } sq(5)",
		"fun vls(x: Int, y: Int): Int { return x*x + y*y; } vls(3, 4)",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if err := checkSource(t, src); err != nil {
				t.Fatalf("Check(%q) = %v, want nil", src, err)
			}
		})
	}
}

func TestCheckRejectsInvalidPrograms(t *testing.T) {
	tests := []string{
		"1 + true",
		"if 1 then 2 else 3",
		"not 1",
		"print_int(true)",
		"if 1 < 2 then 3 else true",
		"undefined_name",
		"fun f(): Int { 1 } fun f(): Bool { true }",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			if err := checkSource(t, src); err == nil {
				t.Fatalf("Check(%q) = nil, want an error", src)
			}
		})
	}
}

func TestCheckDecoratesNodeTypes(t *testing.T) {
	toks, err := lexer.Tokenize("1 + 2")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	m, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if err := Check(m); err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !types.Equal(m.MainExpression().NodeType(), types.Int) {
		t.Errorf("main expression type = %v, want Int", m.MainExpression().NodeType())
	}
}

func TestCheckAssignmentRebindsScopeType(t *testing.T) {
	// Reassigning a var to a value of a different type is rejected: the
	// scope entry is rebound to the RHS type, so a later use against the
	// original type fails.
	if err := checkSource(t, "var a = 1; a = true; a + 1"); err == nil {
		t.Fatal("expected an error: 'a' was rebound to Bool before 'a + 1'")
	}
}

func TestCheckMutualRecursion(t *testing.T) {
	src := `
fun isEven(n: Int): Bool { if n == 0 then true else isOdd(n - 1) }
fun isOdd(n: Int): Bool { if n == 0 then false else isEven(n - 1) }
isEven(4)
`
	if err := checkSource(t, src); err != nil {
		t.Fatalf("Check(mutual recursion) = %v, want nil", err)
	}
}
