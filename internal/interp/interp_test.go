package interp_test

import (
	"bytes"
	"strings"
	"testing"

	"tacc/internal/checker"
	"tacc/internal/interp"
	"tacc/internal/lexer"
	"tacc/internal/parser"
)

func runInterp(t *testing.T, source, stdin string) string {
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
	var out bytes.Buffer
	it := interp.New(&out, strings.NewReader(stdin))
	if err := it.Run(m); err != nil {
		t.Fatalf("Run(%q): %v", source, err)
	}
	return out.String()
}

func TestInterpScenarios(t *testing.T) {
	tests := []struct {
		name   string
		source string
		stdin  string
		want   string
	}{
		{"arithmetic", "1 + 2 * 3", "", "7\n"},
		{"if_else", "if 1 < 2 then 3 else 4", "", "3\n"},
		{"while_loop", "var a = 1; while a < 3 do a = a + 1; a", "", "3\n"},
		// print_int(1) never runs (the rhs is skipped by short-circuiting);
		// the top-level result is still printed once, by the implicit epilogue.
		{"short_circuit_or_skips_rhs", "true or { print_int(1); true }", "", "true\n"},
		{"function_square", "fun sq(x: Int): Int { return x*x; } sq(5)", "", "25\n"},
		{"function_two_args", "fun vls(x: Int, y: Int): Int { return x*x + y*y; } vls(3, 4)", "", "25\n"},
		{"read_int_echo", "print_int(read_int())", "42\n", "42\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := runInterp(t, tc.source, tc.stdin); got != tc.want {
				t.Errorf("runInterp(%q) = %q, want %q", tc.source, got, tc.want)
			}
		})
	}
}

func TestInterpMutualRecursion(t *testing.T) {
	src := `
fun isEven(n: Int): Bool { if n == 0 then true else isOdd(n - 1) }
fun isOdd(n: Int): Bool { if n == 0 then false else isEven(n - 1) }
isEven(4)
`
	if got, want := runInterp(t, src, ""), "true\n"; got != want {
		t.Errorf("runInterp(mutual recursion) = %q, want %q", got, want)
	}
}
