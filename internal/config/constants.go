// Package config holds the fixed tables shared by every compiler stage:
// keywords, operator lexemes, and the runtime's extern surface. Grounded on
// the teacher's internal/config package, which keeps this kind of table as
// flat exported package-level values rather than behind accessor functions.
package config

// SourceFileExt is the canonical extension for this language's source files.
const SourceFileExt = ".tc"

// Keywords is the set of identifier-shaped lexemes the parser treats as
// keywords rather than user identifiers. The lexer never distinguishes
// them; per spec.md §4.1 they are lexed as plain identifiers.
var Keywords = map[string]bool{
	"if":     true,
	"then":   true,
	"else":   true,
	"while":  true,
	"do":     true,
	"var":    true,
	"fun":    true,
	"return": true,
	"and":    true,
	"or":     true,
	"not":    true,
	"true":   true,
	"false":  true,
}

// TwoCharOperators lists the two-character operator lexemes, tried before
// any single-character operator so that e.g. "==" is not lexed as "=" "=".
var TwoCharOperators = []string{"==", "<=", ">=", "!="}

// OneCharOperators lists the remaining single-character operator lexemes.
var OneCharOperators = []string{"+", "-", "*", "/", "=", ">", "<", "%"}

// PunctuationChars lists the single-character punctuation lexemes.
var PunctuationChars = []string{"(", ")", "{", "}", ",", ";", ":"}

// Runtime extern names: the three primitives the generated assembly links
// against (§6 Runtime ABI).
const (
	PrintIntFunc  = "print_int"
	PrintBoolFunc = "print_bool"
	ReadIntFunc   = "read_int"
)

// RuntimeExterns lists every symbol the generated assembly declares with
// `.extern`.
var RuntimeExterns = []string{PrintIntFunc, PrintBoolFunc, ReadIntFunc}

// MainFunctionName is the IR-map key reserved for the implicit top-level
// expression.
const MainFunctionName = "main"
