package config

// IntrinsicOperators is the closed set of operator/unary names the assembly
// generator inlines rather than emitting a `call` instruction for (§4.5
// Call dispatch). Arithmetic, comparison, logical and unary operators are
// all intrinsics; print_int/print_bool/read_int are externs, never
// intrinsics, even though they are also Call targets in the IR.
var IntrinsicOperators = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true,
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
	"unary_-": true, "unary_not": true,
	"and": true, "or": true,
}

// ArithmeticOps produce an Int result from two Int operands.
var ArithmeticOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true}

// ComparisonOps produce a Bool result from two Int operands.
var ComparisonOps = map[string]bool{"<": true, ">": true, "<=": true, ">=": true}

// EqualityOps produce a Bool result from two operands of equal type.
var EqualityOps = map[string]bool{"==": true, "!=": true}

// LogicalOps produce a Bool result from two Bool operands and are the only
// operators the IR generator short-circuits (§4.4).
var LogicalOps = map[string]bool{"and": true, "or": true}

// UnaryMinus and UnaryNot are the IR call-target names synthesized for the
// two unary operators (§4.4, §9: kept as string-named intrinsics rather
// than a closed enum, matching the original's dispatch-by-name design).
const (
	UnaryMinus = "unary_-"
	UnaryNot   = "unary_not"
)
