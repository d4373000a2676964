// Package types implements the language's closed type sum (§3 Types).
// Grounded on the teacher's internal/typesystem package's Type-interface-
// plus-concrete-struct pattern, stripped of type variables, unification and
// kinds — this language has no generics and no user-defined types.
package types

import "fmt"

// Type is the closed sum Int | Bool | Unit | Function. Values are
// immutable and freely shared; equality is nominal on the tag.
type Type interface {
	isType()
	String() string
}

// Basic is the concrete representation shared by all four cases: the tag
// alone determines identity, so a single struct suffices instead of one
// struct per case.
type Basic struct {
	name string
}

func (Basic) isType() {}

func (b Basic) String() string { return b.name }

var (
	Int      Type = Basic{"Int"}
	Bool     Type = Basic{"Bool"}
	Unit     Type = Basic{"Unit"}
	Function Type = Basic{"Function"}
)

// Equal reports nominal equality on the type tag.
func Equal(a, b Type) bool {
	ba, aok := a.(Basic)
	bb, bok := b.(Basic)
	return aok && bok && ba.name == bb.name
}

// FromName maps a declared type name (as spelled in source, e.g. after a
// `:` type annotation) to its Type, failing on anything else. Its error is
// a plain fmt.Errorf, not a diagnostics.Error: types is a leaf package with
// no business naming a checker Phase, and every caller already replaces
// this error with its own diagnostics.New(...TypeUnknownOperator...) before
// it reaches a user.
func FromName(name string) (Type, error) {
	switch name {
	case "Int":
		return Int, nil
	case "Bool":
		return Bool, nil
	case "Unit":
		return Unit, nil
	case "Function":
		return Function, nil
	default:
		return nil, fmt.Errorf("type %q is not allowed", name)
	}
}
