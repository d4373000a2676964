// Package ast defines the typed expression tree the parser builds, the type
// checker decorates, and the IR generator lowers (§3 Expression tree).
// Grounded on the teacher's internal/ast package's tagged-variant-node
// style (one exported struct per case plus a closed Node interface),
// trimmed to the variants spec.md §3 lists.
package ast

import "tacc/internal/types"

// Node is the closed sum of expression tree variants. Every node carries a
// mutable Type field, initially types.Unit, set during type checking
// (Invariant B). Child nodes form a pure tree: there are no cycles, and no
// shared subtrees except for the immutable Literal(None) sentinel
// (Invariant A).
type Node interface {
	// EndsWithBlock reports whether this node's last child is itself a
	// Block, or the node is a Block, for the parser's semicolon rule (§4.2
	// "ends_with_block").
	EndsWithBlock() bool
	// NodeType returns the type decorated onto this node by the checker.
	NodeType() types.Type
	// SetNodeType is called by the type checker each time it visits the
	// node (once per node, except the shared UnitLiteral).
	SetNodeType(types.Type)
}

// base is embedded in every concrete node to provide the shared mutable
// Type field without repeating its accessors on each variant.
type base struct {
	typ types.Type
}

func (b *base) NodeType() types.Type {
	if b.typ == nil {
		return types.Unit
	}
	return b.typ
}
func (b *base) SetNodeType(t types.Type) { b.typ = t }
func (b *base) EndsWithBlock() bool { return false }

// LiteralValue is the closed payload of a Literal node: an int, a bool, or
// the unit sentinel (nil).
type LiteralValue interface{}

// Literal is a literal int, bool, or the unit value (value == nil).
type Literal struct {
	base
	Value LiteralValue
}

func NewLiteral(v LiteralValue) *Literal { return &Literal{Value: v} }

// UnitLiteral is the immutable sentinel shared by every implicit "no
// value" position (Invariant A permits sharing only this node).
var UnitLiteral = NewLiteral(nil)

// Identifier references a bound name.
type Identifier struct {
	base
	Name string
}

func NewIdentifier(name string) *Identifier { return &Identifier{Name: name} }

// BinaryOp is `left op right` where op is one of
// + - * / % < > <= >= == != and or =.
type BinaryOp struct {
	base
	Left  Node
	Op    string
	Right Node
}

func NewBinaryOp(left Node, op string, right Node) *BinaryOp {
	return &BinaryOp{Left: left, Op: op, Right: right}
}

func (n *BinaryOp) EndsWithBlock() bool {
	_, ok := n.Right.(*Block)
	return ok
}

// UnaryOp is `op right` where op is "-" or "not".
type UnaryOp struct {
	base
	Op    string
	Right Node
}

func NewUnaryOp(op string, right Node) *UnaryOp { return &UnaryOp{Op: op, Right: right} }

func (n *UnaryOp) EndsWithBlock() bool {
	_, ok := n.Right.(*Block)
	return ok
}

// IfExpression is `if cond then thenClause [else elseClause]`. Else may be
// nil.
type IfExpression struct {
	base
	Cond       Node
	ThenClause Node
	ElseClause Node // nil if absent
}

func NewIfExpression(cond, thenClause, elseClause Node) *IfExpression {
	return &IfExpression{Cond: cond, ThenClause: thenClause, ElseClause: elseClause}
}

func (n *IfExpression) EndsWithBlock() bool {
	if n.ElseClause != nil {
		_, ok := n.ElseClause.(*Block)
		return ok
	}
	_, ok := n.ThenClause.(*Block)
	return ok
}

// WhileExpression is `while cond do body`.
type WhileExpression struct {
	base
	Cond Node
	Body Node
}

func NewWhileExpression(cond, body Node) *WhileExpression {
	return &WhileExpression{Cond: cond, Body: body}
}

func (n *WhileExpression) EndsWithBlock() bool {
	_, ok := n.Body.(*Block)
	return ok
}

// VariableDeclaration is `var name [: declaredType] = initializer`.
// DeclaredType is the empty string when no annotation was given.
type VariableDeclaration struct {
	base
	Name         string
	Initializer  Node
	DeclaredType string
}

func NewVariableDeclaration(name string, init Node, declaredType string) *VariableDeclaration {
	return &VariableDeclaration{Name: name, Initializer: init, DeclaredType: declaredType}
}

// Block is an ordered sequence of expressions; its value is the last
// element's value.
type Block struct {
	base
	Sequence []Node
}

func NewBlock(sequence []Node) *Block { return &Block{Sequence: sequence} }

func (n *Block) EndsWithBlock() bool { return true }

// Function is a call-site expression: `name(args...)`.
type Function struct {
	base
	Name string
	Args []Node
}

func NewFunction(name string, args []Node) *Function { return &Function{Name: name, Args: args} }

// TypedParam is a function parameter: a name with its declared type.
type TypedParam struct {
	Name string
	Type string // type name as spelled in source, resolved by the checker
}

// FunctionDeclaration declares a user function.
type FunctionDeclaration struct {
	base
	Name       string
	Args       []TypedParam
	Body       *Block
	ReturnType string // type name as spelled in source
}

func NewFunctionDeclaration(name string, args []TypedParam, body *Block, returnType string) *FunctionDeclaration {
	return &FunctionDeclaration{Name: name, Args: args, Body: body, ReturnType: returnType}
}

func (n *FunctionDeclaration) EndsWithBlock() bool { return true }

// ReturnExpression is `return value`.
type ReturnExpression struct {
	base
	Value Node
}

func NewReturnExpression(value Node) *ReturnExpression { return &ReturnExpression{Value: value} }

// Module is the top-level node: Sequence[0] is the implicit "main"
// expression, and the remaining elements are FunctionDeclarations in
// source order.
type Module struct {
	base
	Sequence []Node
}

func NewModule(sequence []Node) *Module { return &Module{Sequence: sequence} }

// MainExpression returns the implicit top-level expression.
func (m *Module) MainExpression() Node { return m.Sequence[0] }

// Functions returns every FunctionDeclaration in source order.
func (m *Module) Functions() []*FunctionDeclaration {
	var fns []*FunctionDeclaration
	for _, n := range m.Sequence[1:] {
		if fd, ok := n.(*FunctionDeclaration); ok {
			fns = append(fns, fd)
		}
	}
	return fns
}
