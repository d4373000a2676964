// Package interp implements the optional direct interpreter (§6 CLI
// surface, "interpret"), supplementing the core ir/asm pipeline with the
// original_source/src/compiler/interpreter.py feature the distilled spec
// left unspecified. Grounded on that draft's single recursive `interpret`
// function for Literal/BinaryOp/IfExpression, extended to the full
// language (identifiers, scopes, while, var, block, unary, function
// declarations and calls, read_int) in the teacher's (mcgru-funxy/
// internal/evaluator) early-return idiom: a function body's `return`
// propagates upward as a wrapped signal value unwrapped at the call
// boundary, the same shape as the teacher's *ReturnValue object.
package interp

import (
	"bufio"
	"fmt"
	"io"

	"tacc/internal/ast"
	"tacc/internal/config"
	"tacc/internal/diagnostics"
	"tacc/internal/symbols"
)

// Value is the closed sum of runtime values this interpreter produces:
// int64, bool, or nil for Unit.
type Value interface{}

// returnSignal wraps a value mid-propagation out of a function body; it
// is never itself returned to the caller of Run.
type returnSignal struct {
	value Value
}

// Interp holds the declared user functions and the I/O streams read_int
// and print_int/print_bool operate on.
type Interp struct {
	funcs map[string]*ast.FunctionDeclaration
	out   io.Writer
	in    *bufio.Reader
}

// New creates an Interp writing to out and reading read_int input from in.
func New(out io.Writer, in io.Reader) *Interp {
	return &Interp{funcs: map[string]*ast.FunctionDeclaration{}, out: out, in: bufio.NewReader(in)}
}

// Run interprets m's implicit top-level expression, printing its value the
// same way the IR/assembly pipeline's top-level epilogue does (§4.4) when
// the result type is Int or Bool.
func (it *Interp) Run(m *ast.Module) error {
	for _, fn := range m.Functions() {
		it.funcs[fn.Name] = fn
	}

	scope := symbols.NewScope[Value]()
	result, err := it.eval(m.MainExpression(), scope)
	if err != nil {
		return err
	}
	if rs, ok := result.(returnSignal); ok {
		result = rs.value
	}

	switch v := result.(type) {
	case int64:
		fmt.Fprintf(it.out, "%d\n", v)
	case bool:
		fmt.Fprintf(it.out, "%t\n", v)
	}
	return nil
}

func (it *Interp) eval(node ast.Node, scope *symbols.Scope[Value]) (Value, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil

	case *ast.Identifier:
		v, ok := scope.Resolve(n.Name)
		if !ok {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnboundIdent, n.Name)
		}
		return v, nil

	case *ast.BinaryOp:
		return it.evalBinaryOp(n, scope)

	case *ast.UnaryOp:
		return it.evalUnaryOp(n, scope)

	case *ast.IfExpression:
		return it.evalIf(n, scope)

	case *ast.WhileExpression:
		return it.evalWhile(n, scope)

	case *ast.VariableDeclaration:
		v, err := it.eval(n.Initializer, scope)
		if err != nil {
			return nil, err
		}
		if rs, ok := v.(returnSignal); ok {
			return rs, nil
		}
		scope.Define(n.Name, v)
		return nil, nil

	case *ast.Block:
		return it.evalBlock(n, scope)

	case *ast.Function:
		return it.evalCall(n, scope)

	case *ast.ReturnExpression:
		v, err := it.eval(n.Value, scope)
		if err != nil {
			return nil, err
		}
		return returnSignal{value: v}, nil

	default:
		return nil, fmt.Errorf("interp: unsupported node %T", node)
	}
}

func (it *Interp) evalBinaryOp(n *ast.BinaryOp, scope *symbols.Scope[Value]) (Value, error) {
	if n.Op == "=" {
		ident := n.Left.(*ast.Identifier)
		v, err := it.eval(n.Right, scope)
		if err != nil {
			return nil, err
		}
		if rs, ok := v.(returnSignal); ok {
			return rs, nil
		}
		scope.Rebind(ident.Name, v)
		return nil, nil
	}

	if n.Op == "and" || n.Op == "or" {
		left, err := it.eval(n.Left, scope)
		if err != nil {
			return nil, err
		}
		if rs, ok := left.(returnSignal); ok {
			return rs, nil
		}
		leftBool := left.(bool)
		if n.Op == "and" && !leftBool {
			return false, nil
		}
		if n.Op == "or" && leftBool {
			return true, nil
		}
		return it.evalOperand(n.Right, scope)
	}

	left, err := it.evalOperand(n.Left, scope)
	if err != nil || isReturn(left) {
		return left, err
	}
	right, err := it.evalOperand(n.Right, scope)
	if err != nil || isReturn(right) {
		return right, err
	}

	switch n.Op {
	case "+":
		return left.(int64) + right.(int64), nil
	case "-":
		return left.(int64) - right.(int64), nil
	case "*":
		return left.(int64) * right.(int64), nil
	case "/":
		return left.(int64) / right.(int64), nil
	case "%":
		return left.(int64) % right.(int64), nil
	case "<":
		return left.(int64) < right.(int64), nil
	case ">":
		return left.(int64) > right.(int64), nil
	case "<=":
		return left.(int64) <= right.(int64), nil
	case ">=":
		return left.(int64) >= right.(int64), nil
	case "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	default:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, n.Op)
	}
}

// evalOperand evaluates one operand of a binary operator. Callers test the
// result with isReturn, so a return signal raised inside the operand
// propagates out of the enclosing expression instead of being used as an
// operand value.
func (it *Interp) evalOperand(node ast.Node, scope *symbols.Scope[Value]) (Value, error) {
	return it.eval(node, scope)
}

func isReturn(v Value) bool {
	_, ok := v.(returnSignal)
	return ok
}

func (it *Interp) evalUnaryOp(n *ast.UnaryOp, scope *symbols.Scope[Value]) (Value, error) {
	v, err := it.eval(n.Right, scope)
	if err != nil || isReturn(v) {
		return v, err
	}
	switch n.Op {
	case "-":
		return -v.(int64), nil
	case "not":
		return !v.(bool), nil
	default:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, n.Op)
	}
}

func (it *Interp) evalIf(n *ast.IfExpression, scope *symbols.Scope[Value]) (Value, error) {
	cond, err := it.eval(n.Cond, scope)
	if err != nil || isReturn(cond) {
		return cond, err
	}
	if cond.(bool) {
		return it.eval(n.ThenClause, scope.NewChild())
	}
	if n.ElseClause != nil {
		return it.eval(n.ElseClause, scope.NewChild())
	}
	return nil, nil
}

func (it *Interp) evalWhile(n *ast.WhileExpression, scope *symbols.Scope[Value]) (Value, error) {
	for {
		cond, err := it.eval(n.Cond, scope)
		if err != nil || isReturn(cond) {
			return cond, err
		}
		if !cond.(bool) {
			return nil, nil
		}
		v, err := it.eval(n.Body, scope.NewChild())
		if err != nil || isReturn(v) {
			return v, err
		}
	}
}

func (it *Interp) evalBlock(n *ast.Block, scope *symbols.Scope[Value]) (Value, error) {
	inner := scope.NewChild()
	var result Value
	for _, elem := range n.Sequence {
		v, err := it.eval(elem, inner)
		if err != nil {
			return nil, err
		}
		if isReturn(v) {
			return v, nil
		}
		result = v
	}
	return result, nil
}

func (it *Interp) evalCall(n *ast.Function, scope *symbols.Scope[Value]) (Value, error) {
	switch n.Name {
	case config.PrintIntFunc:
		v, err := it.eval(n.Args[0], scope)
		if err != nil || isReturn(v) {
			return v, err
		}
		fmt.Fprintf(it.out, "%d\n", v.(int64))
		return nil, nil
	case config.PrintBoolFunc:
		v, err := it.eval(n.Args[0], scope)
		if err != nil || isReturn(v) {
			return v, err
		}
		fmt.Fprintf(it.out, "%t\n", v.(bool))
		return nil, nil
	case config.ReadIntFunc:
		return it.readInt()
	}

	fn, ok := it.funcs[n.Name]
	if !ok {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownFunction, n.Name)
	}

	callScope := symbols.NewScope[Value]()
	for i, param := range fn.Args {
		v, err := it.eval(n.Args[i], scope)
		if err != nil || isReturn(v) {
			return v, err
		}
		callScope.Define(param.Name, v)
	}

	result, err := it.eval(fn.Body, callScope)
	if err != nil {
		return nil, err
	}
	if rs, ok := result.(returnSignal); ok {
		return rs.value, nil
	}
	return result, nil
}

// readInt implements read_int(): reads one whitespace-delimited integer
// token from stdin, aborting with a runtime I/O error on bad input (§6
// Runtime ABI).
func (it *Interp) readInt() (Value, error) {
	var value int64
	var negative bool
	first := true
	for {
		r, _, err := it.in.ReadRune()
		if err != nil {
			break
		}
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			if first {
				continue
			}
			break
		}
		if first && r == '-' {
			negative = true
			first = false
			continue
		}
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("read_int: invalid input byte %q", r)
		}
		value = value*10 + int64(r-'0')
		first = false
	}
	if negative {
		value = -value
	}
	return value, nil
}
