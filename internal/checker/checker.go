// Package checker implements the type checker (§4.3). Grounded on the
// teacher's internal/analyzer package's AST-walking-with-a-scope-chain
// shape, re-targeted from Hindley-Milner inference to the plain nominal
// rule table spec.md §4.3 tabulates — this language has no type
// variables and no generics, so every rule is a direct case-by-case check
// rather than unification.
package checker

import (
	"tacc/internal/ast"
	"tacc/internal/config"
	"tacc/internal/diagnostics"
	"tacc/internal/pipeline"
	"tacc/internal/symbols"
	"tacc/internal/types"
)

// funcSig is a declared function's arity and type signature, recorded in
// the first pass over a Module so mutually recursive calls resolve (§4.3
// "first declares each function's name ... so mutual recursion
// type-checks").
type funcSig struct {
	params []types.Type
	ret    types.Type
}

// checker carries the function signature table alongside the variable
// scope chain; both are consulted by Function-call and Identifier checks.
type checker struct {
	funcs map[string]funcSig
}

// Check type-checks m in place, decorating every reachable node's Type
// field (Invariant B).
func Check(m *ast.Module) error {
	c := &checker{funcs: map[string]funcSig{}}
	scope := symbols.NewScope[types.Type]()

	for _, fn := range m.Functions() {
		sig, err := c.declareSignature(fn)
		if err != nil {
			return err
		}
		if existing, ok := c.funcs[fn.Name]; ok && !types.Equal(existing.ret, sig.ret) {
			return diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeRedeclaration, fn.Name, sig.ret, existing.ret)
		}
		c.funcs[fn.Name] = sig
	}

	for _, fn := range m.Functions() {
		if err := c.checkFunctionBody(fn, scope); err != nil {
			return err
		}
	}

	_, err := c.visit(m.MainExpression(), scope)
	return err
}

func (c *checker) declareSignature(fn *ast.FunctionDeclaration) (funcSig, error) {
	ret, err := types.FromName(fn.ReturnType)
	if err != nil {
		return funcSig{}, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, fn.ReturnType)
	}
	params := make([]types.Type, len(fn.Args))
	for i, p := range fn.Args {
		pt, err := types.FromName(p.Type)
		if err != nil {
			return funcSig{}, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, p.Type)
		}
		params[i] = pt
	}
	return funcSig{params: params, ret: ret}, nil
}

func (c *checker) checkFunctionBody(fn *ast.FunctionDeclaration, outer *symbols.Scope[types.Type]) error {
	sig := c.funcs[fn.Name]
	bodyScope := outer.NewChild()
	for i, p := range fn.Args {
		bodyScope.Define(p.Name, sig.params[i])
	}

	bodyType, err := c.visit(fn.Body, bodyScope)
	if err != nil {
		return err
	}
	if !types.Equal(bodyType, sig.ret) {
		return diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeReturnMismatch, fn.Name, sig.ret, bodyType)
	}
	fn.SetNodeType(types.Unit)
	return nil
}

// visit implements the typing rules of §4.3's table, setting node's Type
// field to the result before returning it.
func (c *checker) visit(node ast.Node, scope *symbols.Scope[types.Type]) (types.Type, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return c.visitLiteral(n)
	case *ast.Identifier:
		return c.visitIdentifier(n, scope)
	case *ast.BinaryOp:
		return c.visitBinaryOp(n, scope)
	case *ast.UnaryOp:
		return c.visitUnaryOp(n, scope)
	case *ast.IfExpression:
		return c.visitIf(n, scope)
	case *ast.WhileExpression:
		return c.visitWhile(n, scope)
	case *ast.VariableDeclaration:
		return c.visitVarDecl(n, scope)
	case *ast.Block:
		return c.visitBlock(n, scope)
	case *ast.Function:
		return c.visitCall(n, scope)
	case *ast.ReturnExpression:
		return c.visitReturn(n, scope)
	case *ast.FunctionDeclaration:
		return types.Unit, c.checkFunctionBody(n, scope)
	default:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, "<unknown node>")
	}
}

func (c *checker) visitLiteral(n *ast.Literal) (types.Type, error) {
	var t types.Type
	switch n.Value.(type) {
	case bool:
		t = types.Bool
	case int64:
		t = types.Int
	case nil:
		t = types.Unit
	default:
		t = types.Unit
	}
	n.SetNodeType(t)
	return t, nil
}

func (c *checker) visitIdentifier(n *ast.Identifier, scope *symbols.Scope[types.Type]) (types.Type, error) {
	t, ok := scope.Resolve(n.Name)
	if !ok {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnboundIdent, n.Name)
	}
	n.SetNodeType(t)
	return t, nil
}

func (c *checker) visitBinaryOp(n *ast.BinaryOp, scope *symbols.Scope[types.Type]) (types.Type, error) {
	if n.Op == "=" {
		return c.visitAssign(n, scope)
	}

	left, err := c.visit(n.Left, scope)
	if err != nil {
		return nil, err
	}
	right, err := c.visit(n.Right, scope)
	if err != nil {
		return nil, err
	}

	var result types.Type
	switch {
	case config.ArithmeticOps[n.Op]:
		if !types.Equal(left, types.Int) || !types.Equal(right, types.Int) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, n.Op, "Int, Int", left, right)
		}
		result = types.Int
	case config.ComparisonOps[n.Op]:
		if !types.Equal(left, types.Int) || !types.Equal(right, types.Int) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, n.Op, "Int, Int", left, right)
		}
		result = types.Bool
	case config.EqualityOps[n.Op]:
		if !types.Equal(left, right) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, n.Op, "equal types", left, right)
		}
		result = types.Bool
	case config.LogicalOps[n.Op]:
		if !types.Equal(left, types.Bool) || !types.Equal(right, types.Bool) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, n.Op, "Bool, Bool", left, right)
		}
		result = types.Bool
	default:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, n.Op)
	}

	n.SetNodeType(result)
	return result, nil
}

func (c *checker) visitAssign(n *ast.BinaryOp, scope *symbols.Scope[types.Type]) (types.Type, error) {
	ident, ok := n.Left.(*ast.Identifier)
	if !ok {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnboundIdent, "<non-identifier assignment target>")
	}
	if _, bound := scope.Resolve(ident.Name); !bound {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnboundIdent, ident.Name)
	}

	rhsType, err := c.visit(n.Right, scope)
	if err != nil {
		return nil, err
	}
	scope.Rebind(ident.Name, rhsType)
	ident.SetNodeType(rhsType)
	n.SetNodeType(types.Unit)
	return types.Unit, nil
}

func (c *checker) visitUnaryOp(n *ast.UnaryOp, scope *symbols.Scope[types.Type]) (types.Type, error) {
	operand, err := c.visit(n.Right, scope)
	if err != nil {
		return nil, err
	}

	var result types.Type
	switch n.Op {
	case "-":
		if !types.Equal(operand, types.Int) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, "-", "Int", operand, operand)
		}
		result = types.Int
	case "not":
		if !types.Equal(operand, types.Bool) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, "not", "Bool", operand, operand)
		}
		result = types.Bool
	default:
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, n.Op)
	}

	n.SetNodeType(result)
	return result, nil
}

func (c *checker) visitIf(n *ast.IfExpression, scope *symbols.Scope[types.Type]) (types.Type, error) {
	cond, err := c.visit(n.Cond, scope)
	if err != nil {
		return nil, err
	}
	if !types.Equal(cond, types.Bool) {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeCondNotBool, cond)
	}

	thenType, err := c.visit(n.ThenClause, scope.NewChild())
	if err != nil {
		return nil, err
	}

	var result types.Type
	if n.ElseClause == nil {
		result = types.Unit
	} else {
		elseType, err := c.visit(n.ElseClause, scope.NewChild())
		if err != nil {
			return nil, err
		}
		if !types.Equal(thenType, elseType) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeBranchMismatch, thenType, elseType)
		}
		result = thenType
	}

	n.SetNodeType(result)
	return result, nil
}

func (c *checker) visitWhile(n *ast.WhileExpression, scope *symbols.Scope[types.Type]) (types.Type, error) {
	cond, err := c.visit(n.Cond, scope)
	if err != nil {
		return nil, err
	}
	if !types.Equal(cond, types.Bool) {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeCondNotBool, cond)
	}

	bodyType, err := c.visit(n.Body, scope.NewChild())
	if err != nil {
		return nil, err
	}
	if !types.Equal(bodyType, types.Unit) {
		return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, "while", "Unit body", bodyType, bodyType)
	}

	n.SetNodeType(types.Unit)
	return types.Unit, nil
}

func (c *checker) visitVarDecl(n *ast.VariableDeclaration, scope *symbols.Scope[types.Type]) (types.Type, error) {
	initType, err := c.visit(n.Initializer, scope)
	if err != nil {
		return nil, err
	}
	if n.DeclaredType != "" {
		declared, err := types.FromName(n.DeclaredType)
		if err != nil {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownOperator, n.DeclaredType)
		}
		if !types.Equal(declared, initType) {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeOperandMismatch, "var", declared, initType, initType)
		}
	}
	scope.Define(n.Name, initType)
	n.SetNodeType(types.Unit)
	return types.Unit, nil
}

func (c *checker) visitBlock(n *ast.Block, scope *symbols.Scope[types.Type]) (types.Type, error) {
	inner := scope.NewChild()
	result := types.Unit
	for _, elem := range n.Sequence {
		t, err := c.visit(elem, inner)
		if err != nil {
			return nil, err
		}
		result = t
	}
	n.SetNodeType(result)
	return result, nil
}

func (c *checker) visitReturn(n *ast.ReturnExpression, scope *symbols.Scope[types.Type]) (types.Type, error) {
	t, err := c.visit(n.Value, scope)
	if err != nil {
		return nil, err
	}
	n.SetNodeType(t)
	return t, nil
}

func (c *checker) visitCall(n *ast.Function, scope *symbols.Scope[types.Type]) (types.Type, error) {
	var result types.Type
	switch n.Name {
	case config.PrintIntFunc:
		if err := c.checkArgs(n, scope, []types.Type{types.Int}); err != nil {
			return nil, err
		}
		result = types.Unit
	case config.PrintBoolFunc:
		if err := c.checkArgs(n, scope, []types.Type{types.Bool}); err != nil {
			return nil, err
		}
		result = types.Unit
	case config.ReadIntFunc:
		if err := c.checkArgs(n, scope, nil); err != nil {
			return nil, err
		}
		result = types.Int
	default:
		sig, ok := c.funcs[n.Name]
		if !ok {
			return nil, diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeUnknownFunction, n.Name)
		}
		if err := c.checkArgs(n, scope, sig.params); err != nil {
			return nil, err
		}
		result = sig.ret
	}

	n.SetNodeType(result)
	return result, nil
}

func (c *checker) checkArgs(n *ast.Function, scope *symbols.Scope[types.Type], want []types.Type) error {
	if len(n.Args) != len(want) {
		return diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeArityMismatch, n.Name, len(want), len(n.Args))
	}
	for i, arg := range n.Args {
		got, err := c.visit(arg, scope)
		if err != nil {
			return err
		}
		if !types.Equal(got, want[i]) {
			return diagnostics.New(diagnostics.PhaseChecker, diagnostics.TypeArgMismatch, i+1, n.Name, want[i], got)
		}
	}
	return nil
}

// Stage is the pipeline.Stage wrapping Check.
type Stage struct{}

func (Stage) Run(ctx *pipeline.Context) error {
	return Check(ctx.Module)
}
