package ir

import (
	"fmt"

	"tacc/internal/ast"
	"tacc/internal/config"
	"tacc/internal/diagnostics"
	"tacc/internal/symbols"
	"tacc/internal/types"
)

// generator lowers a typed ast.Module into function-partitioned IR (§4.4).
// Its temporary, label and end-label counters are monotonic across the
// whole module, not reset per function, so every label is unique within
// the one assembly file. The parameter counter and the instruction buffer,
// code, are reset when a new function begins, because parameter pk is
// addressed relative to its own function's frame.
type generator struct {
	tempN, labelN, paramN, endN int
	code                        []Instruction
	endLabel                    string
}

// Generate lowers m into a map from function name (or config.MainFunctionName
// for the implicit top-level expression) to its instruction list.
func Generate(m *ast.Module) (map[string][]Instruction, error) {
	g := &generator{}
	out := map[string][]Instruction{}

	mainCode, err := g.lowerMain(m)
	if err != nil {
		return nil, err
	}
	out[config.MainFunctionName] = mainCode

	for _, fn := range m.Functions() {
		fnCode, err := g.lowerFunction(fn)
		if err != nil {
			return nil, err
		}
		out[fn.Name] = fnCode
	}

	return out, nil
}

func (g *generator) newTemp() Var   { g.tempN++; return Var{Name: fmt.Sprintf("x%d", g.tempN)} }
func (g *generator) newParam() Var  { g.paramN++; return Var{Name: fmt.Sprintf("p%d", g.paramN)} }
func (g *generator) newLabel() string {
	g.labelN++
	return fmt.Sprintf("L%d", g.labelN)
}
func (g *generator) newEndLabel() string {
	g.endN++
	return fmt.Sprintf("End%d", g.endN)
}

func (g *generator) emit(instr Instruction) { g.code = append(g.code, instr) }

// lowerMain lowers the implicit top-level expression under the "start"
// entry label and the print-the-result / Return() epilogue (§4.4
// "Top-level epilogue").
func (g *generator) lowerMain(m *ast.Module) ([]Instruction, error) {
	g.code = nil
	g.emit(Label{Name: "start"})

	main := m.MainExpression()
	scope := symbols.NewScope[Var]()
	result, err := g.visit(main, scope)
	if err != nil {
		return nil, err
	}

	switch {
	case types.Equal(main.NodeType(), types.Int):
		fresh := g.newTemp()
		g.emit(Call{Fun: Fun(config.PrintIntFunc), Args: []Var{result}, Dest: fresh})
	case types.Equal(main.NodeType(), types.Bool):
		fresh := g.newTemp()
		g.emit(Call{Fun: Fun(config.PrintBoolFunc), Args: []Var{result}, Dest: fresh})
	}

	g.emit(Return{})
	return g.code, nil
}

// lowerFunction lowers a user FunctionDeclaration (§4.4 "Function body
// lowering"). The caller pushes arguments first to last, so the last
// argument sits nearest the return address, in slot p1. The odd-arity
// phantom parameter consumes p1 instead, matching the caller's alignment
// pad (§4.5), so the last argument moves to p2. Real parameter j of n
// (1-indexed in declaration order) is therefore p(n-j+1), or p(n-j+2)
// when the phantom is present, and the (8k+8)(%rbp) formula stays uniform.
func (g *generator) lowerFunction(fn *ast.FunctionDeclaration) ([]Instruction, error) {
	g.code = nil
	g.paramN = 0
	scope := symbols.NewScope[Var]()

	n := len(fn.Args)
	if n%2 == 1 {
		g.newParam() // phantom, never referenced again
	}
	params := make([]Var, n)
	for i := range params {
		params[i] = g.newParam()
	}
	for i, p := range fn.Args {
		local := g.newTemp()
		g.emit(Copy{Source: params[n-1-i], Dest: local})
		scope.Define(p.Name, local)
	}

	prevEnd := g.endLabel
	g.endLabel = g.newEndLabel()

	if _, err := g.visit(fn.Body, scope); err != nil {
		return nil, err
	}
	g.emit(Label{Name: g.endLabel})
	g.emit(Return{})
	g.endLabel = prevEnd

	return g.code, nil
}

// visit implements the Visit contract of §4.4: visit(node, scope) → IRVar.
func (g *generator) visit(node ast.Node, scope *symbols.Scope[Var]) (Var, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return g.visitLiteral(n)
	case *ast.Identifier:
		v, ok := scope.Resolve(n.Name)
		if !ok {
			return Var{}, diagnostics.New(diagnostics.PhaseIR, diagnostics.IRUndefinedName, n.Name)
		}
		return v, nil
	case *ast.BinaryOp:
		return g.visitBinaryOp(n, scope)
	case *ast.UnaryOp:
		return g.visitUnaryOp(n, scope)
	case *ast.IfExpression:
		return g.visitIf(n, scope)
	case *ast.WhileExpression:
		return g.visitWhile(n, scope)
	case *ast.VariableDeclaration:
		return g.visitVarDecl(n, scope)
	case *ast.Block:
		return g.visitBlock(n, scope)
	case *ast.Function:
		return g.visitCall(n, scope)
	case *ast.ReturnExpression:
		return g.visitReturn(n, scope)
	default:
		return Var{}, diagnostics.New(diagnostics.PhaseIR, diagnostics.IRUndefinedName, fmt.Sprintf("%T", node))
	}
}

func (g *generator) visitLiteral(n *ast.Literal) (Var, error) {
	switch v := n.Value.(type) {
	case int64:
		d := g.newTemp()
		g.emit(LoadIntConst{Value: v, Dest: d})
		return d, nil
	case bool:
		d := g.newTemp()
		g.emit(LoadBoolConst{Value: v, Dest: d})
		return d, nil
	default:
		return Unit, nil
	}
}

func (g *generator) visitBinaryOp(n *ast.BinaryOp, scope *symbols.Scope[Var]) (Var, error) {
	switch n.Op {
	case "=":
		return g.visitAssign(n, scope)
	case "and":
		return g.visitShortCircuit(n, scope, true)
	case "or":
		return g.visitShortCircuit(n, scope, false)
	}

	left, err := g.visit(n.Left, scope)
	if err != nil {
		return Var{}, err
	}
	right, err := g.visit(n.Right, scope)
	if err != nil {
		return Var{}, err
	}
	dest := g.newTemp()
	g.emit(Call{Fun: Fun(n.Op), Args: []Var{left, right}, Dest: dest})
	return dest, nil
}

func (g *generator) visitAssign(n *ast.BinaryOp, scope *symbols.Scope[Var]) (Var, error) {
	ident := n.Left.(*ast.Identifier)
	target, ok := scope.Resolve(ident.Name)
	if !ok {
		return Var{}, diagnostics.New(diagnostics.PhaseIR, diagnostics.IRUndefinedName, ident.Name)
	}
	rhs, err := g.visit(n.Right, scope)
	if err != nil {
		return Var{}, err
	}
	g.emit(Copy{Source: rhs, Dest: target})
	return target, nil
}

// visitShortCircuit lowers `and`/`or` (§4.4 "Short-circuit lowering"). For
// `and`, isAnd is true: a false left operand skips straight to a False
// result; otherwise the right operand is evaluated and copied in. `or`
// mirrors this with the true/false roles swapped.
func (g *generator) visitShortCircuit(n *ast.BinaryOp, scope *symbols.Scope[Var], isAnd bool) (Var, error) {
	left, err := g.visit(n.Left, scope)
	if err != nil {
		return Var{}, err
	}

	rightLabel := g.newLabel()
	skipLabel := g.newLabel()
	endLabel := g.newLabel()
	result := g.newTemp()

	if isAnd {
		g.emit(CondJump{Cond: left, ThenLabel: rightLabel, ElseLabel: skipLabel})
		g.emit(Label{Name: rightLabel})
		rightVal, err := g.visit(n.Right, scope)
		if err != nil {
			return Var{}, err
		}
		g.emit(Copy{Source: rightVal, Dest: result})
		g.emit(Jump{Label: endLabel})
		g.emit(Label{Name: skipLabel})
		g.emit(LoadBoolConst{Value: false, Dest: result})
	} else {
		g.emit(CondJump{Cond: left, ThenLabel: skipLabel, ElseLabel: rightLabel})
		g.emit(Label{Name: skipLabel})
		g.emit(LoadBoolConst{Value: true, Dest: result})
		g.emit(Jump{Label: endLabel})
		g.emit(Label{Name: rightLabel})
		rightVal, err := g.visit(n.Right, scope)
		if err != nil {
			return Var{}, err
		}
		g.emit(Copy{Source: rightVal, Dest: result})
	}

	g.emit(Label{Name: endLabel})
	return result, nil
}

func (g *generator) visitUnaryOp(n *ast.UnaryOp, scope *symbols.Scope[Var]) (Var, error) {
	operand, err := g.visit(n.Right, scope)
	if err != nil {
		return Var{}, err
	}
	var name string
	switch n.Op {
	case "-":
		name = config.UnaryMinus
	case "not":
		name = config.UnaryNot
	}
	dest := g.newTemp()
	g.emit(Call{Fun: Fun(name), Args: []Var{operand}, Dest: dest})
	return dest, nil
}

func (g *generator) visitIf(n *ast.IfExpression, scope *symbols.Scope[Var]) (Var, error) {
	cond, err := g.visit(n.Cond, scope)
	if err != nil {
		return Var{}, err
	}

	thenLabel := g.newLabel()

	if n.ElseClause == nil {
		endLabel := g.newLabel()
		g.emit(CondJump{Cond: cond, ThenLabel: thenLabel, ElseLabel: endLabel})
		g.emit(Label{Name: thenLabel})
		thenVal, err := g.visit(n.ThenClause, scope.NewChild())
		if err != nil {
			return Var{}, err
		}
		g.emit(Label{Name: endLabel})
		return thenVal, nil
	}

	elseLabel := g.newLabel()
	endLabel := g.newLabel()
	result := g.newTemp()

	g.emit(CondJump{Cond: cond, ThenLabel: thenLabel, ElseLabel: elseLabel})
	g.emit(Label{Name: thenLabel})
	thenVal, err := g.visit(n.ThenClause, scope.NewChild())
	if err != nil {
		return Var{}, err
	}
	g.emit(Copy{Source: thenVal, Dest: result})
	g.emit(Jump{Label: endLabel})

	g.emit(Label{Name: elseLabel})
	elseVal, err := g.visit(n.ElseClause, scope.NewChild())
	if err != nil {
		return Var{}, err
	}
	g.emit(Copy{Source: elseVal, Dest: result})

	g.emit(Label{Name: endLabel})
	return result, nil
}

func (g *generator) visitWhile(n *ast.WhileExpression, scope *symbols.Scope[Var]) (Var, error) {
	startLabel := g.newLabel()
	bodyLabel := g.newLabel()
	endLabel := g.newLabel()

	g.emit(Label{Name: startLabel})
	cond, err := g.visit(n.Cond, scope)
	if err != nil {
		return Var{}, err
	}
	g.emit(CondJump{Cond: cond, ThenLabel: bodyLabel, ElseLabel: endLabel})

	g.emit(Label{Name: bodyLabel})
	if _, err := g.visit(n.Body, scope.NewChild()); err != nil {
		return Var{}, err
	}
	g.emit(Jump{Label: startLabel})

	g.emit(Label{Name: endLabel})
	return Unit, nil
}

func (g *generator) visitVarDecl(n *ast.VariableDeclaration, scope *symbols.Scope[Var]) (Var, error) {
	init, err := g.visit(n.Initializer, scope)
	if err != nil {
		return Var{}, err
	}
	local := g.newTemp()
	g.emit(Copy{Source: init, Dest: local})
	scope.Define(n.Name, local)
	return Unit, nil
}

func (g *generator) visitBlock(n *ast.Block, scope *symbols.Scope[Var]) (Var, error) {
	inner := scope.NewChild()
	result := Unit
	for _, elem := range n.Sequence {
		v, err := g.visit(elem, inner)
		if err != nil {
			return Var{}, err
		}
		result = v
	}
	return result, nil
}

func (g *generator) visitCall(n *ast.Function, scope *symbols.Scope[Var]) (Var, error) {
	args := make([]Var, len(n.Args))
	for i, a := range n.Args {
		v, err := g.visit(a, scope)
		if err != nil {
			return Var{}, err
		}
		args[i] = v
	}
	dest := g.newTemp()
	g.emit(Call{Fun: Fun(n.Name), Args: args, Dest: dest})
	return dest, nil
}

func (g *generator) visitReturn(n *ast.ReturnExpression, scope *symbols.Scope[Var]) (Var, error) {
	val, err := g.visit(n.Value, scope)
	if err != nil {
		return Var{}, err
	}
	g.emit(Return{Val: val})
	g.emit(Jump{Label: g.endLabel})
	return Unit, nil
}
