// Package parser implements the hand-written recursive-descent parser
// (§4.2). Grounded on usein-abilev-chlang/parser/parser.go and
// RoiRomem-xsharp/main.go — the two corpus examples that parse with
// explicit per-precedence-level functions rather than a Pratt/operator-
// precedence table, the closer structural match to spec.md §4.2's
// level-based grammar than the teacher's own Pratt-style
// internal/parser/expressions.go. The single-cursor peek/consume plumbing
// follows the teacher's internal/parser/parser.go curToken/peekToken
// convention, collapsed to a single cursor since this grammar never needs
// two-token lookahead.
package parser

import (
	"tacc/internal/ast"
	"tacc/internal/config"
	"tacc/internal/diagnostics"
	"tacc/internal/pipeline"
	"tacc/internal/token"
)

// Parser holds the single positional cursor into the token stream.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New creates a Parser over the given token list.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a full module: zero or more function declarations followed
// by the top-level expressions run, then asserts end of stream (§4.2
// "Module assembly").
func Parse(tokens []token.Token) (*ast.Module, error) {
	return New(tokens).ParseModule()
}

// peek returns the current token, or the synthetic end sentinel once the
// stream is exhausted. end is never produced by the lexer itself.
func (p *Parser) peek() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.EndToken
}

// consume advances past the current token and returns it.
func (p *Parser) consume() token.Token {
	tok := p.peek()
	p.pos++
	return tok
}

// expectText advances past the current token, asserting its text matches
// exactly.
func (p *Parser) expectText(text string) (token.Token, error) {
	tok := p.peek()
	if tok.Text != text {
		return tok, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseUnexpectedToken, text, tok.Text)
	}
	p.pos++
	return tok, nil
}

// isKeyword reports whether the current token is an identifier-shaped
// keyword lexeme matching text (§4.1: keywords are lexed as identifiers).
// text must name a registered keyword (config.Keywords); every call site
// below passes one of the fixed lexemes, so a mismatch here means the
// grammar and config.Keywords have drifted apart.
func (p *Parser) isKeyword(text string) bool {
	if !config.Keywords[text] {
		panic("parser: isKeyword called with unregistered keyword " + text)
	}
	tok := p.peek()
	return tok.Kind == token.Identifier && tok.Text == text
}

// atTerminator reports whether the current token ends an expressions run:
// either end of stream, or a closing brace.
func (p *Parser) atTerminator() bool {
	tok := p.peek()
	return tok.Kind == token.End || tok.Is("}")
}

// ParseModule implements the `module` production.
func (p *Parser) ParseModule() (*ast.Module, error) {
	var decls []ast.Node
	for p.isKeyword("fun") {
		decl, err := p.parseFunctionDecl()
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}

	body, err := p.parseExpressions()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Kind != token.End {
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseTrailingTokens, tok.Text)
	}

	var main ast.Node
	switch len(body) {
	case 0:
		main = ast.UnitLiteral
	case 1:
		main = body[0]
	default:
		main = ast.NewBlock(body)
	}

	sequence := append([]ast.Node{main}, decls...)
	return ast.NewModule(sequence), nil
}

// parseExpressions implements the `expressions` production and the
// block/semicolon rule (§4.2).
func (p *Parser) parseExpressions() ([]ast.Node, error) {
	var seq []ast.Node

	for !p.atTerminator() {
		var expr ast.Node
		var err error
		if p.isKeyword("var") {
			expr, err = p.parseVarDecl()
		} else {
			expr, err = p.parseExpr()
		}
		if err != nil {
			return nil, err
		}
		seq = append(seq, expr)

		if p.atTerminator() {
			break
		}

		if p.peek().Is(";") {
			p.consume()
			if p.atTerminator() {
				seq = append(seq, ast.UnitLiteral)
			}
			continue
		}

		if expr.EndsWithBlock() {
			continue
		}

		tok := p.peek()
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseMissingSemi, tok.Text)
	}

	return seq, nil
}

// parseVarDecl implements `var_decl`. It is only ever invoked from
// parseExpressions at a block-element position; any 'var' encountered
// while parsing an expr is rejected by parseFactor with ParseVarPosition
// (§4.2 "Failures").
func (p *Parser) parseVarDecl() (ast.Node, error) {
	p.consume() // 'var'
	nameTok := p.consume()
	if nameTok.Kind != token.Identifier {
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseUnexpectedToken, "identifier", nameTok.Text)
	}

	declaredType := ""
	if p.peek().Is(":") {
		p.consume()
		typeTok := p.consume()
		declaredType = typeTok.Text
	}

	if _, err := p.expectText("="); err != nil {
		return nil, err
	}
	init, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return ast.NewVariableDeclaration(nameTok.Text, init, declaredType), nil
}

// parseFunctionDecl implements `function_decl`.
func (p *Parser) parseFunctionDecl() (ast.Node, error) {
	p.consume() // 'fun'
	nameTok := p.consume()
	if nameTok.Kind != token.Identifier {
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseUnexpectedToken, "identifier", nameTok.Text)
	}

	if _, err := p.expectText("("); err != nil {
		return nil, err
	}
	var params []ast.TypedParam
	for !p.peek().Is(")") {
		paramName := p.consume()
		if paramName.Kind != token.Identifier {
			return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseUnexpectedToken, "identifier", paramName.Text)
		}
		if _, err := p.expectText(":"); err != nil {
			return nil, err
		}
		paramType := p.consume()
		params = append(params, ast.TypedParam{Name: paramName.Text, Type: paramType.Text})
		if p.peek().Is(",") {
			p.consume()
			continue
		}
		break
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}

	returnType := "Unit"
	if p.peek().Is(":") {
		p.consume()
		returnType = p.consume().Text
	}

	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}

	return ast.NewFunctionDeclaration(nameTok.Text, params, body, returnType), nil
}

// parseBlock implements `block`.
func (p *Parser) parseBlock() (*ast.Block, error) {
	if _, err := p.expectText("{"); err != nil {
		return nil, err
	}
	seq, err := p.parseExpressions()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("}"); err != nil {
		return nil, err
	}
	return ast.NewBlock(seq), nil
}

// parseExpr implements `expr := assignment`.
func (p *Parser) parseExpr() (ast.Node, error) {
	return p.parseAssignment()
}

// parseAssignment implements `assignment`.
func (p *Parser) parseAssignment() (ast.Node, error) {
	left, err := p.parseOrExpr()
	if err != nil {
		return nil, err
	}
	if _, ok := left.(*ast.Identifier); ok && p.peek().Is("=") {
		p.consume()
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.NewBinaryOp(left, "=", right), nil
	}
	return left, nil
}

// parseOrExpr implements `or_expr`.
func (p *Parser) parseOrExpr() (ast.Node, error) {
	left, err := p.parseAndCmp()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") || p.isKeyword("and") {
		op := p.consume().Text
		right, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(left, op, right)
	}
	return left, nil
}

// andCmpOps is the and_cmp level's operator set: every comparison and
// equality operator the checker recognizes (config.ComparisonOps,
// config.EqualityOps), plus '%', which this grammar binds at the same
// precedence tier as comparisons rather than alongside the other
// arithmetic operators in parsePoly/parseTerm.
var andCmpOps = comparisonAndEqualityOps()

func comparisonAndEqualityOps() []string {
	ops := []string{"%"}
	for op := range config.ComparisonOps {
		ops = append(ops, op)
	}
	for op := range config.EqualityOps {
		ops = append(ops, op)
	}
	return ops
}

// parseAndCmp implements `and_cmp`.
func (p *Parser) parseAndCmp() (ast.Node, error) {
	left, err := p.parsePoly()
	if err != nil {
		return nil, err
	}
	for p.peek().Is(andCmpOps...) {
		op := p.consume().Text
		var right ast.Node
		if p.peek().Is("{") {
			right, err = p.parseBlock()
		} else {
			right, err = p.parsePoly()
		}
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(left, op, right)
	}
	return left, nil
}

// parsePoly implements `poly`.
func (p *Parser) parsePoly() (ast.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().Is("+", "-") {
		op := p.consume().Text
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(left, op, right)
	}
	return left, nil
}

// parseTerm implements `term`.
func (p *Parser) parseTerm() (ast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peek().Is("*", "/") {
		op := p.consume().Text
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinaryOp(left, op, right)
	}
	return left, nil
}

// parseFactor implements `factor`.
func (p *Parser) parseFactor() (ast.Node, error) {
	tok := p.peek()

	switch {
	case tok.Is("("):
		p.consume()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(")"); err != nil {
			return nil, err
		}
		return inner, nil

	case p.isKeyword("if"):
		return p.parseIfExpr()

	case p.isKeyword("while"):
		return p.parseWhileExpr()

	case p.isKeyword("not"), tok.Is("-"):
		return p.parseUnary()

	case p.isKeyword("return"):
		return p.parseReturn()

	case tok.Kind == token.IntLiteral:
		p.consume()
		return p.parseIntLiteral(tok)

	case p.isKeyword("var"):
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseVarPosition)

	case tok.Kind == token.Identifier:
		return p.parseIdentOrCall()

	case tok.Is("{"):
		return p.parseBlock()

	default:
		return nil, diagnostics.New(diagnostics.PhaseParser, diagnostics.ParseUnexpectedLead, tok.Text)
	}
}

func (p *Parser) parseIntLiteral(tok token.Token) (ast.Node, error) {
	var value int64
	for _, r := range tok.Text {
		value = value*10 + int64(r-'0')
	}
	return ast.NewLiteral(value), nil
}

// parseIfExpr implements `if_expr`.
func (p *Parser) parseIfExpr() (ast.Node, error) {
	p.consume() // 'if'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("then"); err != nil {
		return nil, err
	}
	thenClause, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var elseClause ast.Node
	if p.isKeyword("else") {
		p.consume()
		elseClause, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return ast.NewIfExpression(cond, thenClause, elseClause), nil
}

// parseWhileExpr implements `while_expr`, including the while-desugaring
// rule (§4.2 "'while' desugaring").
func (p *Parser) parseWhileExpr() (ast.Node, error) {
	p.consume() // 'while'
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText("do"); err != nil {
		return nil, err
	}
	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, isBlock := body.(*ast.Block); !isBlock && p.peek().Is(";") {
		p.consume()
		body = ast.NewBlock([]ast.Node{body, ast.UnitLiteral})
	}
	return ast.NewWhileExpression(cond, body), nil
}

// parseUnary implements `unary`: the operand is another unary when the
// lookahead is itself a unary operator (allowing chains like `- - x`),
// otherwise a single factor — unary binds tighter than any binary
// operator, matching its placement inside `factor`.
func (p *Parser) parseUnary() (ast.Node, error) {
	op := p.consume().Text
	var operand ast.Node
	var err error
	if p.isKeyword("not") || p.peek().Is("-") {
		operand, err = p.parseUnary()
	} else {
		operand, err = p.parseFactor()
	}
	if err != nil {
		return nil, err
	}
	return ast.NewUnaryOp(op, operand), nil
}

// parseReturn implements `return_stmt`.
func (p *Parser) parseReturn() (ast.Node, error) {
	p.consume() // 'return'
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(";"); err != nil {
		return nil, err
	}
	return ast.NewReturnExpression(value), nil
}

// parseIdentOrCall implements `ident_or_call`.
func (p *Parser) parseIdentOrCall() (ast.Node, error) {
	tok := p.consume()

	if tok.Text == "true" {
		return ast.NewLiteral(true), nil
	}
	if tok.Text == "false" {
		return ast.NewLiteral(false), nil
	}

	if !p.peek().Is("(") {
		return ast.NewIdentifier(tok.Text), nil
	}

	p.consume() // '('
	var args []ast.Node
	for !p.peek().Is(")") {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peek().Is(",") {
			p.consume()
			continue
		}
		break
	}
	if _, err := p.expectText(")"); err != nil {
		return nil, err
	}
	return ast.NewFunction(tok.Text, args), nil
}

// Stage is the pipeline.Stage that parses ctx.Tokens into ctx.Module.
type Stage struct{}

func (Stage) Run(ctx *pipeline.Context) error {
	m, err := Parse(ctx.Tokens)
	if err != nil {
		return err
	}
	ctx.Module = m
	return nil
}
