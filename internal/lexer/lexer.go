// Package lexer implements the tokenizer (§4.1). Grounded on
// RoiRomem-xsharp/main.go's regex-table tokenizer — the only example in
// the retrieved corpus that scans source with an ordered list of
// per-kind regexes — adapted from xsharp's single combined alternation
// to the fixed try-in-order, longest-match-by-first-pattern rule spec.md
// §4.1 requires, and wrapped in the teacher's (mcgru-funxy/internal/lexer)
// pipeline.Stage shape.
package lexer

import (
	"regexp"
	"strings"

	"tacc/internal/config"
	"tacc/internal/diagnostics"
	"tacc/internal/pipeline"
	"tacc/internal/token"
)

var (
	whitespaceRe  = regexp.MustCompile(`^\s+`)
	lineCommentRe = regexp.MustCompile(`^(//|#)[^\n]*(\n|$)`)

	intLiteralRe  = regexp.MustCompile(`^[0-9]+`)
	identifierRe  = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*`)
	twoCharOpRe   = regexp.MustCompile(alternation(config.TwoCharOperators))
	oneCharOpRe   = regexp.MustCompile(charClass(config.OneCharOperators))
	punctuationRe = regexp.MustCompile(charClass(config.PunctuationChars))
)

// alternation builds an anchored regex trying each multi-character lexeme
// in turn, so the lexer's operator table (config.TwoCharOperators) stays
// the single source of truth instead of a second copy of the pattern.
func alternation(lexemes []string) string {
	quoted := make([]string, len(lexemes))
	for i, l := range lexemes {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return "^(" + strings.Join(quoted, "|") + ")"
}

// charClass builds an anchored single-character regex class from a table
// of one-character lexemes (config.OneCharOperators, config.PunctuationChars).
// The four characters that are special inside a class ('-', '^', ']' and
// '\') are escaped by hand; every other character is written as is.
func charClass(chars []string) string {
	var b strings.Builder
	b.WriteString("^[")
	for _, c := range chars {
		switch c {
		case "-", "^", "]", `\`:
			b.WriteByte('\\')
		}
		b.WriteString(c)
	}
	b.WriteString("]")
	return b.String()
}

// Tokenize scans the full source string into an ordered list of tokens,
// per spec.md §4.1: whitespace and single-line comments are skipped
// before each match attempt, and at each remaining position patterns are
// tried in the fixed order int_literal, identifier, operator (two-char
// forms before one-char), punctuation.
func Tokenize(source string) ([]token.Token, error) {
	var tokens []token.Token
	pos := 0

	for pos < len(source) {
		rest := source[pos:]

		if loc := whitespaceRe.FindString(rest); loc != "" {
			pos += len(loc)
			continue
		}
		if loc := lineCommentRe.FindString(rest); loc != "" {
			pos += len(loc)
			continue
		}

		tok, n := matchOne(rest)
		if n == 0 {
			end := pos + 10
			if end > len(source) {
				end = len(source)
			}
			return nil, diagnostics.New(diagnostics.PhaseLexer, diagnostics.LexNoMatch, source[pos:end])
		}
		tokens = append(tokens, tok)
		pos += n
	}

	return tokens, nil
}

// matchOne tries the fixed pattern order at the start of rest and returns
// the matched token together with the number of bytes consumed. It
// returns a zero Token and 0 if nothing matches.
func matchOne(rest string) (token.Token, int) {
	if m := intLiteralRe.FindString(rest); m != "" {
		return token.Token{Kind: token.IntLiteral, Text: m}, len(m)
	}
	if m := identifierRe.FindString(rest); m != "" {
		return token.Token{Kind: token.Identifier, Text: m}, len(m)
	}
	if m := twoCharOpRe.FindString(rest); m != "" {
		return token.Token{Kind: token.Operator, Text: m}, len(m)
	}
	if m := oneCharOpRe.FindString(rest); m != "" {
		return token.Token{Kind: token.Operator, Text: m}, len(m)
	}
	if m := punctuationRe.FindString(rest); m != "" {
		return token.Token{Kind: token.Punctuation, Text: m}, len(m)
	}
	return token.Token{}, 0
}

// Stage is the pipeline.Stage that runs Tokenize and stores the result on
// the context for the parser stage to consume.
type Stage struct{}

func (Stage) Run(ctx *pipeline.Context) error {
	toks, err := Tokenize(ctx.Source)
	if err != nil {
		return err
	}
	ctx.Tokens = toks
	return nil
}
