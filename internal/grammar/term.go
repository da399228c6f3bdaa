package grammar

import (
	"fmt"
	"regexp"

	"github.com/golangsnmp/descent/internal/lexer"
)

type termKind int

const (
	termLit termKind = iota
	termRef
	termStar
	termAny
	termMatch
)

// Term is one element of a clause.
type Term struct {
	kind    termKind
	text    string // literal text or rule name
	tokKind lexer.TokenKind
	pattern *regexp.Regexp
}

// Lit matches a single token whose lexeme equals text exactly and binds
// that token.
func Lit(text string) Term {
	return Term{kind: termLit, text: text}
}

// Ref evaluates the named rule and binds its value. NoMatch aborts the
// clause.
func Ref(rule string) Term {
	return Term{kind: termRef, text: rule}
}

// Star evaluates the named rule like Ref but never aborts the clause:
// on NoMatch it binds the zero value and consumes nothing. Use it for the
// head rule of a Repeat.
func Star(rule string) Term {
	return Term{kind: termStar, text: rule}
}

// Any matches any single token and binds it.
func Any() Term {
	return Term{kind: termAny}
}

// Match matches a single token of the given kind whose whole lexeme
// matches pattern, and binds the token. It panics if pattern does not
// compile; grammars are built once at startup.
func Match(kind lexer.TokenKind, pattern string) Term {
	return Term{
		kind:    termMatch,
		tokKind: kind,
		pattern: regexp.MustCompile(`^(?:` + pattern + `)$`),
	}
}

// RuleName returns the referenced rule for Ref and Star terms, or "".
func (t Term) RuleName() string {
	if t.kind == termRef || t.kind == termStar {
		return t.text
	}
	return ""
}

// String renders the term in the notation used by Grammar.String.
func (t Term) String() string {
	switch t.kind {
	case termLit:
		return fmt.Sprintf("%q", t.text)
	case termRef:
		return "<" + t.text + ">"
	case termStar:
		return "<" + t.text + ">*"
	case termAny:
		return "."
	case termMatch:
		return fmt.Sprintf("%s/%s/", t.tokKind, t.pattern)
	}
	return "?"
}
