package grammar

import (
	"strings"

	"github.com/golangsnmp/descent/internal/lexer"
	"github.com/golangsnmp/descent/internal/stream"
)

// Binding is the value bound by one term of a matched clause.
// Literal, Any and Match terms bind Token; Ref and Star terms bind Value.
type Binding[V any] struct {
	Value   V
	Token   lexer.Token
	Matched bool // false only for a Star term whose rule did not match
}

// Args holds the bindings of a clause, one per term, in term order.
type Args[V any] struct {
	binds []Binding[V]
}

// Len returns the number of bindings.
func (a Args[V]) Len() int {
	return len(a.binds)
}

// Value returns the value bound at position i.
func (a Args[V]) Value(i int) V {
	return a.binds[i].Value
}

// Text returns the lexeme of the token bound at position i.
func (a Args[V]) Text(i int) string {
	return a.binds[i].Token.Text
}

// Token returns the token bound at position i.
func (a Args[V]) Token(i int) lexer.Token {
	return a.binds[i].Token
}

// Matched reports whether the term at position i bound anything.
func (a Args[V]) Matched(i int) bool {
	return a.binds[i].Matched
}

// BuildFunc constructs a clause result from its bindings. Returning false
// rejects the clause as if a term had failed.
type BuildFunc[V any] func(args Args[V]) (V, bool)

// Clause is one ordered alternative of a rule. A clause with no terms is
// an epsilon clause and always matches.
type Clause[V any] struct {
	Terms []Term
	Build BuildFunc[V]
}

// Seq returns a clause matching terms in order.
func Seq[V any](build BuildFunc[V], terms ...Term) Clause[V] {
	return Clause[V]{Terms: terms, Build: build}
}

// Epsilon returns a clause that matches without consuming input.
func Epsilon[V any](build func() V) Clause[V] {
	return Clause[V]{Build: func(Args[V]) (V, bool) { return build(), true }}
}

// IsEpsilon reports whether the clause has no terms.
func (c Clause[V]) IsEpsilon() bool {
	return len(c.Terms) == 0
}

// String renders the clause terms, or "ε" for an epsilon clause.
func (c Clause[V]) String() string {
	if c.IsEpsilon() {
		return "ε"
	}
	parts := make([]string, len(c.Terms))
	for i, t := range c.Terms {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}

// Rule is a named, ordered list of clauses.
type Rule[V any] struct {
	Name    string
	Clauses []Clause[V]
}

// Outcome is the result of evaluating a rule: either a value with the
// advanced stream, or NoMatch.
type Outcome[V any] struct {
	Value   V
	Rest    stream.Stream
	Matched bool
}

// NoMatch returns the non-matching outcome at s. NoMatch is ordinary
// control flow, not an error.
func NoMatch[V any](s stream.Stream) Outcome[V] {
	return Outcome[V]{Rest: s}
}
