// Package grammar provides an ordered-clause recursive-descent rule engine.
//
// A Grammar is a set of named rules. Each rule is an ordered list of
// clauses; evaluating a rule tries its clauses in declaration order
// against an immutable token stream and commits to the first clause whose
// terms all match. A clause is all-or-nothing: when a term fails, the
// engine moves on to the next clause from the rule's starting position.
// There is no other backtracking, so grammars must be predictive: the
// leading token(s) decide the clause. Repetition is expressed with the
// head/continuation rule pair added by Builder.Repeat, never with left
// recursion.
//
// A built Grammar is read-only and may be evaluated from many goroutines
// at once. Recursion depth follows input nesting depth; very deep input
// can exhaust the goroutine stack, so callers should bound input size.
package grammar

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/golangsnmp/descent/internal/graph"
	"github.com/golangsnmp/descent/internal/stream"
	"github.com/golangsnmp/descent/internal/types"
)

// Grammar is an immutable set of rules.
type Grammar[V any] struct {
	rules map[string]*Rule[V]
	order []string
	null  map[string]bool
	refs  *graph.Graph
}

// Rules returns the rule names in declaration order.
func (g *Grammar[V]) Rules() []string {
	return slices.Clone(g.order)
}

// Rule returns a copy of the named rule.
func (g *Grammar[V]) Rule(name string) (Rule[V], bool) {
	r, ok := g.rules[name]
	if !ok {
		return Rule[V]{}, false
	}
	return Rule[V]{Name: r.Name, Clauses: slices.Clone(r.Clauses)}, true
}

// String renders the grammar one rule per line, clauses separated by "|".
func (g *Grammar[V]) String() string {
	var b strings.Builder
	width := 0
	for _, name := range g.order {
		width = max(width, len(name))
	}
	for _, name := range g.order {
		r := g.rules[name]
		fmt.Fprintf(&b, "%-*s :=", width, name)
		for i, c := range r.Clauses {
			if i > 0 {
				fmt.Fprintf(&b, "\n%*s  |", width, "")
			}
			b.WriteByte(' ')
			b.WriteString(c.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Evaluate runs the named rule at s without logging.
func (g *Grammar[V]) Evaluate(name string, s stream.Stream) Outcome[V] {
	return g.Evaluator(nil).Evaluate(name, s)
}

// Evaluator returns an Evaluator for a single parse. Pass nil for logger
// to disable logging.
func (g *Grammar[V]) Evaluator(logger *slog.Logger) *Evaluator[V] {
	return &Evaluator[V]{g: g, Logger: types.Logger{L: logger}}
}

// Evaluator evaluates rules of a Grammar and counts the work done. It
// holds per-parse state and must not be shared between goroutines.
//
// An Evaluator remembers every (rule, position) pair that failed and
// answers a repeated evaluation from that record without retrying any
// clause, so failing input costs time linear in the number of pairs.
// Use a fresh Evaluator for each token sequence.
type Evaluator[V any] struct {
	g        *Grammar[V]
	depth    int
	attempts int
	furthest int
	failed   map[failure]struct{}
	types.Logger
}

type failure struct {
	rule string
	pos  int
}

// Attempts returns how many clauses have been tried so far.
func (e *Evaluator[V]) Attempts() int {
	return e.attempts
}

// Furthest returns the highest stream position at which a token-matching
// term failed. When a parse fails, the token there is usually the one to
// blame.
func (e *Evaluator[V]) Furthest() int {
	return e.furthest
}

func (e *Evaluator[V]) fail(s, cur stream.Stream) (Outcome[V], bool) {
	e.furthest = max(e.furthest, cur.Pos())
	return NoMatch[V](s), false
}

// Evaluate tries the clauses of the named rule in order and returns the
// outcome of the first one that matches completely. An unknown rule name
// never matches.
func (e *Evaluator[V]) Evaluate(name string, s stream.Stream) Outcome[V] {
	rule, ok := e.g.rules[name]
	if !ok {
		e.Log(slog.LevelDebug, "unknown rule", slog.String("rule", name))
		return NoMatch[V](s)
	}

	key := failure{rule: name, pos: s.Pos()}
	if _, seen := e.failed[key]; seen {
		if e.TraceEnabled() {
			e.Trace("known failure", slog.String("rule", name), slog.Int("pos", key.pos))
		}
		return NoMatch[V](s)
	}

	e.depth++
	defer func() { e.depth-- }()

	for i, c := range rule.Clauses {
		e.attempts++
		out, ok := e.tryClause(c, s)
		if e.TraceEnabled() {
			e.Trace("clause",
				slog.String("rule", name),
				slog.Int("clause", i),
				slog.Int("depth", e.depth),
				slog.Int("pos", s.Pos()),
				slog.Bool("matched", ok))
		}
		if ok {
			return out
		}
	}
	if e.failed == nil {
		e.failed = make(map[failure]struct{})
	}
	e.failed[key] = struct{}{}
	return NoMatch[V](s)
}

// tryClause matches the clause terms left to right, threading the cursor
// through each term.
func (e *Evaluator[V]) tryClause(c Clause[V], s stream.Stream) (Outcome[V], bool) {
	cur := s
	binds := make([]Binding[V], 0, len(c.Terms))

	for _, t := range c.Terms {
		switch t.kind {
		case termLit:
			tok, _ := cur.Peek()
			next, ok := cur.Literal(t.text)
			if !ok {
				return e.fail(s, cur)
			}
			binds = append(binds, Binding[V]{Token: tok, Matched: true})
			cur = next

		case termRef:
			out := e.Evaluate(t.text, cur)
			if !out.Matched {
				return NoMatch[V](s), false
			}
			binds = append(binds, Binding[V]{Value: out.Value, Matched: true})
			cur = out.Rest

		case termStar:
			out := e.Evaluate(t.text, cur)
			if !out.Matched {
				binds = append(binds, Binding[V]{})
				continue
			}
			binds = append(binds, Binding[V]{Value: out.Value, Matched: true})
			cur = out.Rest

		case termAny:
			tok, ok := cur.Peek()
			if !ok {
				return e.fail(s, cur)
			}
			binds = append(binds, Binding[V]{Token: tok, Matched: true})
			cur = cur.Advance(1)

		case termMatch:
			tok, ok := cur.Peek()
			if !ok || tok.Kind != t.tokKind || !t.pattern.MatchString(tok.Text) {
				return e.fail(s, cur)
			}
			binds = append(binds, Binding[V]{Token: tok, Matched: true})
			cur = cur.Advance(1)
		}
	}

	v, ok := c.Build(Args[V]{binds: binds})
	if !ok {
		return NoMatch[V](s), false
	}
	return Outcome[V]{Value: v, Rest: cur, Matched: true}, true
}
