package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidGrammar is wrapped by every error returned from Builder.Build.
var ErrInvalidGrammar = errors.New("invalid grammar")

// TailSuffix is appended to a Repeat head rule name to form the name of
// its generated continuation rule.
const TailSuffix = "-tail"

// Builder accumulates rules in declaration order.
type Builder[V any] struct {
	rules []Rule[V]
}

// NewBuilder returns an empty Builder.
func NewBuilder[V any]() *Builder[V] {
	return &Builder[V]{}
}

// Rule adds a rule with the given clauses, tried in the order given.
func (b *Builder[V]) Rule(name string, clauses ...Clause[V]) *Builder[V] {
	b.rules = append(b.rules, Rule[V]{Name: name, Clauses: clauses})
	return b
}

// ListOps tells Repeat how to build list values.
type ListOps[V any] struct {
	Empty func() V             // zero repetitions
	One   func(item V) V       // a single item with no continuation
	Cons  func(item, rest V) V // item followed by the rest of the list
}

// Repeat adds the pair of rules expressing zero or more occurrences of
// item separated by the literal sep (no separator if sep is ""):
//
//	name        := <item> <name-tail> | <item> | ε
//	name-tail   := sep <item> <name-tail> | ε
//
// The continuation rule is a top-level rule named name+TailSuffix.
func (b *Builder[V]) Repeat(name, item, sep string, ops ListOps[V]) *Builder[V] {
	tail := name + TailSuffix

	b.Rule(name,
		Seq(func(a Args[V]) (V, bool) {
			return ops.Cons(a.Value(0), a.Value(1)), true
		}, Ref(item), Ref(tail)),
		Seq(func(a Args[V]) (V, bool) {
			return ops.One(a.Value(0)), true
		}, Ref(item)),
		Epsilon(ops.Empty),
	)

	if sep == "" {
		b.Rule(tail,
			Seq(func(a Args[V]) (V, bool) {
				return ops.Cons(a.Value(0), a.Value(1)), true
			}, Ref(item), Ref(tail)),
			Epsilon(ops.Empty),
		)
		return b
	}

	b.Rule(tail,
		Seq(func(a Args[V]) (V, bool) {
			return ops.Cons(a.Value(1), a.Value(2)), true
		}, Lit(sep), Ref(item), Ref(tail)),
		Epsilon(ops.Empty),
	)
	return b
}

// Build validates the rules and returns an immutable Grammar. Besides
// structural checks it rejects left recursion, direct or through other
// rules, including recursion reached after only nullable terms. All
// problems are reported together.
func (b *Builder[V]) Build() (*Grammar[V], error) {
	g := &Grammar[V]{rules: make(map[string]*Rule[V], len(b.rules))}
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidGrammar}, args...)...))
	}

	for i := range b.rules {
		r := &b.rules[i]
		if r.Name == "" {
			fail("rule %d has no name", i)
			continue
		}
		if _, dup := g.rules[r.Name]; dup {
			fail("rule %q defined twice", r.Name)
			continue
		}
		g.rules[r.Name] = r
		g.order = append(g.order, r.Name)
	}

	for _, name := range g.order {
		r := g.rules[name]
		if len(r.Clauses) == 0 {
			fail("rule %q has no clauses", name)
		}
		for ci, c := range r.Clauses {
			if c.Build == nil {
				fail("rule %q clause %d has no build function", name, ci)
			}
			if c.IsEpsilon() && ci != len(r.Clauses)-1 {
				fail("rule %q clause %d: epsilon clause must be last", name, ci)
			}
			for ti, t := range c.Terms {
				ref := t.RuleName()
				if ref == "" {
					if t.kind == termLit && t.text == "" {
						fail("rule %q clause %d term %d: empty literal", name, ci, ti)
					}
					continue
				}
				if _, ok := g.rules[ref]; !ok {
					fail("rule %q clause %d references undefined rule %q", name, ci, ref)
				}
			}
		}
	}

	g.null = nullable(g.rules, g.order)
	for _, cycle := range leftCorners(g.rules, g.order, g.null).Cycles() {
		if len(cycle) == 1 {
			fail("rule %q is left-recursive", cycle[0])
			continue
		}
		fail("rules %s are left-recursive", strings.Join(cycle, ", "))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	g.refs = references(g.rules, g.order)
	return g, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder[V]) MustBuild() *Grammar[V] {
	g, err := b.Build()
	if err != nil {
		panic(err)
	}
	return g
}
