package grammar

import (
	"slices"

	"github.com/golangsnmp/descent/internal/graph"
)

// nullable returns the rules that can match without consuming a token.
// Star terms are always nullable; a Ref is nullable when its rule is.
func nullable[V any](rules map[string]*Rule[V], order []string) map[string]bool {
	out := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, name := range order {
			if out[name] {
				continue
			}
			for _, c := range rules[name].Clauses {
				if clauseNullable(c, out) {
					out[name] = true
					changed = true
					break
				}
			}
		}
	}
	return out
}

func clauseNullable[V any](c Clause[V], null map[string]bool) bool {
	for _, t := range c.Terms {
		if !termNullable(t, null) {
			return false
		}
	}
	return true
}

func termNullable(t Term, null map[string]bool) bool {
	switch t.kind {
	case termStar:
		return true
	case termRef:
		return null[t.text]
	}
	return false
}

// leftCorners builds the graph of rules each rule may evaluate before
// consuming a token. A cycle in it is left recursion.
func leftCorners[V any](rules map[string]*Rule[V], order []string, null map[string]bool) *graph.Graph {
	g := graph.New(len(order))
	for _, name := range order {
		g.AddNode(name)
		for _, c := range rules[name].Clauses {
			for _, t := range c.Terms {
				if ref := t.RuleName(); ref != "" {
					if _, ok := rules[ref]; ok {
						g.AddEdge(name, ref)
					}
				}
				if !termNullable(t, null) {
					break
				}
			}
		}
	}
	return g
}

// references builds the graph of every rule reference.
func references[V any](rules map[string]*Rule[V], order []string) *graph.Graph {
	g := graph.New(len(order))
	for _, name := range order {
		g.AddNode(name)
		for _, c := range rules[name].Clauses {
			for _, t := range c.Terms {
				if ref := t.RuleName(); ref != "" {
					g.AddEdge(name, ref)
				}
			}
		}
	}
	return g
}

// Nullable reports whether the named rule can match without consuming
// any token.
func (g *Grammar[V]) Nullable(name string) bool {
	return g.null[name]
}

// Unreachable returns the rules that cannot be evaluated starting from
// root, in declaration order.
func (g *Grammar[V]) Unreachable(root string) []string {
	reach := g.refs.Reachable(root)
	var out []string
	for _, name := range g.order {
		if !slices.Contains(reach, name) {
			out = append(out, name)
		}
	}
	return out
}
