// Package graph provides a directed graph over rule names with cycle and
// reachability analysis.
package graph

import "slices"

// Graph is a directed graph with string nodes. Nodes and edges keep the
// order in which they were first added, so every traversal is
// deterministic.
type Graph struct {
	index map[string]int
	nodes []string
	edges [][]int
}

// New returns a graph with no nodes or edges. sizeHint preallocates room
// for that many nodes.
func New(sizeHint int) *Graph {
	return &Graph{
		index: make(map[string]int, sizeHint),
		nodes: make([]string, 0, sizeHint),
		edges: make([][]int, 0, sizeHint),
	}
}

// AddNode registers a node. Duplicate calls are no-ops.
func (g *Graph) AddNode(name string) {
	g.id(name)
}

func (g *Graph) id(name string) int {
	if i, ok := g.index[name]; ok {
		return i
	}
	i := len(g.nodes)
	g.index[name] = i
	g.nodes = append(g.nodes, name)
	g.edges = append(g.edges, nil)
	return i
}

// AddEdge records an edge from "from" to "to". Missing nodes are created
// implicitly. Duplicate edges are ignored.
func (g *Graph) AddEdge(from, to string) {
	f, t := g.id(from), g.id(to)
	if slices.Contains(g.edges[f], t) {
		return
	}
	g.edges[f] = append(g.edges[f], t)
}

// Edges returns the targets of the edges leaving name, in insertion order.
func (g *Graph) Edges(name string) []string {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	out := make([]string, len(g.edges[i]))
	for j, t := range g.edges[i] {
		out[j] = g.nodes[t]
	}
	return out
}

// HasNode reports whether the node exists in the graph.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Nodes returns every node in insertion order.
func (g *Graph) Nodes() []string {
	return slices.Clone(g.nodes)
}

// Reachable returns the nodes reachable from the given roots, roots
// included, in insertion order. Unknown roots are ignored.
func (g *Graph) Reachable(roots ...string) []string {
	seen := make([]bool, len(g.nodes))
	var stack []int
	for _, r := range roots {
		if i, ok := g.index[r]; ok && !seen[i] {
			seen[i] = true
			stack = append(stack, i)
		}
	}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, t := range g.edges[n] {
			if !seen[t] {
				seen[t] = true
				stack = append(stack, t)
			}
		}
	}

	var out []string
	for i, ok := range seen {
		if ok {
			out = append(out, g.nodes[i])
		}
	}
	return out
}
