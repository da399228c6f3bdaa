package graph

import "slices"

// Cycles returns the strongly connected components that contain a cycle:
// every component with more than one node, and single nodes with an edge
// to themselves. Found via Tarjan's algorithm. Nodes within a cycle are
// listed in insertion order, and cycles are ordered by their first node.
func (g *Graph) Cycles() [][]string {
	var (
		counter  int
		stack    []int
		onStack  = make([]bool, len(g.nodes))
		indices  = make([]int, len(g.nodes))
		lowlinks = make([]int, len(g.nodes))
		sccs     [][]int
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(n int)
	strongConnect = func(n int) {
		indices[n] = counter
		lowlinks[n] = counter
		counter++
		stack = append(stack, n)
		onStack[n] = true

		for _, dep := range g.edges[n] {
			if indices[dep] < 0 {
				strongConnect(dep)
				lowlinks[n] = min(lowlinks[n], lowlinks[dep])
			} else if onStack[dep] {
				lowlinks[n] = min(lowlinks[n], indices[dep])
			}
		}

		if lowlinks[n] != indices[n] {
			return
		}
		var scc []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == n {
				break
			}
		}
		if len(scc) > 1 || slices.Contains(g.edges[n], n) {
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for n := range g.nodes {
		if indices[n] < 0 {
			strongConnect(n)
		}
	}

	slices.SortFunc(sccs, func(a, b []int) int { return a[0] - b[0] })
	out := make([][]string, len(sccs))
	for i, scc := range sccs {
		names := make([]string, len(scc))
		for j, n := range scc {
			names[j] = g.nodes[n]
		}
		out[i] = names
	}
	return out
}

// HasCycles reports whether the graph contains any cycles.
func (g *Graph) HasCycles() bool {
	return len(g.Cycles()) > 0
}
