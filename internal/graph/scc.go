package graph

// NodePredicate reports whether a node is part of the induced subgraph.
type NodePredicate func(node int) bool

// EdgePredicate reports whether an edge is part of the induced subgraph.
type EdgePredicate func(from, to int) bool

// FilteredSCC computes the strongly-connected components of the subgraph
// of g induced by nodes and edges, via Kosaraju's algorithm (two DFS
// passes: postorder on the forward graph, then component discovery on the
// reverse graph in decreasing postorder). The loop analyzer uses the
// filters to isolate a loop body while ignoring edges that leave it or
// back-edges it doesn't want considered (see the original editor/
// analyzer/control_flow/scc_new.rs).
func FilteredSCC(g *Graph, nodes NodePredicate, edges EdgePredicate) [][]int {
	included := make(map[int]bool)
	for _, n := range g.Nodes() {
		if nodes(n) {
			included[n] = true
		}
	}

	visited := make(map[int]bool, len(included))
	var order []int
	var visit func(int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range g.succ[n] {
			if included[s] && edges(n, s) {
				visit(s)
			}
		}
		order = append(order, n)
	}
	for n := range included {
		visit(n)
	}

	assigned := make(map[int]bool, len(included))
	var components [][]int
	var collect func(int, *[]int)
	collect = func(n int, component *[]int) {
		if assigned[n] {
			return
		}
		assigned[n] = true
		*component = append(*component, n)
		for _, p := range g.pred[n] {
			if included[p] && edges(p, n) {
				collect(p, component)
			}
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if assigned[n] {
			continue
		}
		var component []int
		collect(n, &component)
		components = append(components, component)
	}
	return components
}
