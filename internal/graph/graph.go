// Package graph implements the dense-integer-node directed-graph analyses
// shared by the IR's control-flow, loop, and structural analyzers: Cooper/
// Harvey/Kennedy dominators, dominance frontiers, filtered Kosaraju SCC,
// and a filtered subgraph view. Grounded on the original compiler's
// utility/graph.rs and utility/graph/subgraph.rs, which built the same
// analyses on petgraph; here every analysis operates on plain node ids
// (ints) so any caller — CFG analyzer, loop analyzer, structural folder —
// can assign its own dense numbering (block index, SCC id, ...) without
// wrapping petgraph's graph types.
package graph

// Graph is a directed graph over the dense node-id space [0, NodeCount).
type Graph struct {
	NodeCount int
	succ      [][]int
	pred      [][]int
}

// New creates an edge-less graph with nodeCount nodes.
func New(nodeCount int) *Graph {
	return &Graph{
		NodeCount: nodeCount,
		succ:      make([][]int, nodeCount),
		pred:      make([][]int, nodeCount),
	}
}

// AddEdge adds a directed edge from -> to. Multi-edges are kept distinct
// only in the sense that they appear once in each adjacency slice; callers
// that care about edge identity (rather than node connectivity) should
// track it themselves.
func (g *Graph) AddEdge(from, to int) {
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
}

// Successors returns n's out-neighbours in insertion order.
func (g *Graph) Successors(n int) []int { return g.succ[n] }

// Predecessors returns n's in-neighbours in insertion order.
func (g *Graph) Predecessors(n int) []int { return g.pred[n] }

// Nodes returns every node id in the graph.
func (g *Graph) Nodes() []int {
	nodes := make([]int, g.NodeCount)
	for i := range nodes {
		nodes[i] = i
	}
	return nodes
}

// ReversePostorder computes a DFS reverse postorder of the nodes reachable
// from entry — the iteration order the dominator algorithm converges
// fastest in.
func (g *Graph) ReversePostorder(entry int) []int {
	visited := make([]bool, g.NodeCount)
	var post []int
	var visit func(int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range g.succ[n] {
			visit(s)
		}
		post = append(post, n)
	}
	visit(entry)
	reversed := make([]int, len(post))
	for i, n := range post {
		reversed[len(post)-1-i] = n
	}
	return reversed
}
