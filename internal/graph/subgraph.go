package graph

// SubGraph is a filtered view over a parent Graph: a node allow-list and an
// edge allow-list, delegating neighbourhood queries through both filters.
// Grounded on the original utility/graph/subgraph.rs CFSubGraph, which
// built the same filtered view over petgraph via NodeFiltered/EdgeFiltered;
// here it's a plain value over the dense-int Graph above.
type SubGraph struct {
	Parent *Graph
	nodes  map[int]bool
	edges  map[[2]int]bool
}

// NewSubGraph builds a view of parent restricted to nodes and edges.
func NewSubGraph(parent *Graph, nodes []int, edges [][2]int) *SubGraph {
	nodeSet := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = true
	}
	edgeSet := make(map[[2]int]bool, len(edges))
	for _, e := range edges {
		edgeSet[e] = true
	}
	return &SubGraph{Parent: parent, nodes: nodeSet, edges: edgeSet}
}

// HasNode reports whether n is in the view.
func (s *SubGraph) HasNode(n int) bool { return s.nodes[n] }

// HasEdge reports whether from->to is in the view (and is an edge of the
// parent graph).
func (s *SubGraph) HasEdge(from, to int) bool {
	if !s.edges[[2]int{from, to}] {
		return false
	}
	for _, succ := range s.Parent.succ[from] {
		if succ == to {
			return true
		}
	}
	return false
}

// Nodes returns the view's node set, unordered.
func (s *SubGraph) Nodes() []int {
	out := make([]int, 0, len(s.nodes))
	for n := range s.nodes {
		out = append(out, n)
	}
	return out
}

// Successors returns n's out-neighbours within the view.
func (s *SubGraph) Successors(n int) []int {
	if !s.nodes[n] {
		return nil
	}
	var out []int
	for _, succ := range s.Parent.succ[n] {
		if s.nodes[succ] && s.edges[[2]int{n, succ}] {
			out = append(out, succ)
		}
	}
	return out
}

// Predecessors returns n's in-neighbours within the view.
func (s *SubGraph) Predecessors(n int) []int {
	if !s.nodes[n] {
		return nil
	}
	var out []int
	for _, pred := range s.Parent.pred[n] {
		if s.nodes[pred] && s.edges[[2]int{pred, n}] {
			out = append(out, pred)
		}
	}
	return out
}

// NodePredicate returns a predicate testing membership in the view's node
// set, for passing to FilteredSCC.
func (s *SubGraph) NodePredicate() NodePredicate {
	return func(n int) bool { return s.nodes[n] }
}

// EdgePredicate returns a predicate testing membership in the view's edge
// set, for passing to FilteredSCC.
func (s *SubGraph) EdgePredicate() EdgePredicate {
	return func(from, to int) bool { return s.edges[[2]int{from, to}] }
}
