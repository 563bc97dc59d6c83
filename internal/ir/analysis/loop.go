package analysis

import (
	"sort"

	"come/internal/graph"
)

// BlockGraph extracts the plain block-to-block graph from a
// ControlFlowGraph — real blocks only, no synthetic entry/exit nodes —
// for use by the loop/SCC analyzer, which reasons purely over blocks.
func (c *ControlFlowGraph) BlockGraph() *graph.Graph {
	n := len(c.fn.Content)
	g := graph.New(n)
	for i := 0; i < n; i++ {
		for _, to := range c.ToBlocks(i) {
			g.AddEdge(i, to)
		}
	}
	return g
}

// SCC is a (possibly singleton) strongly-connected set of blocks bound to
// the block graph it was extracted from, grounded on the original editor/
// analyzer/control_flow/scc_new.rs BindedScc. TopLevel marks the
// whole-function component, whose single entry is definitionally the
// function's entry block rather than whatever the edge scan would infer.
type SCC struct {
	g        *graph.Graph
	Nodes    []int
	TopLevel bool
}

// NewSCC binds a node set to g.
func NewSCC(g *graph.Graph, nodes []int, topLevel bool) *SCC {
	sorted := append([]int(nil), nodes...)
	sort.Ints(sorted)
	return &SCC{g: g, Nodes: sorted, TopLevel: topLevel}
}

func (s *SCC) contains(n int) bool {
	for _, v := range s.Nodes {
		if v == n {
			return true
		}
	}
	return false
}

// Edges returns every edge of g with both endpoints inside the SCC.
func (s *SCC) Edges() [][2]int {
	var out [][2]int
	for _, n := range s.Nodes {
		for _, succ := range s.g.Successors(n) {
			if s.contains(succ) {
				out = append(out, [2]int{n, succ})
			}
		}
	}
	return out
}

// EntryEdges returns every edge entering the SCC from outside it.
func (s *SCC) EntryEdges() [][2]int {
	var out [][2]int
	for _, n := range s.Nodes {
		for _, pred := range s.g.Predecessors(n) {
			if !s.contains(pred) {
				out = append(out, [2]int{pred, n})
			}
		}
	}
	return out
}

// EntryNodes returns the SCC's entry set: for the top-level component or a
// singleton, just its one node; otherwise the sorted, deduplicated targets
// of its entry edges.
func (s *SCC) EntryNodes() []int {
	if s.TopLevel || len(s.Nodes) == 1 {
		return []int{s.Nodes[0]}
	}
	seen := make(map[int]bool)
	var out []int
	for _, e := range s.EntryEdges() {
		if !seen[e[1]] {
			seen[e[1]] = true
			out = append(out, e[1])
		}
	}
	sort.Ints(out)
	return out
}

// Reducible reports whether the SCC has exactly one entry node.
func (s *SCC) Reducible() bool {
	return len(s.EntryNodes()) == 1
}

// TopLevelSCCs decomposes a reducible SCC into its top-level child SCCs:
// the back-edges into the single entry node are removed, and filtered SCC
// is run on the remainder. Returns ok=false if the SCC is irreducible.
func (s *SCC) TopLevelSCCs() ([]*SCC, bool) {
	entries := s.EntryNodes()
	if len(entries) != 1 {
		return nil, false
	}
	entry := entries[0]

	backedges := make(map[[2]int]bool)
	for _, pred := range s.g.Predecessors(entry) {
		if s.contains(pred) {
			backedges[[2]int{pred, entry}] = true
		}
	}

	nodePred := func(n int) bool { return s.contains(n) }
	edgePred := func(from, to int) bool { return !backedges[[2]int{from, to}] }
	components := graph.FilteredSCC(s.g, nodePred, edgePred)

	result := make([]*SCC, len(components))
	for i, comp := range components {
		result[i] = NewSCC(s.g, comp, false)
	}
	return result, true
}

// FirstIrreducibleSubSCC returns the smallest irreducible SCC nested
// inside s, depth-first, or nil if s and every nested component is
// reducible (spec.md §4.4: "the analyzer surfaces the smallest
// irreducible SCC").
func (s *SCC) FirstIrreducibleSubSCC() *SCC {
	if len(s.Nodes) == 1 {
		return nil
	}
	if !s.Reducible() {
		return s
	}
	children, ok := s.TopLevelSCCs()
	if !ok {
		return s
	}
	for _, child := range children {
		if found := child.FirstIrreducibleSubSCC(); found != nil {
			return found
		}
	}
	return nil
}

// LoopContent is one element of a Loop's content forest: either a single
// block or a nested sub-loop.
type LoopContent struct {
	Node    int
	SubLoop *Loop
}

// Loop is the recursive block/sub-loop decomposition of a reducible
// subgraph, grounded on the original editor/analyzer/control_flow/
// control_flow_loop.rs Loop.
type Loop struct {
	Entries []int
	Content []LoopContent
}

// BuildLoop decomposes nodes (a reducible subgraph of g) into a Loop tree.
// backedges marks edges to exclude when computing the SCCs within nodes
// (the edges targeting nodes' own entries, so they don't get merged into
// one giant component).
func BuildLoop(g *graph.Graph, nodes []int, backedges map[[2]int]bool) *Loop {
	nodeSet := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		nodeSet[n] = true
	}

	var entries []int
	for _, n := range nodes {
		for _, pred := range g.Predecessors(n) {
			if !nodeSet[pred] {
				entries = append(entries, n)
				break
			}
		}
	}
	sort.Ints(entries)

	nodePred := func(n int) bool { return nodeSet[n] }
	edgePred := func(from, to int) bool { return !backedges[[2]int{from, to}] }
	sccs := graph.FilteredSCC(g, nodePred, edgePred)

	newBackedges := make(map[[2]int]bool)
	for _, entry := range entries {
		for _, pred := range g.Predecessors(entry) {
			if nodeSet[pred] {
				newBackedges[[2]int{pred, entry}] = true
			}
		}
	}

	content := make([]LoopContent, len(sccs))
	for i, scc := range sccs {
		if len(scc) == 1 {
			content[i] = LoopContent{Node: scc[0]}
		} else {
			content[i] = LoopContent{SubLoop: BuildLoop(g, scc, newBackedges)}
		}
	}

	return &Loop{Entries: entries, Content: content}
}
