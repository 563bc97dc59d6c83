// Package analysis implements the read-only analyzers layered over a
// *ir.FunctionDefinition: the control-flow graph, the loop/SCC structure,
// and memory-usage indexing that optimization passes consult to decide
// what edits to make. Analyzers borrow the function immutably and cache
// their results behind lazy initialisation (spec.md §5); an edit to the
// function invalidates the analyzer and a fresh one must be built.
package analysis

import (
	"come/internal/graph"
	"come/internal/ir"

	"github.com/sasha-s/go-deadlock"
)

// ControlFlowGraph is built from a function definition by scanning
// terminators, with a synthetic entry node targeting the first block and a
// synthetic exit node collecting every Ret. Grounded on the original
// ir/analyzer/control_flow.rs and ir/optimize/analyzer/control_flow.rs,
// which built the same graph (plus dominators/frontiers) over petgraph
// with a BiMap name↔index; here the bookkeeping is plain slices/maps over
// internal/graph's dense-int Graph.
type ControlFlowGraph struct {
	fn          *ir.FunctionDefinition
	g           *graph.Graph
	dom         *graph.Dominators
	frontiers   map[int][]int
	nameToIndex map[string]int
	startNode   int
	endNode     int

	passedMu    deadlock.Mutex
	passedCache map[[2]int][]int
}

// blockNode returns the graph node id for block index i: 0 is the
// synthetic entry, i+1 is block i, and NodeCount-1 is the synthetic exit.
func blockNode(i int) int { return i + 1 }

// New builds the control-flow graph of fn. fn's blocks must all be named
// and its terminators must reference existing labels — both invariants the
// generator guarantees.
func New(fn *ir.FunctionDefinition) *ControlFlowGraph {
	n := len(fn.Content)
	g := graph.New(n + 2)
	start := 0
	end := n + 1

	nameToIndex := make(map[string]int, n)
	for i, b := range fn.Content {
		nameToIndex[b.Name] = i
	}

	if n > 0 {
		g.AddEdge(start, blockNode(0))
	}
	for i, b := range fn.Content {
		from := blockNode(i)
		switch term := b.Terminator.(type) {
		case *ir.Branch:
			g.AddEdge(from, blockNode(nameToIndex[term.SuccessLabel]))
			g.AddEdge(from, blockNode(nameToIndex[term.FailureLabel]))
		case *ir.Jump:
			g.AddEdge(from, blockNode(nameToIndex[term.Label]))
		case *ir.Ret:
			g.AddEdge(from, end)
		}
	}

	dom := graph.Compute(g, start)
	frontiers := graph.Frontiers(g, dom)

	return &ControlFlowGraph{
		fn:          fn,
		g:           g,
		dom:         dom,
		frontiers:   frontiers,
		nameToIndex: nameToIndex,
		startNode:   start,
		endNode:     end,
		passedCache: make(map[[2]int][]int),
	}
}

// realBlocks filters a list of graph nodes down to real block indices,
// dropping the synthetic entry/exit nodes.
func (c *ControlFlowGraph) realBlocks(nodes []int) []int {
	var out []int
	for _, n := range nodes {
		if n == c.startNode || n == c.endNode {
			continue
		}
		out = append(out, n-1)
	}
	return out
}

// FromBlocks returns the predecessors of block i.
func (c *ControlFlowGraph) FromBlocks(i int) []int {
	return c.realBlocks(c.g.Predecessors(blockNode(i)))
}

// ToBlocks returns the successors of block i.
func (c *ControlFlowGraph) ToBlocks(i int) []int {
	return c.realBlocks(c.g.Successors(blockNode(i)))
}

// DominanceFrontier returns the dominance frontier of block i, computed
// once at construction and cached thereafter.
func (c *ControlFlowGraph) DominanceFrontier(i int) []int {
	return c.realBlocks(c.frontiers[blockNode(i)])
}

// Dominates reports whether block i dominates block j.
func (c *ControlFlowGraph) Dominates(i, j int) bool {
	return c.dom.Dominates(blockNode(i), blockNode(j))
}

// ImmediateDominator returns the immediate dominator of block i, or
// ok=false if i is the entry block or unreachable.
func (c *ControlFlowGraph) ImmediateDominator(i int) (int, bool) {
	node, ok := c.dom.ImmediateDominator(blockNode(i))
	if !ok || node == c.startNode {
		return 0, false
	}
	return node - 1, true
}

// FrontiersMap returns the dominance frontier of every real block, keyed
// by block index — the form internal/graph.IteratedFrontier consumes, for
// callers (memory-to-register promotion) that need the iterated frontier
// of a set of blocks rather than one block at a time.
func (c *ControlFlowGraph) FrontiersMap() map[int][]int {
	out := make(map[int][]int, len(c.fn.Content))
	for i := range c.fn.Content {
		out[i] = c.DominanceFrontier(i)
	}
	return out
}

// BasicBlockIndexByName returns the index of the block named name.
func (c *ControlFlowGraph) BasicBlockIndexByName(name string) int {
	return c.nameToIndex[name]
}

// BasicBlockNameByIndex returns the name of block i.
func (c *ControlFlowGraph) BasicBlockNameByIndex(i int) string {
	return c.fn.Content[i].Name
}

// PassedBlocks returns the union of blocks lying on some simple path from
// block `from` to block `to`, memoised per (from, to) pair. A block n lies
// on some simple path from `from` to `to` iff `from` can reach n and n can
// reach `to`: any such pair of reachability witnesses splices (after
// removing repeats) into a simple path through n, so the reachability
// intersection is exactly the all-simple-paths union the original
// algo::all_simple_paths-based passed_block computed.
func (c *ControlFlowGraph) PassedBlocks(from, to int) []int {
	key := [2]int{from, to}
	c.passedMu.Lock()
	defer c.passedMu.Unlock()
	if cached, ok := c.passedCache[key]; ok {
		return cached
	}

	forward := c.reachableFrom(blockNode(from))
	backward := c.reachesTo(blockNode(to))

	var result []int
	for n := range forward {
		if backward[n] {
			result = append(result, n)
		}
	}
	result = c.realBlocks(result)
	c.passedCache[key] = result
	return result
}

func (c *ControlFlowGraph) reachableFrom(start int) map[int]bool {
	visited := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, s := range c.g.Successors(n) {
			if !visited[s] {
				visited[s] = true
				stack = append(stack, s)
			}
		}
	}
	return visited
}

func (c *ControlFlowGraph) reachesTo(target int) map[int]bool {
	visited := map[int]bool{target: true}
	stack := []int{target}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range c.g.Predecessors(n) {
			if !visited[p] {
				visited[p] = true
				stack = append(stack, p)
			}
		}
	}
	return visited
}
