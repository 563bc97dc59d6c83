// Package structural folds a reducible control-flow graph into a tree of
// structured regions — Block/IfThenElse/Loop/Seq — the shape a structured
// target (the WASM backend this package feeds, out of scope here) consumes
// instead of arbitrary branches and labels. Grounded on spec.md §4.9; the
// pack carries no direct reference implementation (control-flow-graph-wasm
// in original_source only exposes dominators to JS, it doesn't fold), so
// the folding algorithm itself is the classic dominator-driven structuring
// technique for reducible graphs, built on this repository's own
// internal/ir/analysis rather than invented from nothing.
package structural

import (
	"fmt"
	"sort"

	"come/internal/comperr"
	"come/internal/graph"
	"come/internal/ir"
	"come/internal/ir/analysis"
)

// Region is the sum type of the structured tree: Block, Seq, IfThenElse, Loop.
type Region interface {
	isRegion()
}

// Block is a single basic block's phis and body statements, with no
// embedded control flow of its own.
type Block struct {
	Name       string
	Statements []ir.Statement
}

func (*Block) isRegion() {}

// Seq sequences First then Second.
type Seq struct {
	First  Region
	Second Region
}

func (*Seq) isRegion() {}

// IfThenElse structures a Branch: Then and Else are folded independently and
// both rejoin at the same merge point, handled by the caller's Seq.
type IfThenElse struct {
	Cond *ir.Branch
	Then Region
	Else Region
}

func (*IfThenElse) isRegion() {}

// Loop wraps a natural loop's body, which repeats until an inner IfThenElse
// branches to a node outside the loop.
type Loop struct {
	Body Region
}

func (*Loop) isRegion() {}

// Fold structures fn's control-flow graph, starting at its entry block. It
// returns an error tagged comperr.KindIrreducible, naming the offending
// blocks, if any sub-SCC of the graph has more than one entry.
func Fold(fn *ir.FunctionDefinition) (Region, error) {
	if len(fn.Content) == 0 {
		return &Block{}, nil
	}

	cfg := analysis.New(fn)
	g := cfg.BlockGraph()

	allNodes := make([]int, len(fn.Content))
	for i := range allNodes {
		allNodes[i] = i
	}
	top := analysis.NewSCC(g, allNodes, true)
	if bad := top.FirstIrreducibleSubSCC(); bad != nil {
		names := make([]string, len(bad.Nodes))
		for i, n := range bad.Nodes {
			names[i] = cfg.BasicBlockNameByIndex(n)
		}
		return nil, comperr.New(comperr.KindIrreducible, comperr.ErrorIrreducibleCFG,
			fmt.Sprintf("cannot fold irreducible control flow in blocks %v", names))
	}

	f := &folder{fn: fn, cfg: cfg, g: g}
	region, _, err := f.fold(0, map[int]bool{})
	return region, err
}

type folder struct {
	fn  *ir.FunctionDefinition
	cfg *analysis.ControlFlowGraph
	g   *graph.Graph
}

func blockStatements(b *ir.BasicBlock) []ir.Statement {
	out := make([]ir.Statement, 0, len(b.Phis)+len(b.Content))
	for _, phi := range b.Phis {
		out = append(out, phi)
	}
	out = append(out, b.Content...)
	return out
}

// fold structures the region starting at node, stopping without descending
// once it reaches a node in stop, and returns that stopping node as the
// continuation (-1 if the region ended at a Ret with nothing further).
func (f *folder) fold(node int, stop map[int]bool) (Region, int, error) {
	if node < 0 || stop[node] {
		return nil, node, nil
	}
	if f.isLoopHeader(node) {
		return f.foldLoop(node, stop)
	}
	return f.foldBlockBody(node, stop)
}

// foldBlockBody structures node's own block and whatever follows it,
// without first checking whether node is a stop point or a loop header —
// callers that have already made that decision (fold, and foldLoop
// re-entering a header it just identified) use this directly.
func (f *folder) foldBlockBody(node int, stop map[int]bool) (Region, int, error) {
	block := f.fn.Content[node]
	head := &Block{Name: block.Name, Statements: blockStatements(block)}

	switch term := block.Terminator.(type) {
	case *ir.Branch:
		return f.foldIf(node, head, term, stop)
	case *ir.Jump:
		next := f.cfg.BasicBlockIndexByName(term.Label)
		rest, cont, err := f.fold(next, stop)
		if err != nil {
			return nil, 0, err
		}
		return seq(head, rest), cont, nil
	default: // Ret or no terminator
		return head, -1, nil
	}
}

// isLoopHeader reports whether node dominates one of its own predecessors —
// i.e. some edge into node is a back-edge, making node a natural loop
// header.
func (f *folder) isLoopHeader(node int) bool {
	for _, pred := range f.g.Predecessors(node) {
		if f.cfg.Dominates(node, pred) {
			return true
		}
	}
	return false
}

// foldLoop structures the natural loop headed by node: its body is every
// node node dominates that can reach back to node. The loop's exit is the
// lowest-indexed successor, of any body block, that lies outside the body —
// a documented simplification for loops with more than one distinct exit
// target, which this folder merges onto the first one found in block order.
func (f *folder) foldLoop(node int, stop map[int]bool) (Region, int, error) {
	body := map[int]bool{node: true}
	for _, n := range f.allReachableDominated(node) {
		body[n] = true
	}

	var exits []int
	for n := range body {
		for _, succ := range f.g.Successors(n) {
			if !body[succ] {
				exits = append(exits, succ)
			}
		}
	}
	sort.Ints(exits)

	// bodyStop includes node itself: any back-edge inside the body that
	// jumps to the header is the implicit "repeat" every Loop already
	// models, so folding must stop there rather than re-entering node
	// and re-detecting it as a loop header.
	bodyStop := make(map[int]bool, len(stop)+1)
	for n := range stop {
		bodyStop[n] = true
	}
	bodyStop[node] = true
	for n := range body {
		for _, succ := range f.g.Successors(n) {
			if !body[succ] {
				bodyStop[succ] = true
			}
		}
	}

	bodyRegion, _, err := f.foldBlockBody(node, bodyStop)
	if err != nil {
		return nil, 0, err
	}
	loop := &Loop{Body: bodyRegion}

	if len(exits) == 0 {
		return loop, -1, nil
	}
	return f.foldContinuation(loop, exits[0], stop)
}

// allReachableDominated returns every node (other than header itself) that
// header dominates and that can reach header — the loop body.
func (f *folder) allReachableDominated(header int) []int {
	var out []int
	visited := map[int]bool{header: true}
	var visit func(int)
	visit = func(n int) {
		for _, pred := range f.g.Predecessors(n) {
			if visited[pred] {
				continue
			}
			if !f.cfg.Dominates(header, pred) {
				continue
			}
			visited[pred] = true
			out = append(out, pred)
			visit(pred)
		}
	}
	visit(header)
	return out
}

// foldIf structures node's Branch into an IfThenElse, rejoining at the
// nearest node node immediately dominates with more than one incoming edge
// (the diamond merge point the generator's if/else lowering always
// produces). A branch with no such merge point (both arms return, or one
// arm falls straight into the other) folds to an IfThenElse with no
// continuation.
func (f *folder) foldIf(node int, head *Block, term *ir.Branch, stop map[int]bool) (Region, int, error) {
	merge := f.findMerge(node)

	armStop := make(map[int]bool, len(stop)+1)
	for n := range stop {
		armStop[n] = true
	}
	if merge >= 0 {
		armStop[merge] = true
	}

	thenNode := f.cfg.BasicBlockIndexByName(term.SuccessLabel)
	elseNode := f.cfg.BasicBlockIndexByName(term.FailureLabel)

	thenRegion, _, err := f.fold(thenNode, armStop)
	if err != nil {
		return nil, 0, err
	}
	elseRegion, _, err := f.fold(elseNode, armStop)
	if err != nil {
		return nil, 0, err
	}

	ifRegion := &IfThenElse{Cond: term, Then: thenRegion, Else: elseRegion}
	combined := seq(head, ifRegion)

	if merge < 0 {
		return combined, -1, nil
	}
	return f.foldContinuation(combined, merge, stop)
}

func (f *folder) foldContinuation(built Region, at int, stop map[int]bool) (Region, int, error) {
	rest, cont, err := f.fold(at, stop)
	if err != nil {
		return nil, 0, err
	}
	return seq(built, rest), cont, nil
}

// findMerge returns the lowest-indexed block whose immediate dominator is
// node and which has more than one predecessor, or -1 if none exists.
func (f *folder) findMerge(node int) int {
	for n := 0; n < len(f.fn.Content); n++ {
		if n == node {
			continue
		}
		dom, ok := f.cfg.ImmediateDominator(n)
		if !ok || dom != node {
			continue
		}
		if len(f.g.Predecessors(n)) > 1 {
			return n
		}
	}
	return -1
}

func seq(first, second Region) Region {
	if second == nil {
		return first
	}
	return &Seq{First: first, Second: second}
}
