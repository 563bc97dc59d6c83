// Package optimize implements the optimization passes that consume the
// ir/analysis analyzers and produce ir.EditBatch values: memory-to-register
// promotion (the central pass), the peephole cleanups that feed it, and
// FixIrreducible for the loop analyzer's irreducible-CFG case.
package optimize

import (
	"sort"

	"come/internal/graph"
	"come/internal/ir"
	"come/internal/ir/analysis"
)

// MemoryToRegister rewrites fn from alloca form into SSA form: every
// promotable stack slot (one whose address never escapes — its only uses
// are as a Load source or Store target) is replaced by phi-connected
// registers, and its Alloca/Load/Store statements are removed. Grounded on
// spec.md §4.7's standard dominance-frontier SSA construction.
//
// fn is mutated in place and returned, mirroring the teacher's "editor
// consumes a function, returns a new one" lifecycle without needing Rust's
// ownership transfer — analyses built against fn before this call are
// invalidated.
func MemoryToRegister(fn *ir.FunctionDefinition) *ir.FunctionDefinition {
	if len(fn.Content) == 0 {
		return fn
	}

	memInfo := analysis.NewMemoryUsageAnalyzer(fn)
	cfg := analysis.New(fn)
	variableTypes := memInfo.VariableTypes()

	promotable := map[ir.RegisterName]bool{}
	for _, v := range memInfo.Variables() {
		if memInfo.Promotable(v) {
			promotable[v] = true
		}
	}
	if len(promotable) == 0 {
		return fn
	}

	frontiers := cfg.FrontiersMap()
	phiBlocks := make(map[ir.RegisterName]map[int]bool, len(promotable))
	for v := range promotable {
		info := memInfo.MemoryAccessInfo(v)
		defBlockSet := map[int]bool{}
		for _, s := range info.Store {
			defBlockSet[s.BlockIndex] = true
		}
		defBlocks := make([]int, 0, len(defBlockSet))
		for b := range defBlockSet {
			defBlocks = append(defBlocks, b)
		}
		idf := graph.IteratedFrontier(frontiers, defBlocks)
		blocks := make(map[int]bool, len(idf))
		for _, b := range idf {
			blocks[b] = true
		}
		phiBlocks[v] = blocks
	}

	n := len(fn.Content)
	children := make([][]int, n)
	for i := 0; i < n; i++ {
		if dom, ok := cfg.ImmediateDominator(i); ok {
			children[dom] = append(children[dom], i)
		}
	}
	for i := range children {
		sort.Ints(children[i])
	}

	batch := &ir.EditBatch{}
	stacks := make(map[ir.RegisterName][]ir.Quantity, len(promotable))

	currentOrUndef := func(v ir.RegisterName) ir.Quantity {
		if st := stacks[v]; len(st) > 0 {
			return st[len(st)-1]
		}
		return ir.Undef(variableTypes[v])
	}

	var walk func(block int)
	walk = func(block int) {
		pushed := make(map[ir.RegisterName]int, len(promotable))
		bb := fn.Content[block]

		for v := range promotable {
			if phiBlocks[v][block] {
				reg := ir.RegisterName(string(v) + "_" + bb.Name)
				stacks[v] = append(stacks[v], reg)
				pushed[v]++
			}
		}

		for si, s := range bb.Content {
			idx := ir.StatementIndex{BlockIndex: block, StatementIndex: si}
			switch stmt := s.(type) {
			case *ir.Store:
				target, ok := stmt.Target.(ir.RegisterName)
				if !ok || !promotable[target] {
					continue
				}
				stacks[target] = append(stacks[target], stmt.Source)
				pushed[target]++
				batch.AddRemove(idx)
			case *ir.Load:
				from, ok := stmt.From.(ir.RegisterName)
				if !ok || !promotable[from] {
					continue
				}
				batch.AddRemove(idx)
				batch.AddReplace(stmt.To, currentOrUndef(from))
			}
		}

		for _, succ := range cfg.ToBlocks(block) {
			for v := range promotable {
				if phiBlocks[v][succ] {
					batch.AddInsertPhi(succ, string(v), block, currentOrUndef(v))
				}
			}
		}

		for _, child := range children[block] {
			walk(child)
		}

		for v, count := range pushed {
			stacks[v] = stacks[v][:len(stacks[v])-count]
		}
	}
	walk(0)

	for v := range promotable {
		batch.AddRemove(memInfo.MemoryAccessInfo(v).Alloca)
	}

	batch.Apply(fn, variableTypes)
	return fn
}
