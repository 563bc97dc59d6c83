package optimize

import (
	"come/internal/comperr"
	"come/internal/ir"
	"come/internal/ir/analysis"

	"github.com/segmentio/ksuid"
)

// dispatchSentinelType is the type of the integer phi FixIrreducible uses to
// record which entry a redirected edge originally targeted.
var dispatchSentinelType = ir.IntegerType{Signed: true, Width: 32}

// FixIrreducible repairs the smallest irreducible sub-SCC of fn's
// control-flow graph, if any, by synthesizing a dispatcher: every edge
// targeting one of the SCC's multiple entry nodes — whether from outside the
// SCC or a backedge from within it — is redirected through a one-block-
// per-edge fan-in, a phi recording which entry the edge intended, and a
// cascade of equality branches dispatching to the real entry blocks. Folding
// in the internal backedges (not just the external entry edges) is what
// makes the dispatcher itself part of the resulting cycle, so the new SCC
// has exactly one entry — the dispatcher — rather than leaving the original
// multi-entry problem one level further out. Returns the rewritten function
// and true if a repair was made, or fn unchanged and false if the CFG was
// already reducible. Grounded on spec.md §4.8's "FixIrreducible as
// best-effort with a diagnostic fallback" and the original
// editor/analyzer/control_flow/scc_new.rs BindedScc machinery (ported as
// analysis.SCC).
func FixIrreducible(fn *ir.FunctionDefinition) (*ir.FunctionDefinition, bool, error) {
	cfg := analysis.New(fn)
	g := cfg.BlockGraph()

	allNodes := make([]int, len(fn.Content))
	for i := range allNodes {
		allNodes[i] = i
	}
	top := analysis.NewSCC(g, allNodes, true)

	bad := top.FirstIrreducibleSubSCC()
	if bad == nil {
		return fn, false, nil
	}

	entries := bad.EntryNodes()
	if len(entries) < 2 {
		return fn, false, comperr.New(comperr.KindIrreducible, comperr.WarningIrreducibleUnfixed,
			"irreducible SCC reported with fewer than two entries")
	}

	entryNames := make([]string, len(entries))
	for i, e := range entries {
		entryNames[i] = cfg.BasicBlockNameByIndex(e)
	}

	dispatchName := "dispatch_" + ksuid.New().String()
	dispatchReg := ir.RegisterName("disp_" + ksuid.New().String())

	dispatchBlocks := make([]*ir.BasicBlock, len(entries)-1)
	for i := range dispatchBlocks {
		name := dispatchName
		if i > 0 {
			name = dispatchName + "_" + ksuid.New().String()
		}
		dispatchBlocks[i] = &ir.BasicBlock{Name: name}
	}

	phi := &ir.Phi{To: dispatchReg, DataType: dispatchSentinelType}

	entryIndex := make(map[int]int, len(entries))
	for i, e := range entries {
		entryIndex[e] = i
	}

	for entry, sentinel := range entryIndex {
		entryName := entryNames[sentinel]
		for _, pred := range g.Predecessors(entry) {
			predBlock := fn.Content[pred]

			edgeBlock := &ir.BasicBlock{
				Name:       "edge_" + ksuid.New().String(),
				Terminator: &ir.Jump{Label: dispatchBlocks[0].Name},
			}
			fn.Content = append(fn.Content, edgeBlock)

			redirectLabel(predBlock.Terminator, entryName, edgeBlock.Name)

			phi.From = append(phi.From, ir.PhiSource{
				Value: ir.NumberLiteral(sentinel),
				Block: edgeBlock.Name,
			})
		}
	}
	phi.SortSources()
	dispatchBlocks[0].Phis = []*ir.Phi{phi}

	for i, block := range dispatchBlocks {
		failLabel := entryNames[len(entryNames)-1]
		if i+1 < len(dispatchBlocks) {
			failLabel = dispatchBlocks[i+1].Name
		}
		block.Terminator = &ir.Branch{
			Kind:         ir.BEQ,
			Op1:          dispatchReg,
			Op2:          ir.NumberLiteral(i),
			SuccessLabel: entryNames[i],
			FailureLabel: failLabel,
		}
	}

	fn.Content = append(fn.Content, dispatchBlocks...)
	return fn, true, nil
}

// redirectLabel rewrites every occurrence of from in term's targets to to.
func redirectLabel(term ir.Terminator, from, to string) {
	switch t := term.(type) {
	case *ir.Branch:
		if t.SuccessLabel == from {
			t.SuccessLabel = to
		}
		if t.FailureLabel == from {
			t.FailureLabel = to
		}
	case *ir.Jump:
		if t.Label == from {
			t.Label = to
		}
	}
}
