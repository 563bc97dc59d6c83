package optimize

import (
	"come/internal/ir"
	"come/internal/ir/analysis"
)

// RemoveOnlyOnceStore finds every alloca slot written by exactly one Store in
// the whole function and inlines that store's source directly into every
// load of the slot, then deletes the store and the alloca. A slot with a
// single store needs no dominance check: a local written once is assumed
// written before it is ever read, the same precondition the generator
// upholds for every local it lowers to an alloca. Grounded on spec.md §4.8's
// peephole cleanups and the original ir/optimize/remove_only_once_store.rs.
func RemoveOnlyOnceStore(fn *ir.FunctionDefinition) *ir.FunctionDefinition {
	analyzer := analysis.NewMemoryUsageAnalyzer(fn)
	batch := &ir.EditBatch{}

	for _, v := range analyzer.Variables() {
		info := analyzer.MemoryAccessInfo(v)
		if len(info.Store) != 1 {
			continue
		}
		storeIdx := info.Store[0]
		store := fn.Content[storeIdx.BlockIndex].Content[storeIdx.StatementIndex].(*ir.Store)

		for _, loadIdx := range info.Load {
			load := fn.Content[loadIdx.BlockIndex].Content[loadIdx.StatementIndex].(*ir.Load)
			batch.AddRemove(loadIdx)
			batch.AddReplace(load.To, store.Source)
		}
		batch.AddRemove(storeIdx)
		batch.AddRemove(info.Alloca)
	}

	batch.Apply(fn, nil)
	return fn
}
