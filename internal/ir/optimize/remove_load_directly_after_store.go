package optimize

import (
	"come/internal/ir"
	"come/internal/ir/analysis"
)

// RemoveLoadDirectlyAfterStore inlines, for every store, the loads in its own
// block that it dominates with no intervening store to the same slot — those
// loads can only ever observe the value the store just wrote. Grounded on
// spec.md §4.8 and the original ir/optimize/remove_load_directly_after_store.rs,
// which used the same per-block store/load indexing now exposed by
// analysis.MemoryAccessInfo.LoadsDominatedByStoreInBlock.
func RemoveLoadDirectlyAfterStore(fn *ir.FunctionDefinition) *ir.FunctionDefinition {
	analyzer := analysis.NewMemoryUsageAnalyzer(fn)
	batch := &ir.EditBatch{}

	for _, v := range analyzer.Variables() {
		info := analyzer.MemoryAccessInfo(v)
		for _, storeIdx := range info.Store {
			store := fn.Content[storeIdx.BlockIndex].Content[storeIdx.StatementIndex].(*ir.Store)
			for _, loadIdx := range info.LoadsDominatedByStoreInBlock(storeIdx) {
				load := fn.Content[loadIdx.BlockIndex].Content[loadIdx.StatementIndex].(*ir.Load)
				batch.AddRemove(loadIdx)
				batch.AddReplace(load.To, store.Source)
			}
		}
	}

	batch.Apply(fn, nil)
	return fn
}
