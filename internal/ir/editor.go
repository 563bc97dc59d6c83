package ir

import "sort"

// PhiEntry describes one predecessor's contribution to a phi node a pass
// wants installed: the value flowing in from Source block into the phi
// that will be placed at the head of Block, for a promoted variable named
// VariableName.
type PhiEntry struct {
	Block        int
	VariableName string
	Source       int
	Value        Quantity
}

// RegisterReplacement rewrites every use (and the defining occurrence) of
// From to To.
type RegisterReplacement struct {
	From RegisterName
	To   Quantity
}

// EditBatch accumulates the edits a single optimization pass wants applied
// to a function: statements to remove, phi nodes to install, and registers
// to rename throughout. A pass never mutates the IR directly — it returns
// an EditBatch, which Apply executes deterministically (grounded on the
// original ir/optimize/action.rs EditActionBatch).
type EditBatch struct {
	Remove          []StatementIndex
	InsertPhis      []PhiEntry
	ReplaceRegister []RegisterReplacement
}

// AddRemove queues removal of the statement at index.
func (b *EditBatch) AddRemove(index StatementIndex) {
	b.Remove = append(b.Remove, index)
}

// AddInsertPhi queues installation of a phi source: block receives a phi
// for variableName with a source edge from sourceBlock carrying value.
func (b *EditBatch) AddInsertPhi(block int, variableName string, sourceBlock int, value Quantity) {
	b.InsertPhis = append(b.InsertPhis, PhiEntry{Block: block, VariableName: variableName, Source: sourceBlock, Value: value})
}

// AddReplace queues a global rename of from to the quantity to.
func (b *EditBatch) AddReplace(from RegisterName, to Quantity) {
	b.ReplaceRegister = append(b.ReplaceRegister, RegisterReplacement{From: from, To: to})
}

// Merge appends other's actions onto b, in place, and returns b.
func (b *EditBatch) Merge(other *EditBatch) *EditBatch {
	if other == nil {
		return b
	}
	b.Remove = append(b.Remove, other.Remove...)
	b.InsertPhis = append(b.InsertPhis, other.InsertPhis...)
	b.ReplaceRegister = append(b.ReplaceRegister, other.ReplaceRegister...)
	return b
}

// Empty reports whether the batch has no actions at all.
func (b *EditBatch) Empty() bool {
	return len(b.Remove) == 0 && len(b.InsertPhis) == 0 && len(b.ReplaceRegister) == 0
}

func statementIndexLess(a, b StatementIndex) bool {
	if a.BlockIndex != b.BlockIndex {
		return a.BlockIndex < b.BlockIndex
	}
	return a.StatementIndex < b.StatementIndex
}

// Apply executes the batch against fn in the fixed order: remove, then
// insert phis, then rename registers. variableTypes supplies the type of
// each promoted variable, by its pre-promotion name, for the phi nodes
// Apply synthesizes.
func (b *EditBatch) Apply(fn *FunctionDefinition, variableTypes map[RegisterName]Type) {
	applyRemove(fn, b.Remove)
	applyInsertPhis(fn, b.InsertPhis, variableTypes)
	applyReplaceRegister(fn, b.ReplaceRegister)
}

func applyRemove(fn *FunctionDefinition, remove []StatementIndex) {
	if len(remove) == 0 {
		return
	}
	sorted := append([]StatementIndex(nil), remove...)
	sort.Slice(sorted, func(i, j int) bool { return statementIndexLess(sorted[i], sorted[j]) })
	deduped := sorted[:1]
	for _, idx := range sorted[1:] {
		if idx != deduped[len(deduped)-1] {
			deduped = append(deduped, idx)
		}
	}
	for i := len(deduped) - 1; i >= 0; i-- {
		idx := deduped[i]
		block := fn.Content[idx.BlockIndex]
		block.Content = append(block.Content[:idx.StatementIndex], block.Content[idx.StatementIndex+1:]...)
	}
}

func applyInsertPhis(fn *FunctionDefinition, inserts []PhiEntry, variableTypes map[RegisterName]Type) {
	if len(inserts) == 0 {
		return
	}
	sorted := append([]PhiEntry(nil), inserts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VariableName != sorted[j].VariableName {
			return sorted[i].VariableName < sorted[j].VariableName
		}
		return sorted[i].Block < sorted[j].Block
	})

	type groupKey struct {
		variable string
		block    int
	}
	order := []groupKey{}
	groups := map[groupKey][]PhiEntry{}
	for _, entry := range sorted {
		key := groupKey{variable: entry.VariableName, block: entry.Block}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], entry)
	}

	for _, key := range order {
		group := groups[key]
		var sources []PhiSource
		for _, entry := range group {
			sourceName := fn.Content[entry.Source].Name
			sources = append(sources, PhiSource{Value: entry.Value, Block: sourceName})
		}
		blockName := fn.Content[key.block].Name
		phi := &Phi{
			To:       RegisterName(key.variable + "_" + blockName),
			DataType: variableTypes[RegisterName(key.variable)],
			From:     sources,
		}
		phi.SortSources()
		fn.Content[key.block].Phis = append([]*Phi{phi}, fn.Content[key.block].Phis...)
	}
}

func applyReplaceRegister(fn *FunctionDefinition, replacements []RegisterReplacement) {
	for _, r := range replacements {
		for _, block := range fn.Content {
			for _, phi := range block.Phis {
				phi.ReplaceRegister(r.From, r.To)
			}
			for _, s := range block.Content {
				s.ReplaceRegister(r.From, r.To)
			}
			if block.Terminator != nil {
				block.Terminator.ReplaceRegister(r.From, r.To)
			}
		}
	}
}
