package optimize

import "come/internal/ir"

// RemoveUnusedRegister deletes every pure statement (ir.IsPure) whose result
// register is never read anywhere in the function, iterating to a fixpoint
// since removing one dead statement can make one of its own operands dead in
// turn. Grounded on spec.md §4.8 and the original ir/optimize/
// remove_unused_register.rs pass.
func RemoveUnusedRegister(fn *ir.FunctionDefinition) *ir.FunctionDefinition {
	for {
		used := usedRegisters(fn)
		batch := &ir.EditBatch{}
		removedAny := false

		for bi, block := range fn.Content {
			var keptPhis []*ir.Phi
			for _, phi := range block.Phis {
				if !used[phi.To] {
					removedAny = true
					continue
				}
				keptPhis = append(keptPhis, phi)
			}
			block.Phis = keptPhis

			for si, s := range block.Content {
				to, _, hasResult := s.Result()
				if hasResult && ir.IsPure(s) && !used[to] {
					batch.AddRemove(ir.StatementIndex{BlockIndex: bi, StatementIndex: si})
					removedAny = true
				}
			}
		}

		batch.Apply(fn, nil)
		if !removedAny {
			return fn
		}
	}
}

func usedRegisters(fn *ir.FunctionDefinition) map[ir.RegisterName]bool {
	used := make(map[ir.RegisterName]bool)
	mark := func(names []ir.RegisterName) {
		for _, n := range names {
			used[n] = true
		}
	}
	for _, block := range fn.Content {
		for _, phi := range block.Phis {
			mark(phi.UseRegisters())
		}
		for _, s := range block.Content {
			mark(s.UseRegisters())
		}
		if block.Terminator != nil {
			mark(block.Terminator.UseRegisters())
		}
	}
	return used
}
