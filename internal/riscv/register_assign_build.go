package riscv

import "come/internal/ir"

// allocWordSize is the granularity spill/alloca stack slots are rounded up
// to: RV32's lw/sw only ever move a 4-byte word (spec.md §4.11).
const allocWordSize = 4

// valuePool is the fixed set of callee-saved registers the greedy
// allocator hands out to register-resident values, in the order it tries
// them. s0/fp is left out: the emitter addresses every stack slot directly
// off sp and never establishes a frame pointer, so keeping s0 unused
// preserves that convention if a caller ever needs one.
var valuePool = []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8", "s9", "s10", "s11"}

// AssignRegisters computes a register assignment for every local register
// fn defines — its parameters and every statement/phi result — suitable
// for FunctionCompileContext. Alloca-defined registers always get a
// dedicated AssignStackRef slot, since the emitter requires a local
// variable's address to be a real, addressable stack location. Every other
// defined register is handed the next free register from valuePool, in
// first-definition order, until the pool is exhausted; the remainder spill
// to AssignStackValue slots. This is the "simple greedy allocator" spec.md
// §9 calls for in place of the external oracle the original treats
// register assignment as — not a liveness-driven linear scan, since
// optimization quality is an explicit non-goal.
func AssignRegisters(fn *ir.FunctionDefinition, structs *ir.StructTable) map[ir.RegisterName]RegisterAssign {
	assign := make(map[ir.RegisterName]RegisterAssign)
	offset := 0
	poolIndex := 0

	nextRegister := func() (uint8, bool) {
		for poolIndex < len(valuePool) {
			name := valuePool[poolIndex]
			poolIndex++
			if r, ok := RegisterByName(name); ok {
				return r, true
			}
		}
		return 0, false
	}

	allocSlot := func(size int) int {
		if size <= 0 {
			size = allocWordSize
		}
		if rem := offset % allocWordSize; rem != 0 {
			offset += allocWordSize - rem
		}
		slot := offset
		offset += size
		return slot
	}

	assignValue := func(name ir.RegisterName, typ ir.Type) {
		if _, ok := assign[name]; ok {
			return
		}
		if r, ok := nextRegister(); ok {
			assign[name] = AssignToRegister(r)
			return
		}
		size := allocWordSize
		if typ != nil {
			size = ir.TypeSize(typ, structs)
		}
		assign[name] = AssignToStackValue(allocSlot(size))
	}

	for _, p := range fn.Parameters {
		assignValue(p.Name, p.DataType)
	}

	for _, b := range fn.Content {
		for _, phi := range b.Phis {
			assignValue(phi.To, phi.DataType)
		}
		for _, s := range b.Content {
			if alloca, ok := s.(*ir.Alloca); ok {
				if _, seen := assign[alloca.To]; !seen {
					assign[alloca.To] = AssignToStackRef(allocSlot(ir.TypeSize(alloca.AllocType, structs)))
				}
				continue
			}
			if to, typ, ok := s.Result(); ok {
				assignValue(to, typ)
			}
		}
	}
	return assign
}
