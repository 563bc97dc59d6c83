package riscv

// RegisterAssignKind distinguishes the four storage locations a logical
// SSA register can be assigned to by the register allocator that runs
// ahead of the emitter.
type RegisterAssignKind int

const (
	// AssignRegister: the value lives in a physical register.
	AssignRegister RegisterAssignKind = iota
	// AssignStackRef: the logical register names a local variable's
	// address; Offset is that local's stack slot offset from sp.
	AssignStackRef
	// AssignStackValue: the value itself is spilled to the stack at
	// Offset and must be loaded into a temp register before use.
	AssignStackValue
	// AssignMultipleRegisters: a struct-typed value wider than one word,
	// spread across Registers in field order.
	AssignMultipleRegisters
)

// RegisterAssign records where one logical register's value (or, for
// AssignStackRef, the address it names) lives for the duration of a
// function. Grounded on backend/riscv's RegisterAssign enum, referenced
// throughout from_ir/function/statement/*.rs and function/statement/*.rs
// as `RegisterAssign::{Register,StackRef,StackValue,MultipleRegisters}`.
type RegisterAssign struct {
	Kind      RegisterAssignKind
	Register  uint8
	Offset    int
	Registers []uint8
}

func AssignToRegister(r uint8) RegisterAssign { return RegisterAssign{Kind: AssignRegister, Register: r} }

func AssignToStackRef(offset int) RegisterAssign {
	return RegisterAssign{Kind: AssignStackRef, Offset: offset}
}

func AssignToStackValue(offset int) RegisterAssign {
	return RegisterAssign{Kind: AssignStackValue, Offset: offset}
}

func AssignToMultipleRegisters(regs []uint8) RegisterAssign {
	return RegisterAssign{Kind: AssignMultipleRegisters, Registers: regs}
}
