package riscv

import (
	"testing"

	"come/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignRegistersAllocaGetsStackRef(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("f", nil, i32)
	entry := &ir.BasicBlock{Name: "entry"}
	entry.Append(&ir.Alloca{To: "x", AllocType: i32})
	entry.Terminator = &ir.Ret{Value: ir.NumberLiteral(0)}
	fn.Content = []*ir.BasicBlock{entry}

	assign := AssignRegisters(fn, ir.NewStructTable())
	a := assign[ir.RegisterName("x")]
	assert.Equal(t, AssignStackRef, a.Kind)
}

func TestAssignRegistersSpillsPastPool(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	params := make([]ir.Parameter, 0, len(valuePool)+2)
	for i := 0; i < len(valuePool)+2; i++ {
		params = append(params, ir.Parameter{Name: ir.RegisterName("p" + string(rune('a'+i))), DataType: i32})
	}
	fn := ir.NewFunctionDefinition("many", params, i32)
	entry := &ir.BasicBlock{Name: "entry"}
	entry.Terminator = &ir.Ret{Value: ir.NumberLiteral(0)}
	fn.Content = []*ir.BasicBlock{entry}

	assign := AssignRegisters(fn, ir.NewStructTable())

	var registers, spills int
	for _, p := range params {
		switch assign[p.Name].Kind {
		case AssignRegister:
			registers++
		case AssignStackValue:
			spills++
		}
	}
	assert.Equal(t, len(valuePool), registers)
	assert.Equal(t, 2, spills)
}

func TestAssignRegistersStackValueSlotsDoNotOverlap(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	// Exhaust the register pool with distinct names, then add two more
	// parameters that must land in non-overlapping stack slots.
	params := make([]ir.Parameter, 0, len(valuePool)+2)
	for i := 0; i < len(valuePool); i++ {
		params = append(params, ir.Parameter{Name: ir.RegisterName(string(rune('a' + i))), DataType: i32})
	}
	params = append(params,
		ir.Parameter{Name: "extra1", DataType: i32},
		ir.Parameter{Name: "extra2", DataType: i32},
	)
	fn := ir.NewFunctionDefinition("spill", params, i32)
	entry := &ir.BasicBlock{Name: "entry"}
	entry.Terminator = &ir.Ret{Value: ir.NumberLiteral(0)}
	fn.Content = []*ir.BasicBlock{entry}

	assign := AssignRegisters(fn, ir.NewStructTable())
	a1 := assign[ir.RegisterName("extra1")]
	a2 := assign[ir.RegisterName("extra2")]
	require.Equal(t, AssignStackValue, a1.Kind)
	require.Equal(t, AssignStackValue, a2.Kind)
	assert.NotEqual(t, a1.Offset, a2.Offset)
}

func TestAssignRegistersSameRegisterNotReassigned(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("reuse", []ir.Parameter{{Name: "a", DataType: i32}}, i32)
	entry := &ir.BasicBlock{Name: "entry"}
	entry.Append(&ir.BinaryCalculate{To: "a", Op: ir.Add, DataType: i32, Operand1: ir.RegisterName("a"), Operand2: ir.NumberLiteral(1)})
	entry.Terminator = &ir.Ret{Value: ir.RegisterName("a")}
	fn.Content = []*ir.BasicBlock{entry}

	assign := AssignRegisters(fn, ir.NewStructTable())
	require.Contains(t, assign, ir.RegisterName("a"))
	assert.Equal(t, AssignRegister, assign[ir.RegisterName("a")].Kind)
}
