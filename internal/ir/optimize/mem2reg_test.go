package optimize

import (
	"testing"

	"come/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond builds:
//
//	entry: %x = alloca i32; store i32 1, address %x; beq %c, 0, left, right
//	left:  store i32 2, address %x; j join
//	right: store i32 3, address %x; j join
//	join:  %r = load i32 %x; ret %r
func buildDiamond() *ir.FunctionDefinition {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("diamond", []ir.Parameter{{Name: "c", DataType: i32}}, i32)

	entry := &ir.BasicBlock{Name: "entry"}
	entry.Append(&ir.Alloca{To: "x", AllocType: i32})
	entry.Append(&ir.Store{DataType: i32, Source: ir.NumberLiteral(1), Target: ir.RegisterName("x")})
	entry.Terminator = &ir.Branch{Kind: ir.BEQ, Op1: ir.RegisterName("c"), Op2: ir.NumberLiteral(0), SuccessLabel: "left", FailureLabel: "right"}

	left := &ir.BasicBlock{Name: "left"}
	left.Append(&ir.Store{DataType: i32, Source: ir.NumberLiteral(2), Target: ir.RegisterName("x")})
	left.Terminator = &ir.Jump{Label: "join"}

	right := &ir.BasicBlock{Name: "right"}
	right.Append(&ir.Store{DataType: i32, Source: ir.NumberLiteral(3), Target: ir.RegisterName("x")})
	right.Terminator = &ir.Jump{Label: "join"}

	join := &ir.BasicBlock{Name: "join"}
	join.Append(&ir.Load{To: "r", DataType: i32, From: ir.RegisterName("x")})
	join.Terminator = &ir.Ret{Value: ir.RegisterName("r")}

	fn.Content = []*ir.BasicBlock{entry, left, right, join}
	return fn
}

func TestMemoryToRegisterPromotesDiamond(t *testing.T) {
	fn := buildDiamond()
	fn = MemoryToRegister(fn)

	for _, b := range fn.Content {
		for _, s := range b.Content {
			switch s.(type) {
			case *ir.Alloca, *ir.Load, *ir.Store:
				t.Fatalf("expected no alloca/load/store to survive promotion, found %s in block %s", s, b.Name)
			}
		}
	}

	join := fn.BlockByName("join")
	require.NotNil(t, join)
	require.Len(t, join.Phis, 1, "join should have exactly one phi merging the two stores")
	assert.Len(t, join.Phis[0].From, 2)

	ret, ok := join.Terminator.(*ir.Ret)
	require.True(t, ok)
	assert.Equal(t, join.Phis[0].To, ret.Value, "the return should read the phi's result, not the old alloca load")
}

func TestMemoryToRegisterLeavesEscapingAllocaAlone(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	addr := ir.AddressType{}
	fn := ir.NewFunctionDefinition("escapes", nil, addr)

	entry := &ir.BasicBlock{Name: "entry"}
	entry.Append(&ir.Alloca{To: "x", AllocType: i32})
	entry.Append(&ir.Store{DataType: i32, Source: ir.NumberLiteral(1), Target: ir.RegisterName("x")})
	entry.Terminator = &ir.Ret{Value: ir.RegisterName("x")}
	fn.Content = []*ir.BasicBlock{entry}

	fn = MemoryToRegister(fn)

	var sawAlloca bool
	for _, s := range fn.Content[0].Content {
		if _, ok := s.(*ir.Alloca); ok {
			sawAlloca = true
		}
	}
	assert.True(t, sawAlloca, "an alloca returned by address must not be promoted")
}
