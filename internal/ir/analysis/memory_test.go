package analysis

import (
	"testing"

	"come/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildPromotableFunction() *ir.FunctionDefinition {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("f", nil, i32)

	entry := &ir.BasicBlock{Name: "entry"}
	entry.Append(&ir.Alloca{To: "x", AllocType: i32})
	entry.Append(&ir.Store{DataType: i32, Source: ir.NumberLiteral(1), Target: ir.RegisterName("x")})
	entry.Append(&ir.Load{To: "a", DataType: i32, From: ir.RegisterName("x")})
	entry.Append(&ir.Store{DataType: i32, Source: ir.NumberLiteral(2), Target: ir.RegisterName("x")})
	entry.Append(&ir.Load{To: "b", DataType: i32, From: ir.RegisterName("x")})
	entry.Terminator = &ir.Ret{Value: ir.RegisterName("b")}

	fn.Content = []*ir.BasicBlock{entry}
	return fn
}

func TestMemoryUsageAnalyzerIndexesAccesses(t *testing.T) {
	fn := buildPromotableFunction()
	a := NewMemoryUsageAnalyzer(fn)

	info := a.MemoryAccessInfo(ir.RegisterName("x"))
	require.NotNil(t, info)
	assert.Len(t, info.Store, 2)
	assert.Len(t, info.Load, 2)
}

func TestMemoryUsageAnalyzerPromotable(t *testing.T) {
	fn := buildPromotableFunction()
	a := NewMemoryUsageAnalyzer(fn)
	assert.True(t, a.Promotable(ir.RegisterName("x")))
}

func TestMemoryUsageAnalyzerEscapingNotPromotable(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	addr := ir.AddressType{}
	fn := ir.NewFunctionDefinition("g", nil, addr)

	entry := &ir.BasicBlock{Name: "entry"}
	entry.Append(&ir.Alloca{To: "x", AllocType: i32})
	entry.Append(&ir.Store{DataType: i32, Source: ir.NumberLiteral(1), Target: ir.RegisterName("x")})
	entry.Terminator = &ir.Ret{Value: ir.RegisterName("x")}
	fn.Content = []*ir.BasicBlock{entry}

	a := NewMemoryUsageAnalyzer(fn)
	assert.False(t, a.Promotable(ir.RegisterName("x")), "address returned by ret must not be promotable")
}

func TestLoadsDominatedByStoreInBlock(t *testing.T) {
	fn := buildPromotableFunction()
	a := NewMemoryUsageAnalyzer(fn)
	info := a.MemoryAccessInfo(ir.RegisterName("x"))

	firstStore := info.Store[0]
	dominated := info.LoadsDominatedByStoreInBlock(firstStore)
	require.Len(t, dominated, 1, "only the load between the two stores is dominated by the first store")
	assert.Equal(t, info.Load[0], dominated[0])
}

func TestStoresUsedByOtherBlocksKeepsLastPerBlock(t *testing.T) {
	fn := buildPromotableFunction()
	a := NewMemoryUsageAnalyzer(fn)
	info := a.MemoryAccessInfo(ir.RegisterName("x"))

	result := info.StoresUsedByOtherBlocks()
	require.Len(t, result, 1, "single block: only its last store should be kept")
	assert.Equal(t, info.Store[1], result[0])
}

func TestMemoryUsageAnalyzerVariableTypes(t *testing.T) {
	fn := buildPromotableFunction()
	a := NewMemoryUsageAnalyzer(fn)
	types := a.VariableTypes()
	assert.Equal(t, ir.IntegerType{Signed: true, Width: 32}, types[ir.RegisterName("x")])
}
