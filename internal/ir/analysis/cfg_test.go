package analysis

import (
	"testing"

	"come/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDiamond builds the same diamond-shaped CFG as
// ir/optimize's mem2reg_test.go fixture: entry branches to left/right, both
// join at "join".
func buildDiamond() *ir.FunctionDefinition {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("diamond", []ir.Parameter{{Name: "c", DataType: i32}}, i32)

	entry := &ir.BasicBlock{Name: "entry"}
	entry.Terminator = &ir.Branch{Kind: ir.BEQ, Op1: ir.RegisterName("c"), Op2: ir.NumberLiteral(0), SuccessLabel: "left", FailureLabel: "right"}

	left := &ir.BasicBlock{Name: "left"}
	left.Terminator = &ir.Jump{Label: "join"}

	right := &ir.BasicBlock{Name: "right"}
	right.Terminator = &ir.Jump{Label: "join"}

	join := &ir.BasicBlock{Name: "join"}
	join.Terminator = &ir.Ret{Value: ir.NumberLiteral(0)}

	fn.Content = []*ir.BasicBlock{entry, left, right, join}
	return fn
}

func TestControlFlowGraphSuccessorsPredecessors(t *testing.T) {
	fn := buildDiamond()
	cfg := New(fn)

	entry := cfg.BasicBlockIndexByName("entry")
	left := cfg.BasicBlockIndexByName("left")
	right := cfg.BasicBlockIndexByName("right")
	join := cfg.BasicBlockIndexByName("join")

	assert.ElementsMatch(t, []int{left, right}, cfg.ToBlocks(entry))
	assert.ElementsMatch(t, []int{left, right}, cfg.FromBlocks(join))
	assert.Empty(t, cfg.FromBlocks(entry), "entry has no real-block predecessor")
}

func TestControlFlowGraphDominance(t *testing.T) {
	fn := buildDiamond()
	cfg := New(fn)

	entry := cfg.BasicBlockIndexByName("entry")
	left := cfg.BasicBlockIndexByName("left")
	join := cfg.BasicBlockIndexByName("join")

	assert.True(t, cfg.Dominates(entry, join))
	assert.False(t, cfg.Dominates(left, join), "left must not dominate join: right also reaches it")

	idom, ok := cfg.ImmediateDominator(join)
	require.True(t, ok)
	assert.Equal(t, entry, idom)

	_, ok = cfg.ImmediateDominator(entry)
	assert.False(t, ok, "entry block has no immediate dominator")
}

func TestControlFlowGraphDominanceFrontier(t *testing.T) {
	fn := buildDiamond()
	cfg := New(fn)

	left := cfg.BasicBlockIndexByName("left")
	right := cfg.BasicBlockIndexByName("right")
	join := cfg.BasicBlockIndexByName("join")

	assert.Equal(t, []int{join}, cfg.DominanceFrontier(left))
	assert.Equal(t, []int{join}, cfg.DominanceFrontier(right))
	assert.Empty(t, cfg.DominanceFrontier(join))
}

func TestControlFlowGraphPassedBlocks(t *testing.T) {
	fn := buildDiamond()
	cfg := New(fn)

	entry := cfg.BasicBlockIndexByName("entry")
	left := cfg.BasicBlockIndexByName("left")
	right := cfg.BasicBlockIndexByName("right")
	join := cfg.BasicBlockIndexByName("join")

	passed := cfg.PassedBlocks(entry, join)
	assert.ElementsMatch(t, []int{entry, left, right, join}, passed)
}

func TestControlFlowGraphLinearFunction(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("linear", nil, i32)
	entry := &ir.BasicBlock{Name: "entry"}
	entry.Terminator = &ir.Ret{Value: ir.NumberLiteral(0)}
	fn.Content = []*ir.BasicBlock{entry}

	cfg := New(fn)
	assert.Empty(t, cfg.ToBlocks(0))
	assert.Empty(t, cfg.FromBlocks(0))
	_, ok := cfg.ImmediateDominator(0)
	assert.False(t, ok)
}
