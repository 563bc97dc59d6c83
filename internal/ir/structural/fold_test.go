package structural

import (
	"testing"

	"come/internal/ir"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildIfElse() *ir.FunctionDefinition {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("cond", []ir.Parameter{{Name: "p", DataType: i32}}, i32)

	entry := &ir.BasicBlock{Name: "entry"}
	entry.Terminator = &ir.Branch{Kind: ir.BEQ, Op1: ir.RegisterName("p"), Op2: ir.NumberLiteral(0), SuccessLabel: "t", FailureLabel: "f"}

	th := &ir.BasicBlock{Name: "t"}
	th.Append(&ir.BinaryCalculate{Op: ir.Add, Operand1: ir.NumberLiteral(1), Operand2: ir.NumberLiteral(1), To: "r1", DataType: i32})
	th.Terminator = &ir.Jump{Label: "join"}

	el := &ir.BasicBlock{Name: "f"}
	el.Append(&ir.BinaryCalculate{Op: ir.Sub, Operand1: ir.NumberLiteral(1), Operand2: ir.NumberLiteral(1), To: "r2", DataType: i32})
	el.Terminator = &ir.Jump{Label: "join"}

	join := &ir.BasicBlock{Name: "join"}
	join.Phis = []*ir.Phi{{To: "r", DataType: i32, From: []ir.PhiSource{{Value: ir.RegisterName("r1"), Block: "t"}, {Value: ir.RegisterName("r2"), Block: "f"}}}}
	join.Terminator = &ir.Ret{Value: ir.RegisterName("r")}

	fn.Content = []*ir.BasicBlock{entry, th, el, join}
	return fn
}

func buildLoop() *ir.FunctionDefinition {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("loop", nil, i32)

	entry := &ir.BasicBlock{Name: "entry"}
	entry.Terminator = &ir.Jump{Label: "header"}

	header := &ir.BasicBlock{Name: "header"}
	header.Terminator = &ir.Branch{Kind: ir.BLT, Op1: ir.NumberLiteral(0), Op2: ir.NumberLiteral(10), SuccessLabel: "body", FailureLabel: "exit"}

	body := &ir.BasicBlock{Name: "body"}
	body.Terminator = &ir.Jump{Label: "header"}

	exit := &ir.BasicBlock{Name: "exit"}
	exit.Terminator = &ir.Ret{}

	fn.Content = []*ir.BasicBlock{entry, header, body, exit}
	return fn
}

func TestFoldIfThenElse(t *testing.T) {
	region, err := Fold(buildIfElse())
	require.NoError(t, err)
	require.NotNil(t, region)

	outer, ok := region.(*Seq)
	require.True(t, ok, "expected the entry+branch region sequenced with the join block")
	joinBlock, ok := outer.Second.(*Block)
	require.True(t, ok, "expected the join block to follow the IfThenElse")
	assert.Equal(t, "join", joinBlock.Name)

	inner, ok := outer.First.(*Seq)
	require.True(t, ok)
	entryBlock, ok := inner.First.(*Block)
	require.True(t, ok)
	assert.Equal(t, "entry", entryBlock.Name)

	ifThen, ok := inner.Second.(*IfThenElse)
	require.True(t, ok, "expected an IfThenElse folded from the branch")
	assert.NotNil(t, ifThen.Then)
	assert.NotNil(t, ifThen.Else)
}

func TestFoldLoop(t *testing.T) {
	region, err := Fold(buildLoop())
	require.NoError(t, err)
	require.NotNil(t, region)

	var foundLoop bool
	var walk func(Region)
	walk = func(r Region) {
		switch v := r.(type) {
		case *Seq:
			walk(v.First)
			walk(v.Second)
		case *Loop:
			foundLoop = true
			walk(v.Body)
		case *IfThenElse:
			walk(v.Then)
			walk(v.Else)
		}
	}
	walk(region)
	assert.True(t, foundLoop, "expected a Loop region somewhere in the fold")
}

func TestFoldRejectsIrreducibleInput(t *testing.T) {
	i32 := ir.IntegerType{Signed: true, Width: 32}
	fn := ir.NewFunctionDefinition("irred", []ir.Parameter{{Name: "p", DataType: i32}}, ir.NoneType{})

	a := &ir.BasicBlock{Name: "a"}
	a.Terminator = &ir.Branch{Kind: ir.BEQ, Op1: ir.RegisterName("p"), Op2: ir.NumberLiteral(0), SuccessLabel: "b", FailureLabel: "c"}
	b := &ir.BasicBlock{Name: "b"}
	b.Terminator = &ir.Jump{Label: "c"}
	c := &ir.BasicBlock{Name: "c"}
	c.Terminator = &ir.Jump{Label: "b"}
	fn.Content = []*ir.BasicBlock{a, b, c}

	_, err := Fold(fn)
	require.Error(t, err)
}
