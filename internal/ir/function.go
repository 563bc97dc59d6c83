package ir

import "strings"

// Parameter is one formal parameter of a function definition.
type Parameter struct {
	Name     RegisterName
	DataType Type
}

// FunctionDefinition is a compiled function: its signature and basic
// blocks. Blocks are kept in declaration order; the first block is always
// the entry block.
type FunctionDefinition struct {
	Name       string
	Parameters []Parameter
	ReturnType Type
	Content    []*BasicBlock
}

// NewFunctionDefinition creates a function with the given signature and no
// blocks.
func NewFunctionDefinition(name string, params []Parameter, returnType Type) *FunctionDefinition {
	return &FunctionDefinition{Name: name, Parameters: params, ReturnType: returnType}
}

// BlockByName returns the block named name, or nil.
func (f *FunctionDefinition) BlockByName(name string) *BasicBlock {
	for _, b := range f.Content {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// EntryBlock returns the function's first block, or nil if it has none.
func (f *FunctionDefinition) EntryBlock() *BasicBlock {
	if len(f.Content) == 0 {
		return nil
	}
	return f.Content[0]
}

// StatementIndex addresses one statement within a function: the index of
// its block in Content, and the index of the statement within that block's
// Content slice (not counting phis or the terminator, which passes address
// directly via BasicBlock.Phis / BasicBlock.Terminator).
type StatementIndex struct {
	BlockIndex     int
	StatementIndex int
}

// Walk calls visit for every (blockIndex, statementIndex, Statement) triple
// in the function's body statements, in block then statement order. It
// does not visit phis or terminators; callers that need those iterate
// BasicBlock.Phis / BasicBlock.Terminator directly.
func (f *FunctionDefinition) Walk(visit func(StatementIndex, Statement)) {
	for bi, b := range f.Content {
		for si, s := range b.Content {
			visit(StatementIndex{BlockIndex: bi, StatementIndex: si}, s)
		}
	}
}

// Signature renders the function's name, parameters, and return type the
// way the printer writes a function header.
func (f *FunctionDefinition) Signature() string {
	var out strings.Builder
	out.WriteString("fn ")
	out.WriteString(f.Name)
	out.WriteString("(")
	for i, p := range f.Parameters {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(p.DataType.String())
		out.WriteString(" ")
		out.WriteString(string(p.Name))
	}
	out.WriteString(") -> ")
	out.WriteString(f.ReturnType.String())
	return out.String()
}

func (f *FunctionDefinition) String() string {
	var out strings.Builder
	out.WriteString(f.Signature())
	out.WriteString(" {\n")
	for _, b := range f.Content {
		out.WriteString(b.String())
	}
	out.WriteString("}\n")
	return out.String()
}
