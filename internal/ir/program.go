package ir

import "strings"

// Program is a whole compilation unit: every function the come CLI parsed
// out of one source file, plus the process-wide struct table shared by
// their types. Analyzers and optimization passes still operate on a single
// *FunctionDefinition; Program is only a container, not an interprocedural
// analysis (multi-function whole-program analysis is explicitly out of
// scope).
type Program struct {
	Functions []*FunctionDefinition
	Structs   *StructTable
}

// NewProgram creates an empty program with a fresh struct table.
func NewProgram() *Program {
	return &Program{Structs: NewStructTable()}
}

// FunctionByName returns the function named name, or nil.
func (p *Program) FunctionByName(name string) *FunctionDefinition {
	for _, f := range p.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func (p *Program) String() string {
	var out strings.Builder
	for i, f := range p.Functions {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(f.String())
	}
	return out.String()
}
