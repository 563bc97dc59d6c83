package ir

// Print renders a program back to the textual form ParseProgram accepts.
// Statement/Block/FunctionDefinition already implement String() in this
// concrete syntax; Print exists as the named counterpart to ParseProgram
// so callers don't need to know that detail, and so the round-trip law
// (ParseProgram(Print(p)) == p) reads as a single pair of named functions.
func Print(p *Program) string {
	return p.String()
}

// PrintFunction renders a single function definition.
func PrintFunction(f *FunctionDefinition) string {
	return f.String()
}
