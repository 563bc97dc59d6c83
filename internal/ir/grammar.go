package ir

// The grammar below is a participle struct-tag grammar for the IR's
// concrete syntax: it mirrors the teacher's grammar package in shape
// (sum types expressed as pointer fields with "|"-separated alternatives),
// redirected at the IR's own textual format instead of come source.

// FileNode is the root of a parsed IR text: zero or more function
// definitions.
type FileNode struct {
	Functions []*FunctionNode `@@*`
}

// FunctionNode is one function header plus its basic blocks.
type FunctionNode struct {
	Name       string       `"fn" @Ident "("`
	Params     []*ParamNode `[ @@ { "," @@ } ] ")" Arrow`
	ReturnType *TypeNode    `@@ "{"`
	Blocks     []*BlockNode `@@* "}"`
}

// ParamNode is one formal parameter: type then register name.
type ParamNode struct {
	Type *TypeNode `@@`
	Name string    `@Register`
}

// TypeNode captures one of Integer (iN/uN, recognized at conversion time
// by name prefix), Address, None ("()"), or a struct name.
type TypeNode struct {
	None bool   `( @( "(" ")" )`
	Name string `| @( "address" | Ident ) )`
}

// BlockNode is one basic block: an optional label, then phis, ordinary
// statements, and an optional terminator.
type BlockNode struct {
	Label      string           `[ @Ident ":" ]`
	Statements []*StatementNode `@@*`
	Terminator *TerminatorNode  `@@?`
}

// StatementNode is a non-terminator statement.
type StatementNode struct {
	Assign   *AssignStatement   `  @@`
	Store    *StoreStatement    `| @@`
	SetField *SetFieldStatement `| @@`
	VoidCall *CallRHS           `| @@`
}

// AssignStatement is "%to = <rhs>", where rhs is distinguished by its
// leading keyword.
type AssignStatement struct {
	To        string        `@Register "="`
	Alloca    *AllocaRHS    `(   @@`
	Load      *LoadRHS      `  | @@`
	LoadField *LoadFieldRHS `  | @@`
	Phi       *PhiRHS       `  | @@`
	Unary     *UnaryRHS     `  | @@`
	Binary    *BinaryRHS    `  | @@`
	Call      *CallRHS      `  | @@ )`
}

// AllocaRHS is "alloca Type".
type AllocaRHS struct {
	Type *TypeNode `"alloca" @@`
}

// LoadRHS is "load Type Quantity".
type LoadRHS struct {
	Type *TypeNode     `"load" @@`
	From *QuantityNode `@@`
}

// LoadFieldRHS is "loadfield Type Quantity, Index".
type LoadFieldRHS struct {
	Type   *TypeNode     `"loadfield" @@`
	Source *QuantityNode `@@ ","`
	Index  int           `@Integer`
}

// PhiRHS is "phi Type [value, block], [value, block], ...".
type PhiRHS struct {
	Type    *TypeNode        `"phi" @@`
	Sources []*PhiSourceNode `@@ { "," @@ }`
}

// PhiSourceNode is one "[value, block]" entry.
type PhiSourceNode struct {
	Value *QuantityNode `"[" @@ ","`
	Block string        `@Ident "]"`
}

// UnaryRHS is "<op> Type Quantity".
type UnaryRHS struct {
	Op      string        `@( "neg" | "not" )`
	Type    *TypeNode     `@@`
	Operand *QuantityNode `@@`
}

// BinaryRHS is "<op> Type Quantity, Quantity".
type BinaryRHS struct {
	Op   string        `@( "add" | "sub" | "and" | "or" | "xor" | "lsl" | "lsr" | "asr" | "lt" | "le" | "gt" | "ge" | "eq" | "ne" )`
	Type *TypeNode     `@@`
	Op1  *QuantityNode `@@ ","`
	Op2  *QuantityNode `@@`
}

// CallRHS is "call Type name(params...)", with or without an assignment
// prefix (the void-call form is wrapped directly into StatementNode).
type CallRHS struct {
	Type   *TypeNode       `"call" @@`
	Name   string          `@Ident "("`
	Params []*QuantityNode `[ @@ { "," @@ } ] ")"`
}

// StoreStatement is "store Type Quantity, address Quantity".
type StoreStatement struct {
	Type   *TypeNode     `"store" @@`
	Source *QuantityNode `@@ ","`
	Target *QuantityNode `"address" @@`
}

// SetFieldStatement is "setfield %root, [Type:Index, ...], FinalType,
// Quantity": the bracketed chain lists, root-to-leaf, the struct type being
// indexed into and the field index at each step, and FinalType is the type
// of the field actually written.
type SetFieldStatement struct {
	Root   string           `"setfield" @Register ","`
	Chain  []*FieldStepNode `"[" @@ { "," @@ } "]" ","`
	Type   *TypeNode        `@@ ","`
	Source *QuantityNode    `@@`
}

// FieldStepNode is one "Type:Index" link of a setfield's field chain: the
// struct type being indexed into at that step, and the field index within
// it.
type FieldStepNode struct {
	Type  *TypeNode `@@ ":"`
	Index int       `@Integer`
}

// TerminatorNode is the block-closing statement.
type TerminatorNode struct {
	Branch *BranchNode `  @@`
	Jump   *JumpNode   `| @@`
	Ret    *RetNode    `| @@`
}

// BranchNode is "<kind> op1, op2, success, failure".
type BranchNode struct {
	Kind    string        `@( "beq" | "bne" | "blt" | "bge" )`
	Op1     *QuantityNode `@@ ","`
	Op2     *QuantityNode `@@ ","`
	Success string        `@Ident ","`
	Failure string        `@Ident`
}

// JumpNode is "j label".
type JumpNode struct {
	Label string `"j" @Ident`
}

// RetNode is "ret" or "ret Quantity".
type RetNode struct {
	Value *QuantityNode `"ret" @@?`
}

// QuantityNode is a register, global, or integer literal operand.
type QuantityNode struct {
	Register string `(  @Register`
	Global   string ` | @Global`
	Number   *int64 ` | @Integer )`
}
