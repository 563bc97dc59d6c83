package ir

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"

	"come/internal/comperr"
)

var irParser = participle.MustBuild[FileNode](
	participle.Lexer(IRLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(4),
)

// ParseProgram parses a whole IR text into a Program. structs is consulted
// (and extended) for any StructRef types named in the text; pass an empty
// table when the text declares none.
func ParseProgram(filename, source string, structs *StructTable) (*Program, error) {
	file, err := irParser.ParseString(filename, source)
	if err != nil {
		return nil, comperr.Wrap(comperr.KindLexParse, comperr.ErrorUnexpectedToken, err)
	}
	program := &Program{Structs: structs}
	for _, fn := range file.Functions {
		def, err := functionFromNode(fn, structs)
		if err != nil {
			return nil, err
		}
		program.Functions = append(program.Functions, def)
	}
	return program, nil
}

// ParseFunction parses a single function definition, for tests and tools
// that work one function at a time.
func ParseFunction(filename, source string, structs *StructTable) (*FunctionDefinition, error) {
	program, err := ParseProgram(filename, source, structs)
	if err != nil {
		return nil, err
	}
	if len(program.Functions) != 1 {
		return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "expected exactly one function")
	}
	return program.Functions[0], nil
}

func typeFromNode(n *TypeNode, structs *StructTable) (Type, error) {
	if n.None {
		return NoneType{}, nil
	}
	switch n.Name {
	case "address":
		return AddressType{}, nil
	}
	if len(n.Name) >= 2 && (n.Name[0] == 'i' || n.Name[0] == 'u') {
		if width, err := strconv.Atoi(n.Name[1:]); err == nil {
			return IntegerType{Signed: n.Name[0] == 'i', Width: width}, nil
		}
	}
	if structs != nil && structs.Lookup(n.Name) == nil {
		return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUndefinedRegister, "unknown type name "+n.Name)
	}
	return StructRefType{Name: n.Name}, nil
}

func quantityFromNode(n *QuantityNode) (Quantity, error) {
	switch {
	case n.Register != "":
		return RegisterName(strings.TrimPrefix(n.Register, "%")), nil
	case n.Global != "":
		return GlobalVariableName(strings.TrimPrefix(n.Global, "@")), nil
	case n.Number != nil:
		return NumberLiteral(*n.Number), nil
	default:
		return nil, comperr.New(comperr.KindLexParse, comperr.ErrorMalformedInteger, "empty quantity")
	}
}

func registerFromNode(s string) RegisterName {
	return RegisterName(strings.TrimPrefix(s, "%"))
}

func functionFromNode(n *FunctionNode, structs *StructTable) (*FunctionDefinition, error) {
	returnType, err := typeFromNode(n.ReturnType, structs)
	if err != nil {
		return nil, err
	}
	params := make([]Parameter, len(n.Params))
	for i, p := range n.Params {
		t, err := typeFromNode(p.Type, structs)
		if err != nil {
			return nil, err
		}
		params[i] = Parameter{Name: registerFromNode(p.Name), DataType: t}
	}
	def := NewFunctionDefinition(n.Name, params, returnType)
	for _, b := range n.Blocks {
		block, err := blockFromNode(b, structs)
		if err != nil {
			return nil, err
		}
		def.Content = append(def.Content, block)
	}
	return def, nil
}

func blockFromNode(n *BlockNode, structs *StructTable) (*BasicBlock, error) {
	block := &BasicBlock{Name: n.Label}
	for _, s := range n.Statements {
		switch {
		case s.Assign != nil && s.Assign.Phi != nil:
			phi, err := phiFromNode(s.Assign, structs)
			if err != nil {
				return nil, err
			}
			block.Phis = append(block.Phis, phi)
		default:
			stmt, err := statementFromNode(s, structs)
			if err != nil {
				return nil, err
			}
			block.Content = append(block.Content, stmt)
		}
	}
	if n.Terminator != nil {
		term, err := terminatorFromNode(n.Terminator)
		if err != nil {
			return nil, err
		}
		block.Terminator = term
	}
	return block, nil
}

func phiFromNode(n *AssignStatement, structs *StructTable) (*Phi, error) {
	t, err := typeFromNode(n.Phi.Type, structs)
	if err != nil {
		return nil, err
	}
	phi := &Phi{To: registerFromNode(n.To), DataType: t}
	for _, src := range n.Phi.Sources {
		value, err := quantityFromNode(src.Value)
		if err != nil {
			return nil, err
		}
		phi.From = append(phi.From, PhiSource{Value: value, Block: src.Block})
	}
	return phi, nil
}

func statementFromNode(n *StatementNode, structs *StructTable) (Statement, error) {
	switch {
	case n.Assign != nil:
		return assignFromNode(n.Assign, structs)
	case n.Store != nil:
		t, err := typeFromNode(n.Store.Type, structs)
		if err != nil {
			return nil, err
		}
		source, err := quantityFromNode(n.Store.Source)
		if err != nil {
			return nil, err
		}
		target, err := quantityFromNode(n.Store.Target)
		if err != nil {
			return nil, err
		}
		return &Store{DataType: t, Source: source, Target: target}, nil
	case n.SetField != nil:
		return setFieldFromNode(n.SetField, structs)
	case n.VoidCall != nil:
		return callFromNode(n.VoidCall, nil, structs)
	default:
		return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "empty statement")
	}
}

func assignFromNode(n *AssignStatement, structs *StructTable) (Statement, error) {
	to := registerFromNode(n.To)
	switch {
	case n.Alloca != nil:
		t, err := typeFromNode(n.Alloca.Type, structs)
		if err != nil {
			return nil, err
		}
		return &Alloca{To: to, AllocType: t}, nil
	case n.Load != nil:
		t, err := typeFromNode(n.Load.Type, structs)
		if err != nil {
			return nil, err
		}
		from, err := quantityFromNode(n.Load.From)
		if err != nil {
			return nil, err
		}
		return &Load{To: to, DataType: t, From: from}, nil
	case n.LoadField != nil:
		t, err := typeFromNode(n.LoadField.Type, structs)
		if err != nil {
			return nil, err
		}
		source, err := quantityFromNode(n.LoadField.Source)
		if err != nil {
			return nil, err
		}
		return &LoadField{To: to, Source: source, DataType: t, Index: n.LoadField.Index}, nil
	case n.Unary != nil:
		t, err := typeFromNode(n.Unary.Type, structs)
		if err != nil {
			return nil, err
		}
		operand, err := quantityFromNode(n.Unary.Operand)
		if err != nil {
			return nil, err
		}
		op := Neg
		if n.Unary.Op == "not" {
			op = Not
		}
		return &UnaryCalculate{Op: op, Operand: operand, To: to, DataType: t}, nil
	case n.Binary != nil:
		t, err := typeFromNode(n.Binary.Type, structs)
		if err != nil {
			return nil, err
		}
		op1, err := quantityFromNode(n.Binary.Op1)
		if err != nil {
			return nil, err
		}
		op2, err := quantityFromNode(n.Binary.Op2)
		if err != nil {
			return nil, err
		}
		op, err := binaryOpFromName(n.Binary.Op)
		if err != nil {
			return nil, err
		}
		return &BinaryCalculate{Op: op, Operand1: op1, Operand2: op2, To: to, DataType: t}, nil
	case n.Call != nil:
		return callFromNode(n.Call, &to, structs)
	default:
		return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "empty assignment")
	}
}

func binaryOpFromName(name string) (BinaryOp, error) {
	for op, candidate := range binaryOpNames {
		if candidate == name {
			return BinaryOp(op), nil
		}
	}
	return 0, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "unknown binary operator "+name)
}

func callFromNode(n *CallRHS, to *RegisterName, structs *StructTable) (Statement, error) {
	t, err := typeFromNode(n.Type, structs)
	if err != nil {
		return nil, err
	}
	params := make([]Quantity, len(n.Params))
	for i, p := range n.Params {
		q, err := quantityFromNode(p)
		if err != nil {
			return nil, err
		}
		params[i] = q
	}
	return &Call{To: to, Name: n.Name, DataType: t, Params: params}, nil
}

func setFieldFromNode(n *SetFieldStatement, structs *StructTable) (Statement, error) {
	t, err := typeFromNode(n.Type, structs)
	if err != nil {
		return nil, err
	}
	source, err := quantityFromNode(n.Source)
	if err != nil {
		return nil, err
	}
	root := registerFromNode(n.Root)
	chain := make([]FieldStep, len(n.Chain))
	for i, step := range n.Chain {
		stepType, err := typeFromNode(step.Type, structs)
		if err != nil {
			return nil, err
		}
		chain[i] = FieldStep{Type: stepType, Index: step.Index}
	}
	return &SetField{
		Target:     root,
		Source:     source,
		OriginRoot: root,
		FieldChain: chain,
		FinalType:  t,
	}, nil
}

func terminatorFromNode(n *TerminatorNode) (Terminator, error) {
	switch {
	case n.Branch != nil:
		op1, err := quantityFromNode(n.Branch.Op1)
		if err != nil {
			return nil, err
		}
		op2, err := quantityFromNode(n.Branch.Op2)
		if err != nil {
			return nil, err
		}
		kind, err := branchKindFromName(n.Branch.Kind)
		if err != nil {
			return nil, err
		}
		return &Branch{Kind: kind, Op1: op1, Op2: op2, SuccessLabel: n.Branch.Success, FailureLabel: n.Branch.Failure}, nil
	case n.Jump != nil:
		return &Jump{Label: n.Jump.Label}, nil
	case n.Ret != nil:
		if n.Ret.Value == nil {
			return &Ret{}, nil
		}
		v, err := quantityFromNode(n.Ret.Value)
		if err != nil {
			return nil, err
		}
		return &Ret{Value: v}, nil
	default:
		return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "empty terminator")
	}
}

func branchKindFromName(name string) (BranchKind, error) {
	switch name {
	case "beq":
		return BEQ, nil
	case "bne":
		return BNE, nil
	case "blt":
		return BLT, nil
	case "bge":
		return BGE, nil
	default:
		return 0, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "unknown branch kind "+name)
	}
}
