package riscv

import (
	"strconv"
	"strings"

	"come/internal/comperr"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// asmLexer tokenizes one line of RISC-V assembly text: a mnemonic followed
// by comma-separated operands, including the `imm(reg)` memory-operand
// form. Grounded on spec.md §6 and styled on the IR's own IRLexer
// (internal/ir/lexer.go).
var asmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_.][a-zA-Z0-9_.]*`},
	{Name: "Integer", Pattern: `-?(0[xX][0-9a-fA-F]+|[0-9]+)`},
	{Name: "Punct", Pattern: `[(),:]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var asmParser = participle.MustBuild[asmLine](
	participle.Lexer(asmLexer),
	participle.Elide("Whitespace", "Comment"),
)

// asmLine is one assembled line: an optional label, then an optional
// instruction (a blank or label-only line assembles to no instruction).
type asmLine struct {
	Label string   `[ @Ident ":" ]`
	Inst  *asmInst `[ @@ ]`
}

type asmInst struct {
	Mnemonic string        `@Ident`
	Params   []*asmOperand `[ @@ ("," @@)* ]`
}

// asmOperand is one operand: the memory form `imm(reg)` (which expands to
// two Params), a bare integer, or a bare identifier (resolved to a
// register, CSR, or unresolved symbol at conversion time).
type asmOperand struct {
	Mem   *asmMemOperand `(   @@`
	Imm   *string        `  | @Integer`
	Ident *string        `  | @Ident )`
}

type asmMemOperand struct {
	Offset string `@Integer "("`
	Reg    string `@Ident ")"`
}

// ParsedLine is one assembled source line: an optional label declaration
// and, if the line carries one, an instruction with its operands resolved
// against the register/CSR tables (bare identifiers that resolve to
// neither become unresolved Symbol params, for the linker to patch later).
type ParsedLine struct {
	Label string
	Inst  *Instruction
}

// ParseLine assembles one line of RISC-V assembly text.
func ParseLine(text string) (ParsedLine, error) {
	parsed, err := asmParser.ParseString("", text)
	if err != nil {
		return ParsedLine{}, comperr.Wrap(comperr.KindLexParse, comperr.ErrorUnexpectedToken, err)
	}
	out := ParsedLine{Label: parsed.Label}
	if parsed.Inst == nil {
		return out, nil
	}

	var params []Param
	for _, op := range parsed.Inst.Params {
		switch {
		case op.Mem != nil:
			imm, err := parseImmediate(op.Mem.Offset)
			if err != nil {
				return ParsedLine{}, err
			}
			params = append(params, ImmediateParam(imm), resolveIdent(op.Mem.Reg))
		case op.Imm != nil:
			imm, err := parseImmediate(*op.Imm)
			if err != nil {
				return ParsedLine{}, err
			}
			params = append(params, ImmediateParam(imm))
		case op.Ident != nil:
			params = append(params, resolveIdent(*op.Ident))
		}
	}
	out.Inst = &Instruction{Name: parsed.Inst.Mnemonic, Params: params}
	return out, nil
}

// resolveIdent classifies a bare identifier operand: a register name, a
// CSR name, or (falling through) an unresolved symbol for the linker.
func resolveIdent(name string) Param {
	if r, ok := RegisterByName(name); ok {
		return RegisterParam(r)
	}
	if c, ok := CsrByName(name); ok {
		return CsrParam(c)
	}
	return SymbolParam(name)
}

func parseImmediate(text string) (int32, error) {
	neg := strings.HasPrefix(text, "-")
	unsigned := strings.TrimPrefix(text, "-")
	base := 10
	if strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X") {
		base = 16
		unsigned = unsigned[2:]
	}
	v, err := strconv.ParseInt(unsigned, base, 64)
	if err != nil {
		return 0, comperr.Wrap(comperr.KindLexParse, comperr.ErrorMalformedInteger, err)
	}
	if neg {
		v = -v
	}
	return int32(v), nil
}
