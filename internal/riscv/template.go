package riscv

import (
	"fmt"

	"come/internal/comperr"
	"come/internal/riscv/transformer"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// templateLexer tokenizes the template DSL: runs of bit-pattern digits and
// `{{ params[i] | transformer(args…) }}` references.
var templateLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Integer", Pattern: `[0-9]+`},
	{Name: "Bits", Pattern: `[01]+`},
	{Name: "LBrace2", Pattern: `\{\{`},
	{Name: "RBrace2", Pattern: `\}\}`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[\[\]\(\),\|]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var templateParser = participle.MustBuild[templateFile](
	participle.Lexer(templateLexer),
	participle.Elide("Whitespace"),
)

// templateFile is the participle grammar for one template string, written
// MSB-first the way instructions.spec spells it.
type templateFile struct {
	Parts []*templatePartNode `@@*`
}

type templatePartNode struct {
	Bits *string          `  @(Bits | Integer)`
	Ref  *templateRefNode `| @@`
}

type templateRefNode struct {
	Index       int              `"{{" "params" "[" @Integer "]" "|"`
	Transformer *transformerNode `@@ "}}"`
}

type transformerNode struct {
	Name string `@Ident`
	Args []int  `[ "(" @Integer ("," @Integer)* ")" ]`
}

// Part is one compiled element of a Template, already normalized to the
// template's internal LSB-first storage order.
type Part struct {
	// Bits is non-nil for a fixed bit-pattern part (LSB first).
	Bits []bool
	// Transformer is non-nil for a parameter-transformer part.
	Transformer transformer.Transformer
	ParamIndex  int
}

// Template describes one instruction mnemonic's 32-bit encoding as a
// sequence of Parts, stored LSB first internally even though the DSL is
// written MSB first (spec.md §4.10). Grounded on instruction/template.rs.
type Template struct {
	Parts []Part
}

// CompileTemplate parses a template DSL string (as found in
// instructions.spec) into a Template.
func CompileTemplate(src string) (*Template, error) {
	file, err := templateParser.ParseString("", src)
	if err != nil {
		return nil, comperr.Wrap(comperr.KindLexParse, comperr.ErrorUnexpectedToken, err)
	}

	parts := make([]Part, 0, len(file.Parts))
	for _, node := range file.Parts {
		switch {
		case node.Bits != nil:
			bits := make([]bool, len(*node.Bits))
			for i, c := range *node.Bits {
				bits[i] = c == '1'
			}
			reverse(bits)
			parts = append(parts, Part{Bits: bits})
		case node.Ref != nil:
			t, err := buildTransformer(node.Ref.Transformer)
			if err != nil {
				return nil, err
			}
			parts = append(parts, Part{Transformer: t, ParamIndex: node.Ref.Index})
		}
	}
	reverseParts(parts)
	return &Template{Parts: parts}, nil
}

func buildTransformer(n *transformerNode) (transformer.Transformer, error) {
	switch n.Name {
	case "register":
		return transformer.Register{}, nil
	case "csr":
		return transformer.Csr{}, nil
	case "branch_high":
		return transformer.BranchHigh{}, nil
	case "branch_low":
		return transformer.BranchLow{}, nil
	case "jal_form":
		return transformer.JalForm{}, nil
	case "bit_at":
		if len(n.Args) != 1 {
			return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "bit_at expects one argument")
		}
		return transformer.BitAt{Index: uint8(n.Args[0])}, nil
	case "bits_at":
		if len(n.Args) != 2 {
			return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, "bits_at expects two arguments")
		}
		return transformer.BitsAt{Start: uint8(n.Args[0]), End: uint8(n.Args[1])}, nil
	default:
		return nil, comperr.New(comperr.KindLexParse, comperr.ErrorUnexpectedToken, fmt.Sprintf("unknown param transformer %q", n.Name))
	}
}

func reverse(bits []bool) {
	for i, j := 0, len(bits)-1; i < j; i, j = i+1, j-1 {
		bits[i], bits[j] = bits[j], bits[i]
	}
}

func reverseParts(parts []Part) {
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
}

// paramBitCount returns the width a decoded immediate for paramIndex is
// sign-adjusted to: the widest bits_at end seen for that parameter across
// the template. A parameter with no bits_at part takes the width of the
// offset its transformers carry instead: 13 bits for branch_high/branch_low
// and 21 bits for jal_form. A parameter touched only by bit_at decodes to
// width 0 (value 0).
func (t *Template) paramBitCount(paramIndex int) int {
	width := 0
	fallback := 0
	for _, part := range t.Parts {
		if part.Transformer == nil || part.ParamIndex != paramIndex {
			continue
		}
		switch tr := part.Transformer.(type) {
		case transformer.BitsAt:
			if int(tr.End) > width {
				width = int(tr.End)
			}
		case transformer.BranchHigh, transformer.BranchLow:
			fallback = 13
		case transformer.JalForm:
			fallback = 21
		}
	}
	if width == 0 {
		return fallback
	}
	return width
}

func signExtend(v int32, width int) int32 {
	if width <= 0 {
		return 0
	}
	if width >= 32 {
		return v
	}
	mask := int32(1)<<uint(width) - 1
	v &= mask
	sign := int32(1) << uint(width-1)
	if v&sign != 0 {
		v -= int32(1) << uint(width)
	}
	return v
}

func toTransformerParam(p Param) transformer.Param {
	return transformer.Param{Register: p.Register, Csr: p.Csr, Immediate: p.Immediate}
}

func fromTransformerParam(kind ParamKind, tp transformer.Param) Param {
	p := Param{Kind: kind}
	p.Register = tp.Register
	p.Csr = tp.Csr
	p.Immediate = tp.Immediate
	return p
}

// Render concatenates the bit contribution of every part, in internal
// (LSB-first) order, producing the instruction word as a bit slice.
func (t *Template) Render(params []Param, address uint32) []bool {
	var bits []bool
	for _, part := range t.Parts {
		if part.Transformer == nil {
			bits = append(bits, part.Bits...)
			continue
		}
		bits = append(bits, part.Transformer.ToBits(address, toTransformerParam(params[part.ParamIndex]))...)
	}
	return bits
}

// defaultKindFor infers the Param.Kind a transformer produces, so Decode
// can tag its accumulated params correctly.
func defaultKindFor(t transformer.Transformer) ParamKind {
	switch t.(type) {
	case transformer.Register:
		return ParamRegister
	case transformer.Csr:
		return ParamCsr
	default:
		return ParamImmediate
	}
}

// Decode matches bits against the template: fixed bit-pattern parts must
// match exactly; transformer parts consume their width and accumulate into
// the indexed parameter. Returns the unconsumed remainder of bits and the
// decoded parameters (by index), or ok=false if a bit-pattern part failed
// to match.
func (t *Template) Decode(bits []bool) (rest []bool, params []Param, ok bool) {
	acc := map[int]*transformer.Param{}
	kinds := map[int]ParamKind{}
	order := []int{}

	for _, part := range t.Parts {
		if part.Transformer == nil {
			n := len(part.Bits)
			if len(bits) < n {
				return nil, nil, false
			}
			for i := 0; i < n; i++ {
				if bits[i] != part.Bits[i] {
					return nil, nil, false
				}
			}
			bits = bits[n:]
			continue
		}
		n := part.Transformer.BitCount()
		if len(bits) < n {
			return nil, nil, false
		}
		if _, seen := acc[part.ParamIndex]; !seen {
			def := part.Transformer.Default()
			acc[part.ParamIndex] = &def
			kinds[part.ParamIndex] = defaultKindFor(part.Transformer)
			order = append(order, part.ParamIndex)
		}
		part.Transformer.FromBits(bits[:n], acc[part.ParamIndex])
		bits = bits[n:]
	}

	maxIndex := -1
	for idx := range acc {
		if idx > maxIndex {
			maxIndex = idx
		}
	}
	result := make([]Param, maxIndex+1)
	for idx, tp := range acc {
		p := fromTransformerParam(kinds[idx], *tp)
		if p.Kind == ParamImmediate {
			p.Immediate = signExtend(p.Immediate, t.paramBitCount(idx))
		}
		result[idx] = p
	}
	return bits, result, true
}
