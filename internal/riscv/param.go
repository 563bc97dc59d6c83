// Package riscv implements the RISC-V instruction codec: a template DSL
// describing each instruction's bit layout via param transformers, a
// bidirectional assembler/disassembler built on it, and the IR-to-assembly
// emitter that drives it. Grounded on spec.md §4.10/§4.11 and the original
// backend/riscv/{instruction,param_transformer,from_ir} crate; the original
// has no Go analogue in the pack, so the template/transformer model is
// ported directly from instruction/template.rs and instruction/param.rs,
// re-expressed as idiomatic Go rather than the Rust nom-combinator style.
package riscv

import "fmt"

// ParamKind distinguishes the four shapes a Param can take.
type ParamKind int

const (
	ParamSymbol ParamKind = iota
	ParamRegister
	ParamCsr
	ParamImmediate
)

func (k ParamKind) String() string {
	switch k {
	case ParamSymbol:
		return "symbol"
	case ParamRegister:
		return "register"
	case ParamCsr:
		return "csr"
	case ParamImmediate:
		return "immediate"
	default:
		return "?"
	}
}

// Param is one operand of an instruction: an unresolved symbol, a register
// number, a CSR number, or a signed immediate. Only the field matching Kind
// is meaningful.
type Param struct {
	Kind      ParamKind
	Symbol    string
	Register  uint8
	Csr       uint16
	Immediate int32
}

func RegisterParam(r uint8) Param   { return Param{Kind: ParamRegister, Register: r} }
func CsrParam(c uint16) Param       { return Param{Kind: ParamCsr, Csr: c} }
func ImmediateParam(v int32) Param  { return Param{Kind: ParamImmediate, Immediate: v} }
func SymbolParam(name string) Param { return Param{Kind: ParamSymbol, Symbol: name} }

func (p Param) String() string {
	switch p.Kind {
	case ParamSymbol:
		return p.Symbol
	case ParamRegister:
		name, ok := RegisterName(p.Register)
		if !ok {
			return fmt.Sprintf("x%d", p.Register)
		}
		return name
	case ParamCsr:
		return fmt.Sprintf("0x%03x", p.Csr)
	case ParamImmediate:
		return fmt.Sprintf("%d", p.Immediate)
	default:
		return "?"
	}
}
