package clef

import (
	"strings"

	"come/internal/comperr"
	"come/internal/riscv"
)

// Assemble turns RISC-V assembly text (spec.md §4.10/§6: one label or
// instruction per line, `imm(reg)` memory operands) into a single-section
// CLEF object. Every label the source declares becomes a Symbol; every
// operand that resolves to neither a register nor a CSR becomes a
// SymbolParam and its instruction's offset is recorded pending. Labels
// defined anywhere in the same source (forward or backward) are resolved
// immediately — only references to symbols this file never defines
// (the other half of spec.md §6 scenario S6, `call foo` before `foo` is
// linked in) survive into the returned object's pending-symbol table.
func Assemble(source string) (*Clef, error) {
	c := New(RiscV, BareMetal)
	sec := Section{Meta: SectionMeta{Name: ".text", Placement: Linkable()}}
	pendingOrder := make([]string, 0)
	pendingByName := map[string]*PendingSymbol{}

	for lineNo, raw := range strings.Split(source, "\n") {
		line := strings.TrimRight(raw, "\r")
		parsed, err := riscv.ParseLine(line)
		if err != nil {
			return nil, comperr.Wrapf(comperr.KindLexParse, comperr.ErrorUnexpectedToken, err,
				"assembly line %d", lineNo+1)
		}
		if parsed.Label != "" {
			sec.Meta.Symbols = append(sec.Meta.Symbols, Symbol{Name: parsed.Label, Offset: uint32(len(sec.Content))})
		}
		if parsed.Inst == nil {
			continue
		}
		offset := uint32(len(sec.Content))
		word, err := riscv.Encode(*parsed.Inst, offset)
		if err != nil {
			return nil, err
		}
		sec.Content = append(sec.Content, byte(word), byte(word>>8), byte(word>>16), byte(word>>24))
		for _, p := range parsed.Inst.Params {
			if p.Kind != riscv.ParamSymbol {
				continue
			}
			ps, ok := pendingByName[p.Symbol]
			if !ok {
				ps = &PendingSymbol{Name: p.Symbol}
				pendingByName[p.Symbol] = ps
				pendingOrder = append(pendingOrder, p.Symbol)
			}
			ps.PendingInstructionOffsets = append(ps.PendingInstructionOffsets, offset)
		}
	}

	for _, name := range pendingOrder {
		sec.Meta.PendingSymbols = append(sec.Meta.PendingSymbols, *pendingByName[name])
	}

	local := make(map[string]uint32, len(sec.Meta.Symbols))
	for _, sym := range sec.Meta.Symbols {
		local[sym.Name] = sym.Offset
	}
	if err := ResolveSymbols(&sec, local, 0); err != nil {
		return nil, err
	}

	c.Sections = append(c.Sections, sec)
	return c, nil
}
