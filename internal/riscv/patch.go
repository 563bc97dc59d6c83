package riscv

import (
	"come/internal/comperr"
	"come/internal/riscv/transformer"
)

// immediateParamIndex returns the sole parameter index that tmpl renders
// exclusively through immediate-shaped transformers (bit_at, bits_at,
// branch_high, branch_low, jal_form) — never register or csr. Every
// mnemonic the linker ever needs to patch (branches, jal, lui/auipc,
// load/store offsets) carries exactly one such index, so ok is false only
// for templates with zero or more than one candidate, which the linker
// cannot patch unambiguously.
func immediateParamIndex(tmpl *Template) (int, bool) {
	candidates := map[int]bool{}
	excluded := map[int]bool{}
	for _, part := range tmpl.Parts {
		if part.Transformer == nil {
			continue
		}
		switch part.Transformer.(type) {
		case transformer.Register, transformer.Csr:
			excluded[part.ParamIndex] = true
		default:
			candidates[part.ParamIndex] = true
		}
	}
	idx := -1
	count := 0
	for i := range candidates {
		if excluded[i] {
			continue
		}
		idx = i
		count++
	}
	if count != 1 {
		return 0, false
	}
	return idx, true
}

// PatchImmediate rewrites the sole immediate operand of the instruction
// word encoded at pc, replacing it with newImmediate and re-rendering the
// word. It is how the CLEF linker resolves a pending symbol: the word was
// originally encoded with a placeholder (zero) immediate for an
// unresolved symbol reference, and this recovers which param transformer
// produced that placeholder by decoding the word's own mnemonic and
// shape, then re-encodes with the now-known target offset. Grounded on
// spec.md §6's "patching the instruction at each recorded offset using
// the param transformer that originally produced the placeholder".
// newImmediate is the pc-relative displacement to the target; for a branch,
// whose branch_high/branch_low transformers subtract pc while rendering, pc
// is added back first so the encoded offset equals newImmediate.
func PatchImmediate(word uint32, pc uint32, newImmediate int32) (uint32, error) {
	inst, err := Decode(word)
	if err != nil {
		return 0, err
	}
	tmpl, ok, err := TemplateByMnemonic(inst.Name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, comperr.New(comperr.KindCodec, comperr.ErrorUnknownMnemonic, "unknown mnemonic "+inst.Name)
	}
	idx, ok := immediateParamIndex(tmpl)
	if !ok {
		return 0, comperr.New(comperr.KindCodec, comperr.ErrorParamKindMismatch,
			"instruction "+inst.Name+" has no unambiguous immediate operand to patch")
	}
	imm := newImmediate
	for _, part := range tmpl.Parts {
		switch part.Transformer.(type) {
		case transformer.BranchHigh, transformer.BranchLow:
			if part.ParamIndex == idx {
				imm = newImmediate + int32(pc)
			}
		}
	}
	inst.Params[idx] = ImmediateParam(imm)
	return Encode(inst, pc)
}
