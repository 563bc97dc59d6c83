package clef

import "come/internal/riscv"

// ResolveSymbols patches every pending-symbol reference in sec whose name
// is present in defined, replacing the placeholder immediate at each
// recorded offset with the pc-relative distance to the resolved address.
// refBase is sec's own placement address (0 if the section is not yet
// placed, as when the assembler resolves a file's own local labels before
// the section has a load address). References whose name is absent from
// defined are left in sec.Meta.PendingSymbols for a later resolution pass
// (e.g. linking against another object).
func ResolveSymbols(sec *Section, defined map[string]uint32, refBase uint32) error {
	var remaining []PendingSymbol
	for _, ps := range sec.Meta.PendingSymbols {
		target, ok := defined[ps.Name]
		if !ok {
			remaining = append(remaining, ps)
			continue
		}
		for _, off := range ps.PendingInstructionOffsets {
			pc := refBase + off
			word := sec.wordAt(off)
			newWord, err := riscv.PatchImmediate(word, pc, int32(target)-int32(pc))
			if err != nil {
				return err
			}
			sec.setWordAt(off, newWord)
		}
	}
	sec.Meta.PendingSymbols = remaining
	return nil
}
