package clef

import (
	"encoding/binary"
	"fmt"
	"strings"

	"come/internal/riscv"
)

// Dump renders c the way clefviewer does: architecture/OS header, then per
// section its placement, symbol table, pending-symbol table, and every
// instruction word disassembled to text. A word that matches no known
// template prints as a raw hex word rather than aborting the dump, since a
// data section's bytes are never instructions.
func Dump(c *Clef) string {
	var out strings.Builder
	fmt.Fprintf(&out, "architecture: %s\n", c.Architecture)
	fmt.Fprintf(&out, "os: %s\n", c.OS)
	for _, s := range c.Sections {
		fmt.Fprintf(&out, "section: %s\n", s.Meta.Name)
		fmt.Fprintf(&out, "placement: %s\n", s.Meta.Placement)
		out.WriteString("symbols:\n")
		for _, sym := range s.Meta.Symbols {
			fmt.Fprintf(&out, "  %s\n", sym)
		}
		out.WriteString("pending symbols:\n")
		for _, ps := range s.Meta.PendingSymbols {
			fmt.Fprintf(&out, "  %s:\n", ps.Name)
			for _, off := range ps.PendingInstructionOffsets {
				fmt.Fprintf(&out, "    0x%08x\n", off)
			}
		}
		out.WriteString("content:\n")
		for off := 0; off+4 <= len(s.Content); off += 4 {
			word := binary.LittleEndian.Uint32(s.Content[off : off+4])
			inst, err := riscv.Decode(word)
			if err != nil {
				fmt.Fprintf(&out, "  0x%08x: .word 0x%08x\n", off, word)
				continue
			}
			fmt.Fprintf(&out, "  0x%08x: %s\n", off, formatInstruction(inst))
		}
	}
	return out.String()
}

func formatInstruction(inst riscv.Instruction) string {
	parts := make([]string, len(inst.Params))
	for i, p := range inst.Params {
		parts[i] = p.String()
	}
	if len(parts) == 0 {
		return inst.Name
	}
	return inst.Name + " " + strings.Join(parts, ", ")
}
