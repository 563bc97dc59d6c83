// Package transformer implements the seven param transformers of the
// RISC-V instruction codec (spec.md §4.10): each maps an instruction
// parameter to a fixed-width slice of bits (LSB first) and back. Grounded
// on the original instruction/param_transformer/*.rs files, one Go file per
// Rust source file, re-expressed without the bitvec crate (Go's corpus
// carries no equivalent third-party bit-vector library this pack wires in
// elsewhere, so plain []bool slices — indexed exactly like the original's
// Lsb0 bit views — are the natural stand-in; see DESIGN.md).
package transformer

// Param is the minimal operand surface a transformer needs: a register
// number, a CSR number, or an immediate. It mirrors riscv.Param without
// importing it, so this package has no dependency on the parent package.
type Param struct {
	Register  uint8
	Csr       uint16
	Immediate int32
}

// Transformer maps one instruction parameter to/from a fixed-width run of
// bits within the instruction word.
type Transformer interface {
	// BitCount is the fixed width of bits this transformer consumes.
	BitCount() int
	// ToBits renders param's value as BitCount bits, LSB first. address is
	// the instruction's own program counter, needed by pc-relative
	// transformers (BranchHigh, BranchLow).
	ToBits(address uint32, param Param) []bool
	// FromBits folds BitCount bits (LSB first) into param, accumulating
	// with whatever the param already holds (a template may apply several
	// transformers to the same parameter index).
	FromBits(bits []bool, param *Param)
	// Default is the zero value FromBits starts accumulating into the
	// first time a parameter index is encountered.
	Default() Param
}

func bitAt(n uint32, i uint8) bool {
	return n&(uint32(1)<<i) != 0
}

func bitsAt(n uint32, indices []int) []bool {
	out := make([]bool, len(indices))
	for i, idx := range indices {
		out[i] = bitAt(n, uint8(idx))
	}
	return out
}
