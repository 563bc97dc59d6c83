package transformer

// BranchHigh encodes the high half of a B-type branch offset: bits
// {5..11, 12} of (immediate − address). Grounded on
// instruction/param_transformer/branch_high.rs. FromBits stores the raw
// offset bits back into Immediate without re-adding address — decoding
// yields the pc-relative displacement, matching the original's
// update_param, which likewise never reconstructs an absolute target.
type BranchHigh struct{}

func (BranchHigh) BitCount() int { return 7 }

func (BranchHigh) ToBits(address uint32, param Param) []bool {
	offset := uint32(param.Immediate - int32(address))
	out := make([]bool, 0, 7)
	for i := 5; i < 11; i++ {
		out = append(out, bitAt(offset, uint8(i)))
	}
	out = append(out, bitAt(offset, 12))
	return out
}

func (BranchHigh) FromBits(bits []bool, param *Param) {
	for i, bit := range bits[0:6] {
		if bit {
			param.Immediate |= int32(uint32(1) << uint(5+i))
		}
	}
	if bits[6] {
		param.Immediate |= int32(uint32(1) << 12)
	}
}

func (BranchHigh) Default() Param { return Param{} }
