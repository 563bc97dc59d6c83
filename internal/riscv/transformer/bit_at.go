package transformer

// BitAt encodes a single bit of an immediate. Grounded on
// instruction/param_transformer/bit_at.rs.
type BitAt struct {
	Index uint8
}

func (b BitAt) BitCount() int { return 1 }

func (b BitAt) ToBits(_ uint32, param Param) []bool {
	return []bool{bitAt(uint32(param.Immediate), b.Index)}
}

func (b BitAt) FromBits(bits []bool, param *Param) {
	if bits[0] {
		param.Immediate |= int32(uint32(1) << uint(b.Index))
	}
}

func (BitAt) Default() Param { return Param{} }
