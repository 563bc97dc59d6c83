package transformer

// BitsAt encodes bits [Start,End) of an immediate, ascending (bit Start is
// the first element of the returned/consumed slice). Grounded on
// instruction/param_transformer/bits_at.rs.
type BitsAt struct {
	Start uint8
	End   uint8
}

func (b BitsAt) BitCount() int { return int(b.End - b.Start) }

func (b BitsAt) ToBits(_ uint32, param Param) []bool {
	out := make([]bool, b.BitCount())
	for i := range out {
		out[i] = bitAt(uint32(param.Immediate), b.Start+uint8(i))
	}
	return out
}

func (b BitsAt) FromBits(bits []bool, param *Param) {
	for i, bit := range bits {
		if bit {
			param.Immediate |= int32(uint32(1) << uint(b.Start+uint8(i)))
		}
	}
}

func (BitsAt) Default() Param { return Param{} }
