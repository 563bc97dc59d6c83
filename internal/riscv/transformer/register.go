package transformer

// Register encodes the low 5 bits of a register number. Grounded on
// instruction/param_transformer/register.rs.
type Register struct{}

func (Register) BitCount() int { return 5 }

func (Register) ToBits(_ uint32, param Param) []bool {
	return bitsAt(uint32(param.Register), []int{0, 1, 2, 3, 4})
}

func (Register) FromBits(bits []bool, param *Param) {
	for i, bit := range bits {
		if bit {
			param.Register |= uint8(1) << uint(i)
		}
	}
}

func (Register) Default() Param { return Param{} }
