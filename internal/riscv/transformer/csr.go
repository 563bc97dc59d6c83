package transformer

// Csr encodes the low 12 bits of a CSR address. Grounded on
// instruction/param_transformer/csr.rs.
type Csr struct{}

func (Csr) BitCount() int { return 12 }

func (Csr) ToBits(_ uint32, param Param) []bool {
	out := make([]bool, 12)
	for i := range out {
		out[i] = bitAt(uint32(param.Csr), uint8(i))
	}
	return out
}

func (Csr) FromBits(bits []bool, param *Param) {
	for i, bit := range bits {
		if bit {
			param.Csr |= uint16(1) << uint(i)
		}
	}
}

func (Csr) Default() Param { return Param{} }
