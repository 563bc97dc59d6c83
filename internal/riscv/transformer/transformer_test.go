package transformer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterRoundTrip(t *testing.T) {
	r := Register{}
	assert.Equal(t, []bool{true, true, true, true, true}, r.ToBits(0, Param{Register: 0x1f}))

	var p Param
	r.FromBits([]bool{true, true, true, true, true}, &p)
	assert.Equal(t, uint8(0x1f), p.Register)
}

func TestCsrRoundTrip(t *testing.T) {
	c := Csr{}
	bits := c.ToBits(0, Param{Csr: 0x7c0})
	assert.Equal(t, []bool{false, false, false, false, false, false, true, true, true, true, true, false}, bits)

	var p Param
	c.FromBits(bits, &p)
	assert.Equal(t, uint16(0x7c0), p.Csr)
}

func TestBitAt(t *testing.T) {
	b0 := BitAt{Index: 0}
	assert.Equal(t, []bool{false}, b0.ToBits(0, Param{Immediate: 0b1010}))
	b1 := BitAt{Index: 1}
	assert.Equal(t, []bool{true}, b1.ToBits(0, Param{Immediate: 0b1010}))
	b7 := BitAt{Index: 7}
	assert.Equal(t, []bool{false}, b7.ToBits(0, Param{Immediate: 0b1010}))

	var p Param
	BitAt{Index: 30}.FromBits([]bool{true}, &p)
	assert.Equal(t, int32(0x40000000), p.Immediate)

	var neg Param
	BitAt{Index: 31}.FromBits([]bool{true}, &neg)
	assert.Equal(t, int32(-0x8000_0000), neg.Immediate)
}

func TestBitsAt(t *testing.T) {
	param := Param{Immediate: 0b1010}
	assert.Equal(t, []bool{false, true}, BitsAt{Start: 0, End: 2}.ToBits(0, param))
	assert.Equal(t, []bool{true, false}, BitsAt{Start: 1, End: 3}.ToBits(0, param))
	assert.Equal(t, []bool{true, false, false, false, false}, BitsAt{Start: 3, End: 8}.ToBits(0, param))

	var p Param
	BitsAt{Start: 0, End: 3}.FromBits([]bool{true, false, true}, &p)
	assert.Equal(t, int32(0b101), p.Immediate)

	var p2 Param
	BitsAt{Start: 24, End: 32}.FromBits([]bool{true, false, true, false, false, false, false, false}, &p2)
	assert.Equal(t, int32(0b0000_0101_0000_0000_0000_0000_0000_0000), p2.Immediate)
}

func TestBranchHigh(t *testing.T) {
	bh := BranchHigh{}
	assert.Equal(t, []bool{true, true, true, true, true, true, true}, bh.ToBits(0, Param{Immediate: -4}))
	assert.Equal(t, []bool{false, false, false, false, false, false, false}, bh.ToBits(0, Param{Immediate: 4}))
	assert.Equal(t, []bool{false, false, true, true, false, false, false}, bh.ToBits(0, Param{Immediate: 0x998}))

	var p Param
	bh.FromBits([]bool{false, false, true, true, false, false, false}, &p)
	assert.Equal(t, int32(0b0001_1000_0000), p.Immediate)
}

func TestBranchLow(t *testing.T) {
	bl := BranchLow{}
	assert.Equal(t, []bool{true, false, true, true, true}, bl.ToBits(0, Param{Immediate: -4}))
	assert.Equal(t, []bool{false, false, true, false, false}, bl.ToBits(0, Param{Immediate: 4}))
	assert.Equal(t, []bool{true, false, false, true, true}, bl.ToBits(0, Param{Immediate: 0x998}))

	var p Param
	bl.FromBits([]bool{true, false, true, true, true}, &p)
	assert.Equal(t, int32(0b1000_0001_1100), p.Immediate)
}

func TestJalForm(t *testing.T) {
	jf := JalForm{}
	bits := jf.ToBits(0, Param{Immediate: 0x998})
	assert.Equal(t, []bool{
		false, false, false, false, false, false, false, false, true, false, false, true,
		true, false, false, true, true, false, false, false,
	}, bits)

	var p Param
	jf.FromBits(bits, &p)
	assert.Equal(t, int32(0b0000_0000_1001_1001_1000), p.Immediate)
}
