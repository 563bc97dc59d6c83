package riscv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileTemplateParsesBitPatternAndTransformer(t *testing.T) {
	tmpl, err := CompileTemplate("{{ params[0] | bits_at(0,5) }}100")
	require.NoError(t, err)
	require.Len(t, tmpl.Parts, 2)

	assert.Equal(t, []bool{false, false, true}, tmpl.Parts[0].Bits)
	require.NotNil(t, tmpl.Parts[1].Transformer)
	assert.Equal(t, 0, tmpl.Parts[1].ParamIndex)
}

func TestTemplateRender(t *testing.T) {
	tmpl, err := CompileTemplate("{{ params[0] | bits_at(0,5) }}100")
	require.NoError(t, err)
	bits := tmpl.Render([]Param{ImmediateParam(0b11101)}, 0)
	assert.Equal(t, []bool{false, false, true, true, false, true, true, true}, bits)
}

func TestTemplateRenderMixedParts(t *testing.T) {
	tmpl, err := CompileTemplate("{{params[0]|register}}100{{params[1]|bits_at(5,8)}}01101")
	require.NoError(t, err)
	bits := tmpl.Render([]Param{RegisterParam(0b11101), ImmediateParam(0b0010_0000)}, 0)
	assert.Equal(t, []bool{
		true, false, true, true, false, true, false, false, false, false, true, true,
		false, true, true, true,
	}, bits)
}

func TestTemplateDecodeRejectsMismatchedBitPattern(t *testing.T) {
	tmpl, err := CompileTemplate("00010111")
	require.NoError(t, err)
	_, _, ok := tmpl.Decode([]bool{true, false, false, false, true, true, true, false})
	assert.False(t, ok)
}

func TestTemplateDecodeAccumulatesAndSignExtends(t *testing.T) {
	tmpl, err := CompileTemplate("{{params[2]|bits_at(0,12)}}{{params[1]|register}}000{{params[0]|register}}0010011")
	require.NoError(t, err)
	_ = tmpl
	addiTmpl, ok, err := TemplateByMnemonic("addi")
	require.NoError(t, err)
	require.True(t, ok)

	word, err := Encode(Instruction{Name: "addi", Params: []Param{RegisterParam(5), RegisterParam(6), ImmediateParam(-1)}}, 0)
	require.NoError(t, err)

	rest, params, ok := addiTmpl.Decode(wordToBits(word))
	require.True(t, ok)
	assert.Empty(t, rest)
	require.Len(t, params, 3)
	assert.Equal(t, uint8(5), params[0].Register)
	assert.Equal(t, uint8(6), params[1].Register)
	assert.Equal(t, int32(-1), params[2].Immediate)
}
