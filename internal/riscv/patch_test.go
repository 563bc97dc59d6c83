package riscv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPatchImmediateRewritesBranchOffset exercises the exact operation the
// CLEF linker performs on a pending symbol: a beq encoded with a placeholder
// zero offset gets its branch-immediate replaced once the real target is
// known, without disturbing its registers or mnemonic.
func TestPatchImmediateRewritesBranchOffset(t *testing.T) {
	word, err := Encode(Instruction{
		Name:   "beq",
		Params: []Param{RegisterParam(1), RegisterParam(2), ImmediateParam(0)},
	}, 0)
	require.NoError(t, err)

	patched, err := PatchImmediate(word, 0, -4)
	require.NoError(t, err)

	decoded, err := Decode(patched)
	require.NoError(t, err)
	assert.Equal(t, "beq", decoded.Name)
	assert.Equal(t, uint8(1), decoded.Params[0].Register)
	assert.Equal(t, uint8(2), decoded.Params[1].Register)
	assert.Equal(t, int32(-4), decoded.Params[2].Immediate)
}

// TestPatchImmediateRewritesJalTarget covers jal, whose sole immediate is
// rendered through jal_form rather than bit_at/bits_at.
func TestPatchImmediateRewritesJalTarget(t *testing.T) {
	word, err := Encode(Instruction{
		Name:   "jal",
		Params: []Param{RegisterParam(1), ImmediateParam(0)},
	}, 0x1000)
	require.NoError(t, err)

	patched, err := PatchImmediate(word, 0x1000, 0x800)
	require.NoError(t, err)

	decoded, err := Decode(patched)
	require.NoError(t, err)
	assert.Equal(t, "jal", decoded.Name)
	assert.Equal(t, int32(0x800), decoded.Params[1].Immediate)
}

// TestPatchImmediateRejectsUnknownMnemonic covers the decode-failure branch:
// a word that doesn't match any template can't be patched.
func TestPatchImmediateRejectsUnknownMnemonic(t *testing.T) {
	_, err := PatchImmediate(0xFFFFFFFF, 0, 0)
	assert.Error(t, err)
}

// TestImmediateParamIndexRejectsAmbiguousRegisterOnlyTemplate covers the
// no-unambiguous-immediate branch directly: a template with no candidate
// immediate index (every transformer is register-or-csr-shaped) must report
// ok=false rather than silently picking one.
func TestImmediateParamIndexRejectsAmbiguousRegisterOnlyTemplate(t *testing.T) {
	tmpl, ok, err := TemplateByMnemonic("add")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok = immediateParamIndex(tmpl)
	assert.False(t, ok, "add has no immediate operand to patch")
}

// TestImmediateParamIndexFindsSoleCandidateOnLui covers lui, whose only
// non-register param is its 20-bit immediate.
func TestImmediateParamIndexFindsSoleCandidateOnLui(t *testing.T) {
	tmpl, ok, err := TemplateByMnemonic("lui")
	require.NoError(t, err)
	require.True(t, ok)

	idx, ok := immediateParamIndex(tmpl)
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}
