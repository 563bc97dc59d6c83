package clef

import (
	"strings"
	"testing"

	"come/internal/riscv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleResolvesLocalLabel(t *testing.T) {
	c, err := Assemble("start:\n  beq x1, x2, start\n")
	require.NoError(t, err)
	sec, ok := c.SectionByName(".text")
	require.True(t, ok)
	assert.Empty(t, sec.Meta.PendingSymbols, "local label should resolve at assemble time")
	assert.Len(t, sec.Content, 4)
}

func TestAssembleLeavesExternalSymbolPending(t *testing.T) {
	c, err := Assemble("  jal ra, foo\n")
	require.NoError(t, err)
	sec, ok := c.SectionByName(".text")
	require.True(t, ok)
	require.Len(t, sec.Meta.PendingSymbols, 1)
	assert.Equal(t, "foo", sec.Meta.PendingSymbols[0].Name)
	assert.Equal(t, []uint32{0}, sec.Meta.PendingSymbols[0].PendingInstructionOffsets)
}

// TestLinkResolvesPendingSymbol is spec.md §8 scenario S6: assembling a
// file that calls an unresolved `foo`, then linking with a file defining
// `foo` at section offset 0x20, patches the call's immediate field so the
// branch target matches 0x20 relative to its section base; reassembling
// the resulting section decodes identically.
func TestLinkResolvesPendingSymbol(t *testing.T) {
	caller, err := Assemble("  jal ra, foo\n")
	require.NoError(t, err)

	// Eight filler words (0x20 bytes) ahead of the `foo:` label.
	filler := strings.Repeat("  add x0, x0, x0\n", 8)
	definer, err := Assemble(filler + "foo:\n  jal zero, foo\n")
	require.NoError(t, err)
	definerSec, ok := definer.SectionByName(".text")
	require.True(t, ok)
	require.Equal(t, uint32(0x20), symbolOffset(t, definerSec, "foo"))

	linked, err := Link(caller, definer)
	require.NoError(t, err)

	sec, ok := linked.SectionByName(".text")
	require.True(t, ok)
	assert.Empty(t, sec.Meta.PendingSymbols)

	word := sec.wordAt(0)
	inst, err := riscv.Decode(word)
	require.NoError(t, err)
	require.Equal(t, "jal", inst.Name)
	// jal's immediate is the pc-relative distance. foo sits 0x20 into the
	// definer's part of the merged section, which starts after the caller's
	// 4 bytes: target(0x24) - pc(0).
	assert.Equal(t, int32(0x24), inst.Params[1].Immediate)

	reencoded, err := riscv.Encode(inst, 0)
	require.NoError(t, err)
	assert.Equal(t, word, reencoded, "reassembling the patched word decodes identically")
}

func TestMarshalRoundTrip(t *testing.T) {
	c, err := Assemble("start:\n  jal ra, start\n")
	require.NoError(t, err)
	data := Marshal(c)
	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, c.Architecture, back.Architecture)
	assert.Equal(t, c.OS, back.OS)
	require.Len(t, back.Sections, 1)
	assert.Equal(t, c.Sections[0].Content, back.Sections[0].Content)
	assert.Equal(t, c.Sections[0].Meta.Symbols, back.Sections[0].Meta.Symbols)
}

func TestDumpDoesNotPanicOnDataWords(t *testing.T) {
	c := New(RiscV, BareMetal)
	c.Sections = append(c.Sections, Section{
		Meta:    SectionMeta{Name: ".rodata", Placement: Linkable()},
		Content: []byte{0xff, 0xff, 0xff, 0xff},
	})
	out := Dump(c)
	assert.Contains(t, out, ".rodata")
	assert.Contains(t, out, ".word 0xffffffff")
}

func TestLinkMarksTextLoadable(t *testing.T) {
	c, err := Assemble("  jal zero, self\nself:\n")
	require.NoError(t, err)
	linked, err := Link(c)
	require.NoError(t, err)
	sec, ok := linked.SectionByName(".text")
	require.True(t, ok)
	assert.True(t, sec.Meta.Placement.Loadable)
	assert.Equal(t, uint32(0x8000_0000), sec.Meta.Placement.Address)
}

func symbolOffset(t *testing.T, sec *Section, name string) uint32 {
	t.Helper()
	for _, s := range sec.Meta.Symbols {
		if s.Name == name {
			return s.Offset
		}
	}
	t.Fatalf("symbol %s not found", name)
	return 0
}
