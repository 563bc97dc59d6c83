package clef

import "come/internal/comperr"

// textLoadAddress is where the linker places the final, merged .text
// section, per spec.md §6 ("mark .text loadable at 0x8000_0000").
const textLoadAddress = 0x8000_0000

// Link concatenates like-named sections across objs in declaration order,
// rebasing every symbol and pending-symbol offset by the length of content
// already written to that merged section, marks the merged ".text" section
// loadable at textLoadAddress, and resolves every pending symbol whose name
// now matches a symbol defined somewhere in the linked object — patching
// the referencing instruction via the param transformer that produced its
// placeholder (riscv.PatchImmediate, through ResolveSymbols). A pending
// symbol left unresolved after this is a fatal link error.
func Link(objs ...*Clef) (*Clef, error) {
	out := New(RiscV, BareMetal)

	order := make([]string, 0, 4)
	merged := map[string]*Section{}
	for _, obj := range objs {
		for _, s := range obj.Sections {
			m, ok := merged[s.Meta.Name]
			if !ok {
				m = &Section{Meta: SectionMeta{Name: s.Meta.Name, Placement: Linkable()}}
				merged[s.Meta.Name] = m
				order = append(order, s.Meta.Name)
			}
			base := uint32(len(m.Content))
			m.Content = append(m.Content, s.Content...)
			for _, sym := range s.Meta.Symbols {
				m.Meta.Symbols = append(m.Meta.Symbols, Symbol{Name: sym.Name, Offset: sym.Offset + base})
			}
			for _, ps := range s.Meta.PendingSymbols {
				offs := make([]uint32, len(ps.PendingInstructionOffsets))
				for i, o := range ps.PendingInstructionOffsets {
					offs[i] = o + base
				}
				m.Meta.PendingSymbols = append(m.Meta.PendingSymbols, PendingSymbol{
					Name: ps.Name, PendingInstructionOffsets: offs,
				})
			}
		}
	}

	for _, name := range order {
		out.Sections = append(out.Sections, *merged[name])
	}
	if text, ok := out.SectionByName(".text"); ok {
		text.Meta.Placement = LoadableAt(textLoadAddress)
	}

	defined := map[string]uint32{}
	for _, sec := range out.Sections {
		base := sec.Meta.Placement.Address
		for _, sym := range sec.Meta.Symbols {
			defined[sym.Name] = base + sym.Offset
		}
	}

	for i := range out.Sections {
		sec := &out.Sections[i]
		if err := ResolveSymbols(sec, defined, sec.Meta.Placement.Address); err != nil {
			return nil, err
		}
	}

	for _, sec := range out.Sections {
		for _, ps := range sec.Meta.PendingSymbols {
			if len(ps.PendingInstructionOffsets) > 0 {
				return out, comperr.New(comperr.KindObjectIO, comperr.ErrorUnresolvedSymbol,
					"symbol "+ps.Name+" was never defined")
			}
		}
	}
	return out, nil
}
