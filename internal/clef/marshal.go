package clef

import (
	"bytes"
	"encoding/binary"
	"io"

	"come/internal/comperr"
)

// Marshal serializes c to CLEF's binary form: fixed-width little-endian
// integers throughout, matching spec.md §6's "Header: architecture tag,
// OS tag. Sections: each has a meta {...} and a bitvector content." No
// third-party fixed-int binary codec appears anywhere in the retrieved
// pack (see DESIGN.md); encoding/binary implements exactly the
// little-endian fixed-int scheme spec.md names, so it is used directly
// rather than inventing a framing of our own.
func Marshal(c *Clef) []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(c.Architecture))
	buf.WriteByte(byte(c.OS))
	writeU32(&buf, uint32(len(c.Sections)))
	for _, s := range c.Sections {
		writeString(&buf, s.Meta.Name)
		if s.Meta.Placement.Loadable {
			buf.WriteByte(1)
			writeU32(&buf, s.Meta.Placement.Address)
		} else {
			buf.WriteByte(0)
		}
		writeU32(&buf, uint32(len(s.Meta.Symbols)))
		for _, sym := range s.Meta.Symbols {
			writeString(&buf, sym.Name)
			writeU32(&buf, sym.Offset)
		}
		writeU32(&buf, uint32(len(s.Meta.PendingSymbols)))
		for _, ps := range s.Meta.PendingSymbols {
			writeString(&buf, ps.Name)
			writeU32(&buf, uint32(len(ps.PendingInstructionOffsets)))
			for _, off := range ps.PendingInstructionOffsets {
				writeU32(&buf, off)
			}
		}
		writeU32(&buf, uint32(len(s.Content)))
		buf.Write(s.Content)
	}
	return buf.Bytes()
}

// Unmarshal parses the binary form Marshal produces.
func Unmarshal(data []byte) (*Clef, error) {
	r := bytes.NewReader(data)
	archByte, err := r.ReadByte()
	if err != nil {
		return nil, malformed(err)
	}
	osByte, err := r.ReadByte()
	if err != nil {
		return nil, malformed(err)
	}
	c := &Clef{Architecture: Architecture(archByte), OS: OS(osByte)}
	sectionCount, err := readU32(r)
	if err != nil {
		return nil, malformed(err)
	}
	for i := uint32(0); i < sectionCount; i++ {
		var s Section
		s.Meta.Name, err = readString(r)
		if err != nil {
			return nil, malformed(err)
		}
		loadableByte, err := r.ReadByte()
		if err != nil {
			return nil, malformed(err)
		}
		if loadableByte != 0 {
			addr, err := readU32(r)
			if err != nil {
				return nil, malformed(err)
			}
			s.Meta.Placement = LoadableAt(addr)
		}
		symCount, err := readU32(r)
		if err != nil {
			return nil, malformed(err)
		}
		for j := uint32(0); j < symCount; j++ {
			name, err := readString(r)
			if err != nil {
				return nil, malformed(err)
			}
			offset, err := readU32(r)
			if err != nil {
				return nil, malformed(err)
			}
			s.Meta.Symbols = append(s.Meta.Symbols, Symbol{Name: name, Offset: offset})
		}
		pendingCount, err := readU32(r)
		if err != nil {
			return nil, malformed(err)
		}
		for j := uint32(0); j < pendingCount; j++ {
			name, err := readString(r)
			if err != nil {
				return nil, malformed(err)
			}
			offCount, err := readU32(r)
			if err != nil {
				return nil, malformed(err)
			}
			offs := make([]uint32, offCount)
			for k := range offs {
				offs[k], err = readU32(r)
				if err != nil {
					return nil, malformed(err)
				}
			}
			s.Meta.PendingSymbols = append(s.Meta.PendingSymbols, PendingSymbol{Name: name, PendingInstructionOffsets: offs})
		}
		contentLen, err := readU32(r)
		if err != nil {
			return nil, malformed(err)
		}
		s.Content = make([]byte, contentLen)
		if _, err := io.ReadFull(r, s.Content); err != nil {
			return nil, malformed(err)
		}
		c.Sections = append(c.Sections, s)
	}
	return c, nil
}

func malformed(err error) error {
	return comperr.Wrap(comperr.KindObjectIO, comperr.ErrorMalformedObject, err)
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func readU32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
