// Package ir implements the typed, three-address SSA intermediate
// representation: its data model, textual format, in-place edit batches,
// and the analyses/optimizations layered on top of it in the ir/analysis
// and ir/optimize subpackages.
package ir

import "fmt"

// Type is the sum type of value types the IR tracks: Integer, Address,
// StructRef, and None (unit). Each variant has a textual form used by the
// parser/printer (§6 of the grammar): iN/uN, address, identifier, "()".
type Type interface {
	fmt.Stringer
	isType()
	// Equal reports structural equality, used by phi/SSA invariant checks.
	Equal(Type) bool
}

// IntegerType is a fixed-width signed or unsigned integer.
type IntegerType struct {
	Signed bool
	Width  int
}

func (IntegerType) isType() {}

func (t IntegerType) String() string {
	if t.Signed {
		return fmt.Sprintf("i%d", t.Width)
	}
	return fmt.Sprintf("u%d", t.Width)
}

func (t IntegerType) Equal(other Type) bool {
	o, ok := other.(IntegerType)
	return ok && o.Signed == t.Signed && o.Width == t.Width
}

// AddressType is an opaque pointer-sized value.
type AddressType struct{}

func (AddressType) isType() {}
func (AddressType) String() string { return "address" }
func (AddressType) Equal(other Type) bool {
	_, ok := other.(AddressType)
	return ok
}

// StructRefType names a struct whose layout is resolved in the process-wide
// struct table (internal/ir.StructTable).
type StructRefType struct {
	Name string
}

func (StructRefType) isType() {}
func (t StructRefType) String() string { return t.Name }
func (t StructRefType) Equal(other Type) bool {
	o, ok := other.(StructRefType)
	return ok && o.Name == t.Name
}

// NoneType is the unit type, the return type of functions with no result.
type NoneType struct{}

func (NoneType) isType() {}
func (NoneType) String() string { return "()" }
func (NoneType) Equal(other Type) bool {
	_, ok := other.(NoneType)
	return ok
}

// StructField is one field of a struct layout, in declaration order.
type StructField struct {
	Name string
	Type Type
}

// StructLayout describes one registered struct's own fields and the
// computed, little-endian, word-aligned byte offset of each, in declaration
// order. A field of struct type occupies a single contiguous span sized by
// its own struct's total size; it is not flattened into this layout's own
// offsets. A LoadField/SetField chain into a nested struct is resolved one
// level at a time, descending into each level's own registered StructLayout
// (see §9's LoadField/SetField layout decision, and
// internal/riscv/emit.go's emitLoadField/emitSetField).
type StructLayout struct {
	Name       string
	Fields     []StructField
	offsets    []int
	size       int
}

// wordSize is the RISC-V RV32 word: the emitter's lw/sw only ever move a
// single 4-byte word, so that is both an address's size and a struct's
// alignment/padding granularity (spec.md §9).
const wordSize = 4

// TypeSize returns the size in bytes of a value of type t, consulting the
// struct table for StructRefType. Integers round up to the next whole byte;
// Address and pointers occupy one word.
func TypeSize(t Type, structs *StructTable) int {
	switch v := t.(type) {
	case IntegerType:
		return (v.Width + 7) / 8
	case AddressType:
		return wordSize
	case NoneType:
		return 0
	case StructRefType:
		layout := structs.Lookup(v.Name)
		return layout.size
	default:
		return wordSize
	}
}

// StructTable is the process-wide, append-only table of struct layouts
// referenced by StructRefType. It is populated once by the generator and
// read thereafter; per spec.md §5 it is one of the three process-wide
// read-only name tables (alongside the RISC-V register and CSR tables).
type StructTable struct {
	byName map[string]*StructLayout
}

// NewStructTable creates an empty table.
func NewStructTable() *StructTable {
	return &StructTable{byName: make(map[string]*StructLayout)}
}

// Register computes and stores the layout for a struct given its fields in
// declaration order. Fields are laid out little-endian and word-aligned:
// each field starts at the next multiple of its own size (capped at
// wordSize), matching the emitter's load/store granularity.
func (t *StructTable) Register(name string, fields []StructField) *StructLayout {
	layout := &StructLayout{Name: name, Fields: fields}
	offset := 0
	for _, f := range fields {
		size := TypeSize(f.Type, t)
		align := size
		if align > wordSize {
			align = wordSize
		}
		if align > 0 && offset%align != 0 {
			offset += align - offset%align
		}
		layout.offsets = append(layout.offsets, offset)
		offset += size
	}
	if offset%wordSize != 0 {
		offset += wordSize - offset%wordSize
	}
	layout.size = offset
	t.byName[name] = layout
	return layout
}

// Lookup returns the layout registered under name, or nil if absent.
func (t *StructTable) Lookup(name string) *StructLayout {
	return t.byName[name]
}

// FieldOffset returns the byte offset of the field at index within this
// struct, relative to this struct's own base address. A SetField.FieldChain
// spanning nested structs is resolved by calling this once per step,
// against each step's own struct layout (see internal/riscv/emit.go's
// emitLoadField/emitSetField).
func (l *StructLayout) FieldOffset(index int) int {
	return l.offsets[index]
}

// FieldType returns the type of the field at index.
func (l *StructLayout) FieldType(index int) Type {
	return l.Fields[index].Type
}
