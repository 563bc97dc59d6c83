package riscv

import (
	_ "embed"
	"strconv"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
)

//go:embed spec/registers.spec
var registersSpec string

var (
	registerTableOnce sync.Once
	registerByName    map[string]uint8
	registerCanonical map[uint8]string
	registerAbi       map[uint8]string
)

// buildRegisterTable parses registers.spec: each line is "index
// name,alias,…". The first name on the line is its canonical (disassembly)
// spelling; every name, including aliases, resolves to the index. Grounded
// on instruction/param.rs's parse_register_bytes, with one deliberate
// deviation: lookups are case-folded through strcase.ToSnake so "FP"/"Fp"
// resolve the same as "fp" — the original is case-sensitive, which spec.md
// §9 flags as an open question this port resolves in favor of the
// conventional assembler behavior.
func buildRegisterTable() {
	registerByName = make(map[string]uint8)
	registerCanonical = make(map[uint8]string)
	registerAbi = make(map[uint8]string)
	for _, line := range strings.Split(registersSpec, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		index, names, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		value, err := strconv.ParseUint(strings.TrimSpace(index), 10, 8)
		if err != nil {
			continue
		}
		for i, name := range strings.Split(names, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			registerByName[strcase.ToSnake(name)] = uint8(value)
			switch i {
			case 0:
				registerCanonical[uint8(value)] = name
			case 1:
				registerAbi[uint8(value)] = name
			}
		}
	}
}

// RegisterByName resolves an assembler register name (any alias, any
// case) to its register index.
func RegisterByName(name string) (uint8, bool) {
	registerTableOnce.Do(buildRegisterTable)
	v, ok := registerByName[strcase.ToSnake(name)]
	return v, ok
}

// RegisterName returns the canonical disassembly spelling of register
// index r, if it is declared in registers.spec.
func RegisterName(r uint8) (string, bool) {
	registerTableOnce.Do(buildRegisterTable)
	name, ok := registerCanonical[r]
	return name, ok
}

// AbiName returns the calling-convention spelling of register index r
// (t0, a0, sp, ra, …) — the form the emitter writes into generated
// assembly text, as distinct from RegisterName's canonical xN form used
// by the disassembler.
func AbiName(r uint8) (string, bool) {
	registerTableOnce.Do(buildRegisterTable)
	name, ok := registerAbi[r]
	return name, ok
}
