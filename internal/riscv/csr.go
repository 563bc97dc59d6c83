package riscv

import (
	_ "embed"
	"strconv"
	"strings"
	"sync"

	"github.com/iancoleman/strcase"
)

//go:embed spec/csr.spec
var csrSpec string

var (
	csrTableOnce sync.Once
	csrByName    map[string]uint16
	csrCanonical map[uint16]string
)

// buildCsrTable parses csr.spec: each line is "name 0xHHHH". Grounded on
// instruction/param.rs's parse_csr_bytes, case-folded for the same reason
// registers.go folds register aliases.
func buildCsrTable() {
	csrByName = make(map[string]uint16)
	csrCanonical = make(map[uint16]string)
	for _, line := range strings.Split(csrSpec, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, addr, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		addr = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(addr), "0x"))
		value, err := strconv.ParseUint(addr, 16, 16)
		if err != nil {
			continue
		}
		csrByName[strcase.ToSnake(strings.TrimSpace(name))] = uint16(value)
		if _, exists := csrCanonical[uint16(value)]; !exists {
			csrCanonical[uint16(value)] = strings.TrimSpace(name)
		}
	}
}

// CsrByName resolves a CSR name to its 12-bit address.
func CsrByName(name string) (uint16, bool) {
	csrTableOnce.Do(buildCsrTable)
	v, ok := csrByName[strcase.ToSnake(name)]
	return v, ok
}

// CsrName returns the canonical disassembly spelling of CSR address c, if
// declared in csr.spec.
func CsrName(c uint16) (string, bool) {
	csrTableOnce.Do(buildCsrTable)
	name, ok := csrCanonical[c]
	return name, ok
}
