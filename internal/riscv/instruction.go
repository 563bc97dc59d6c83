package riscv

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"come/internal/comperr"
)

//go:embed spec/instructions.spec
var instructionsSpec string

// Instruction is one decoded or about-to-be-encoded machine instruction:
// a mnemonic plus its operand list, in the order the mnemonic's template
// numbers params[i].
type Instruction struct {
	Name   string
	Params []Param
}

var (
	templateTableOnce sync.Once
	templatesByName   map[string]*Template
	templateNames     []string // sorted by mnemonic, the order Decode's first-match-wins search uses
	templateLoadErr   error
)

// buildTemplateTable parses instructions.spec once, compiling every
// mnemonic's Template. Grounded on spec.md §6's "instructions.spec: one
// line per mnemonic: name  TEMPLATE".
func buildTemplateTable() {
	templatesByName = make(map[string]*Template)
	for _, line := range strings.Split(instructionsSpec, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			continue
		}
		name := strings.TrimSpace(fields[0])
		tmpl, err := CompileTemplate(strings.TrimSpace(fields[1]))
		if err != nil {
			templateLoadErr = comperr.Wrap(comperr.KindCodec, comperr.ErrorUnknownMnemonic, err)
			return
		}
		templatesByName[name] = tmpl
		templateNames = append(templateNames, name)
	}
	sort.Strings(templateNames)
}

func loadTemplates() (map[string]*Template, error) {
	templateTableOnce.Do(buildTemplateTable)
	return templatesByName, templateLoadErr
}

// TemplateByMnemonic returns the compiled Template for name, if declared in
// instructions.spec.
func TemplateByMnemonic(name string) (*Template, bool, error) {
	tmpls, err := loadTemplates()
	if err != nil {
		return nil, false, err
	}
	t, ok := tmpls[name]
	return t, ok, nil
}

// Encode renders inst as a 32-bit instruction word at the given address.
func Encode(inst Instruction, address uint32) (uint32, error) {
	tmpl, ok, err := TemplateByMnemonic(inst.Name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, comperr.New(comperr.KindCodec, comperr.ErrorUnknownMnemonic, "unknown mnemonic "+inst.Name)
	}
	bits := tmpl.Render(inst.Params, address)
	if len(bits) != 32 {
		return 0, comperr.New(comperr.KindCodec, comperr.ErrorImmediateOutOfRange, "template for "+inst.Name+" did not render to 32 bits")
	}
	return bitsToWord(bits), nil
}

// Decode tries every known template, in mnemonic order, against word and
// returns the first match. Templates are expected to be mutually exclusive
// on their fixed bit-pattern parts (distinct opcode/funct3/funct7 combos),
// as instructions.spec's RV32I subset is.
func Decode(word uint32) (Instruction, error) {
	tmpls, err := loadTemplates()
	if err != nil {
		return Instruction{}, err
	}
	bits := wordToBits(word)
	for _, name := range templateNames {
		rest, params, ok := tmpls[name].Decode(bits)
		if ok && len(rest) == 0 {
			return Instruction{Name: name, Params: params}, nil
		}
	}
	return Instruction{}, comperr.New(comperr.KindCodec, comperr.ErrorUnrecognisedEncoding, "no template matches this encoding")
}

func bitsToWord(bits []bool) uint32 {
	var word uint32
	for i, b := range bits {
		if b {
			word |= uint32(1) << uint(i)
		}
	}
	return word
}

func wordToBits(word uint32) []bool {
	bits := make([]bool, 32)
	for i := range bits {
		bits[i] = word&(uint32(1)<<uint(i)) != 0
	}
	return bits
}
