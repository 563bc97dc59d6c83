package comperr

// Error codes for the come toolchain.
//
// Error code ranges:
// E0001-E0099: Lex/parse errors (IR text or assembly text)
// E0100-E0199: Semantic/IR-invariant errors (generator bugs, not user input)
// E0200-E0299: RISC-V codec errors (assembler/disassembler)
// E0300-E0399: CFG/dominance diagnostics (irreducible input)
// E0400-E0499: Object I/O errors (CLEF read/write/link)
// W0001-W0099: Warning codes (W prefix)

const (
	// E0001: Unexpected token while lexing or parsing IR/assembly text.
	ErrorUnexpectedToken = "E0001"

	// E0002: Reference to a basic block name that was never declared.
	ErrorUndefinedLabel = "E0002"

	// E0003: Integer literal out of the range the grammar accepts.
	ErrorMalformedInteger = "E0003"

	// E0100: Use of a register with no reaching definition.
	ErrorUndefinedRegister = "E0100"

	// E0101: A reachable, non-entry block has no terminator.
	ErrorMissingTerminator = "E0101"

	// E0102: A phi's source labels don't match its block's predecessors.
	ErrorPhiSourceMismatch = "E0102"

	// E0103: A register has more than one defining statement.
	ErrorMultipleDefinitions = "E0103"

	// E0104: CLI target or pass name the toolchain doesn't implement.
	ErrorUnsupportedTarget = "E0104"

	// E0200: Instruction mnemonic not present in any loaded template.
	ErrorUnknownMnemonic = "E0200"

	// E0201: A parsed parameter doesn't match the kind the transformer expects.
	ErrorParamKindMismatch = "E0201"

	// E0202: An immediate doesn't fit the field width it's encoded into.
	ErrorImmediateOutOfRange = "E0202"

	// E0203: No template matched a bit pattern during disassembly.
	ErrorUnrecognisedEncoding = "E0203"

	// E0300: The analyzed subgraph has more than one entry and is irreducible.
	ErrorIrreducibleCFG = "E0300"

	// E0400: A CLEF section references a pending symbol that never resolved.
	ErrorUnresolvedSymbol = "E0400"

	// E0401: Malformed or truncated CLEF binary payload.
	ErrorMalformedObject = "E0401"

	// E0402: Reading or writing a file the CLI was pointed at failed.
	ErrorIOFailure = "E0402"

	// W0001: FixIrreducible left the CFG unchanged.
	WarningIrreducibleUnfixed = "W0001"
)

// Description returns a human-readable description of an error code.
func Description(code string) string {
	switch code {
	case ErrorUnexpectedToken:
		return "unexpected token"
	case ErrorUndefinedLabel:
		return "reference to an undeclared basic block"
	case ErrorMalformedInteger:
		return "integer literal could not be parsed"
	case ErrorUndefinedRegister:
		return "register has no reaching definition"
	case ErrorMissingTerminator:
		return "basic block has no terminator"
	case ErrorPhiSourceMismatch:
		return "phi sources do not match the block's predecessors"
	case ErrorMultipleDefinitions:
		return "register is defined more than once"
	case ErrorUnsupportedTarget:
		return "unsupported CLI target or pass name"
	case ErrorUnknownMnemonic:
		return "unknown instruction mnemonic"
	case ErrorParamKindMismatch:
		return "parameter has the wrong kind for this transformer"
	case ErrorImmediateOutOfRange:
		return "immediate does not fit in the encoded field"
	case ErrorUnrecognisedEncoding:
		return "no instruction template matches this bit pattern"
	case ErrorIrreducibleCFG:
		return "control-flow subgraph is irreducible"
	case ErrorUnresolvedSymbol:
		return "pending symbol was never resolved"
	case ErrorMalformedObject:
		return "CLEF object is malformed or truncated"
	case ErrorIOFailure:
		return "file read or write failed"
	case WarningIrreducibleUnfixed:
		return "irreducible control flow could not be repaired"
	default:
		return "unknown error code"
	}
}

// IsWarning reports whether code names a warning rather than a fatal error.
func IsWarning(code string) bool {
	return len(code) > 0 && code[0] == 'W'
}

// Category returns the broad phase an error code belongs to.
func Category(code string) string {
	switch {
	case code >= "E0001" && code < "E0100":
		return "lex/parse"
	case code >= "E0100" && code < "E0200":
		return "semantic"
	case code >= "E0200" && code < "E0300":
		return "codec"
	case code >= "E0300" && code < "E0400":
		return "cfg"
	case code >= "E0400" && code < "E0500":
		return "object-io"
	case len(code) > 0 && code[0] == 'W':
		return "warning"
	default:
		return "unknown"
	}
}
