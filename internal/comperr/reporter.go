// Package comperr is the shared error vocabulary for the come toolchain:
// lex/parse diagnostics with Rust-style caret formatting, and the fatal,
// Kind-tagged errors passes return on semantic, codec, and object-I/O
// failures.
package comperr

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	pkgerrors "github.com/pkg/errors"
)

// Position locates a point in source or assembly text.
type Position struct {
	Filename string
	Line     int
	Column   int
}

// Level represents the severity of a diagnostic.
type Level string

const (
	Error   Level = "error"
	Warning Level = "warning"
	Note    Level = "note"
	Help    Level = "help"
)

// Diagnostic is a structured, positioned error with optional suggestions,
// mirroring the teacher's CompilerError but positioned against IR/assembly
// text rather than `come` source.
type Diagnostic struct {
	Level       Level
	Code        string
	Message     string
	Position    Position
	Length      int
	Suggestions []Suggestion
	Notes       []string
	HelpText    string
}

// Suggestion is a proposed fix attached to a Diagnostic.
type Suggestion struct {
	Message     string
	Replacement string
}

// Reporter formats Diagnostics against a snapshot of the offending text.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a Reporter for the given named text.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{filename: filename, lines: strings.Split(source, "\n")}
}

// Format renders a Diagnostic with Rust-like styling and suggestions.
func (r *Reporter) Format(d Diagnostic) string {
	var out strings.Builder

	levelColor := levelColor(d.Level)
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	if d.Code != "" {
		out.WriteString(fmt.Sprintf("%s[%s]: %s\n", levelColor(string(d.Level)), d.Code, d.Message))
	} else {
		out.WriteString(fmt.Sprintf("%s: %s\n", levelColor(string(d.Level)), d.Message))
	}

	width := lineNumberWidth(d.Position.Line)
	indent := strings.Repeat(" ", width)

	out.WriteString(fmt.Sprintf("%s %s %s:%d:%d\n", indent, dim("-->"), r.filename, d.Position.Line, d.Position.Column))
	out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))

	if d.Position.Line > 1 && d.Position.Line-1 < len(r.lines) {
		out.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, d.Position.Line-1)), dim("│"), r.lines[d.Position.Line-2]))
	}

	if d.Position.Line > 0 && d.Position.Line <= len(r.lines) {
		out.WriteString(fmt.Sprintf("%s %s %s\n",
			bold(fmt.Sprintf("%*d", width, d.Position.Line)), dim("│"), r.lines[d.Position.Line-1]))
		out.WriteString(fmt.Sprintf("%s %s %s\n", indent, dim("│"), marker(d.Position.Column, d.Length, d.Level)))
	}

	if d.Position.Line < len(r.lines) {
		out.WriteString(fmt.Sprintf("%s %s %s\n",
			dim(fmt.Sprintf("%*d", width, d.Position.Line+1)), dim("│"), r.lines[d.Position.Line]))
	}

	if len(d.Suggestions) > 0 {
		out.WriteString(fmt.Sprintf("%s %s\n", indent, dim("│")))
		cyan := color.New(color.FgCyan).SprintFunc()
		for i, s := range d.Suggestions {
			if i == 0 {
				out.WriteString(fmt.Sprintf("%s %s %s: %s\n", indent, cyan("help"), cyan("try"), s.Message))
			} else {
				out.WriteString(fmt.Sprintf("%s %s %s\n", indent, cyan("    "), s.Message))
			}
			if s.Replacement != "" {
				replacement := strings.ReplaceAll(s.Replacement, "\n", fmt.Sprintf("\n%s %s ", indent, dim("│")))
				out.WriteString(fmt.Sprintf("%s %s %s\n", indent, cyan("│"), cyan(replacement)))
			}
		}
	}

	for _, note := range d.Notes {
		blue := color.New(color.FgBlue).SprintFunc()
		out.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), blue("note:"), note))
	}

	if d.HelpText != "" {
		green := color.New(color.FgGreen).SprintFunc()
		out.WriteString(fmt.Sprintf("%s %s %s %s\n", indent, dim("│"), green("help:"), d.HelpText))
	}

	out.WriteString("\n")
	return out.String()
}

func levelColor(level Level) func(...interface{}) string {
	switch level {
	case Error:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case Warning:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	case Note:
		return color.New(color.FgBlue, color.Bold).SprintFunc()
	case Help:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func marker(column, length int, level Level) string {
	if length <= 0 {
		length = 1
	}
	spaces := strings.Repeat(" ", maxInt(0, column-1))
	markerColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if level == Warning {
		markerColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	return spaces + markerColor(strings.Repeat("^", length))
}

func lineNumberWidth(line int) int {
	width := len(fmt.Sprintf("%d", line))
	if width < 3 {
		width = 3
	}
	return width
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Kind classifies a fatal compiler error per spec.md §7.
type Kind int

const (
	// KindLexParse covers IR-text or assembly-text lexing/parsing failures.
	KindLexParse Kind = iota
	// KindSemantic covers IR invariant violations: generator bugs, not user input.
	KindSemantic
	// KindCodec covers RISC-V assembler/disassembler failures.
	KindCodec
	// KindIrreducible covers analyzer-surfaced irreducible control flow.
	KindIrreducible
	// KindObjectIO covers CLEF read/write/link failures.
	KindObjectIO
)

func (k Kind) String() string {
	switch k {
	case KindLexParse:
		return "lex/parse"
	case KindSemantic:
		return "semantic"
	case KindCodec:
		return "codec"
	case KindIrreducible:
		return "irreducible-cfg"
	case KindObjectIO:
		return "object-io"
	default:
		return "unknown"
	}
}

// Fatal is a Kind-tagged error with an attached error code, wrapped with a
// stack trace via github.com/pkg/errors so the top-level binaries can print
// a full cause chain on exit.
type Fatal struct {
	Kind Kind
	Code string
	err  error
}

func (f *Fatal) Error() string {
	return fmt.Sprintf("%s[%s]: %s", f.Kind, f.Code, f.err)
}

func (f *Fatal) Unwrap() error { return f.err }

// Cause returns the wrapped error, so pkgerrors.Cause walks through a Fatal
// down to the root failure.
func (f *Fatal) Cause() error { return f.err }

// New constructs a Fatal wrapping a freshly created, stack-annotated error.
func New(kind Kind, code, message string) *Fatal {
	return &Fatal{Kind: kind, Code: code, err: pkgerrors.New(message)}
}

// Wrap annotates an existing error with a Kind and code, preserving its
// chain so pkgerrors.Cause can recover the root failure.
func Wrap(kind Kind, code string, err error) *Fatal {
	if err == nil {
		return nil
	}
	return &Fatal{Kind: kind, Code: code, err: pkgerrors.WithStack(err)}
}

// Wrapf is Wrap with a formatted message prefixed onto err.
func Wrapf(kind Kind, code string, err error, format string, args ...interface{}) *Fatal {
	if err == nil {
		return nil
	}
	return &Fatal{Kind: kind, Code: code, err: pkgerrors.Wrapf(err, format, args...)}
}
