package ir

import "github.com/alecthomas/participle/v2/lexer"

// IRLexer tokenizes the IR's own textual format: function headers, basic
// block labels, and one statement per line. Modeled on the teacher's
// KansoLexer, redirected at the IR's concrete syntax instead of come
// source.
var IRLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Register", `%[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Global", `@[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Arrow", `->`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `-?(0x[0-9a-fA-F]+|[0-9]+)`, nil},
		{"Punct", `[(){}:,.\[\]=]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
