package structural

import (
	"fmt"
	"io"
	"strings"
)

// Print renders region as an indented tree, for tools (cmd/come's -t wasm
// path) that need to inspect the structured form a WASM backend would
// consume without generating actual bytecode.
func Print(w io.Writer, region Region, depth int) {
	indent := strings.Repeat("  ", depth)
	switch r := region.(type) {
	case nil:
		return
	case *Block:
		fmt.Fprintf(w, "%sblock %s (%d statements)\n", indent, r.Name, len(r.Statements))
	case *Seq:
		Print(w, r.First, depth)
		Print(w, r.Second, depth)
	case *IfThenElse:
		fmt.Fprintf(w, "%sif %s\n", indent, r.Cond)
		fmt.Fprintf(w, "%sthen:\n", indent)
		Print(w, r.Then, depth+1)
		fmt.Fprintf(w, "%selse:\n", indent)
		Print(w, r.Else, depth+1)
	case *Loop:
		fmt.Fprintf(w, "%sloop:\n", indent)
		Print(w, r.Body, depth+1)
	}
}
