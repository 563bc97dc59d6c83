// Command linker concatenates like-named sections across one or more CLEF
// objects, resolving pending symbols and marking .text loadable at
// 0x8000_0000 — the third binary of spec.md §6's CLI surface.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"come/internal/clef"
	"come/internal/comperr"

	"github.com/fatih/color"
)

// inputList collects repeated -i flags (spec.md §6: "linker -i CLEF… -o CLEF").
type inputList []string

func (l *inputList) String() string { return strings.Join(*l, ",") }
func (l *inputList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	var inputs inputList
	flag.Var(&inputs, "i", "input CLEF file (repeatable)")
	outPath := flag.String("o", "", "output CLEF file")
	flag.Parse()

	if len(inputs) == 0 || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: linker -i CLEF -i CLEF... -o CLEF")
		os.Exit(1)
	}

	if err := run(inputs, *outPath); err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}
	color.Green("wrote %s", *outPath)
}

func run(inputs []string, outPath string) error {
	objs := make([]*clef.Clef, len(inputs))
	for i, path := range inputs {
		data, err := os.ReadFile(path)
		if err != nil {
			return comperr.Wrap(comperr.KindObjectIO, comperr.ErrorIOFailure, err)
		}
		obj, err := clef.Unmarshal(data)
		if err != nil {
			return err
		}
		objs[i] = obj
	}

	linked, err := clef.Link(objs...)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, clef.Marshal(linked), 0o644); err != nil {
		return comperr.Wrap(comperr.KindObjectIO, comperr.ErrorIOFailure, err)
	}
	return nil
}
