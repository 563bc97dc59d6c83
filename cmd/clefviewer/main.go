// Command clefviewer dumps a CLEF object's header, sections, and decoded
// instructions to stdout — the fourth binary of spec.md §6's CLI surface.
package main

import (
	"flag"
	"fmt"
	"os"

	"come/internal/clef"
	"come/internal/comperr"

	"github.com/fatih/color"
)

func main() {
	inPath := flag.String("i", "", "input CLEF file")
	flag.Parse()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: clefviewer -i CLEF")
		os.Exit(1)
	}

	if err := run(*inPath); err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}
}

func run(inPath string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return comperr.Wrap(comperr.KindObjectIO, comperr.ErrorIOFailure, err)
	}
	obj, err := clef.Unmarshal(data)
	if err != nil {
		return err
	}
	fmt.Print(clef.Dump(obj))
	return nil
}
