// Command shuasm assembles a RISC-V assembly text file into a CLEF object,
// the second binary of spec.md §6's four-binary CLI surface.
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
	inPath := flag.String("i", "", "input assembly file")
	outPath := flag.String("o", "", "output CLEF file")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: shuasm -i ASM -o CLEF")
		os.Exit(1)
	}

	if err := run(*inPath, *outPath); err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}
	color.Green("wrote %s", *outPath)
}

func run(inPath, outPath string) error {
	source, err := os.ReadFile(inPath)
	if err != nil {
		return comperr.Wrap(comperr.KindObjectIO, comperr.ErrorIOFailure, err)
	}
	obj, err := clef.Assemble(string(source))
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, clef.Marshal(obj), 0o644); err != nil {
		return comperr.Wrap(comperr.KindObjectIO, comperr.ErrorIOFailure, err)
	}
	return nil
}
