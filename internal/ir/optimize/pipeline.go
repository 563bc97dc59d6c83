package optimize

import (
	"errors"

	"come/internal/comperr"
	"come/internal/ir"
)

// Run applies the full optimization pipeline to fn: repair irreducible
// control flow first (the later passes all assume dominance is well
// defined), promote allocas to registers, then clean up with the peephole
// passes and dead-register elimination, run to a fixpoint since each pass
// can expose opportunities for the others. Grounded on spec.md §4.7/§4.8's
// pass ordering. An error from FixIrreducible that carries a warning code
// is not fatal: the pipeline continues with the unrepaired function.
func Run(fn *ir.FunctionDefinition) (*ir.FunctionDefinition, error) {
	fixed, _, err := FixIrreducible(fn)
	if err != nil {
		var fatal *comperr.Fatal
		if !errors.As(err, &fatal) || !comperr.IsWarning(fatal.Code) {
			return nil, err
		}
		fixed = fn
	}
	fn = fixed

	fn = MemoryToRegister(fn)

	for {
		before := fn.String()
		fn = RemoveOnlyOnceStore(fn)
		fn = RemoveLoadDirectlyAfterStore(fn)
		fn = RemoveUnusedRegister(fn)
		if fn.String() == before {
			return fn, nil
		}
	}
}
