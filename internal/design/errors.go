package design

import (
	stderrors "errors"
)

// ErrNoFeasibleDesign reports that every evaluated candidate violated a
// requirement; the wrapping error names the last one that failed.
var ErrNoFeasibleDesign = stderrors.New("no feasible design in catalog")
