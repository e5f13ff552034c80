package core

import "errors"

// ErrDegenerateLine is returned when a line is constructed from two coincident points
// (or otherwise ends up with a = b = 0). It signals a configuration bug in the caller.
var ErrDegenerateLine = errors.New("degenerate line")
