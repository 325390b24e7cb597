package cycle

import "errors"

// Sentinel kinds for remap errors.
var (
	ErrInvalidRange = errors.New("cyclic range has zero or negative span")
)
