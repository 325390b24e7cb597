package curve

import "errors"

// Sentinel kinds for curve errors.
var (
	ErrDegenerateRange = errors.New("cycle-aware insertion without a valid configured range")
)
