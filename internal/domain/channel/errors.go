package channel

import "errors"

// Sentinel kinds for keying-set errors.
var (
	ErrUnknownSet = errors.New("unknown keying set")
)
