package rig

import "errors"

// Sentinel kinds for property evaluation errors.
var (
	ErrUnresolvedProperty = errors.New("property could not be resolved")
	ErrUnknownObject      = errors.New("object not registered")
)
