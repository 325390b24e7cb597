package repository

import "errors"

// Sentinel kinds for action store errors.
var (
	ErrNotFound = errors.New("object has no stored action")
)
