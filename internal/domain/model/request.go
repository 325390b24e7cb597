// Package model contains domain models passed between layers.
package model

import "time"

// Mode selects how the value to key is produced.
type Mode string

const (
	// ModeNormal keys the raw property value.
	ModeNormal Mode = "NORMAL"
	// ModeVisual keys the constraint-resolved world-space value.
	ModeVisual Mode = "VISUAL"
)

// KeyRequest asks for one keying-set insertion on an object at a frame.
// Requests are ephemeral: they are consumed once and never stored.
type KeyRequest struct {
	RequestID  string // unique id, assigned at the API boundary
	ObjectID   string // target object identifier
	Set        string // keying-set name, e.g. "Location"
	Frame      float64
	Mode       Mode
	CycleAware bool      // remap the frame into the curve's cyclic range
	TS         time.Time // request timestamp
}
