// Package types contains common types used across the application
package types

// KeyframeEntry is one stored sample as exposed by the API.
type KeyframeEntry struct {
	Time  float64 `json:"time"`
	Value float64 `json:"value"`
}

// CurveEntry describes one stored curve as exposed by the API.
type CurveEntry struct {
	Channel          string          `json:"channel"`
	Cyclic           bool            `json:"cyclic"`
	RangeStart       float64         `json:"range_start,omitempty"`
	RangeEnd         float64         `json:"range_end,omitempty"`
	HasCycleModifier bool            `json:"has_cycle_modifier"`
	Keyframes        []KeyframeEntry `json:"keyframes"`
}
