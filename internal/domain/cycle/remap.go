// Package cycle maps arbitrary frames into a curve's canonical cyclic
// interval.
//
// The remap image is the half-open interval [Start, End): the start
// boundary is canonical and the end boundary wraps back onto it. The
// functions here are pure and safe to call concurrently for different
// curves.
package cycle

import (
	"fmt"
	"math"
)

// Range is the frame interval over which a curve's pattern repeats.
type Range struct {
	Start float64
	End   float64
}

// Span returns the length of the interval. A span of zero or less means
// the range is degenerate and cannot be remapped into.
func (r Range) Span() float64 {
	return r.End - r.Start
}

// Valid reports whether the range can serve as a remap target.
func (r Range) Valid() bool {
	return r.Span() > 0
}

// Remap maps frame into [r.Start, r.End).
//
// The start boundary maps to itself; the end boundary wraps onto the
// start. Frames below the start wrap backward, e.g. with range [1, 20)
// frame -10 lands on 9.
func Remap(frame float64, r Range) (float64, error) {
	span := r.Span()
	if span <= 0 {
		return 0, fmt.Errorf("remap frame %g: %w", frame, ErrInvalidRange)
	}

	// math.Mod keeps the sign of the dividend, so frames below the
	// start come back negative and need one more span added.
	offset := math.Mod(frame-r.Start, span)
	if offset < 0 {
		offset += span
	}

	// A tiny negative offset can round up to exactly span, which would
	// land on the end boundary. The end is congruent to the start, so
	// clamp back onto it and keep the image inside [Start, End).
	out := r.Start + offset
	if out >= r.End {
		out = r.Start
	}
	return out, nil
}
