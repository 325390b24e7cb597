// Package curve holds keyframes for a single scalar animation channel.
package curve

import "github.com/okian/keyloop/internal/domain/cycle"

// Option applies a configuration option to the Curve.
type Option func(*Curve)

// WithEpsilon sets the time tolerance used to treat two keyframe times
// as the same key.
func WithEpsilon(eps float64) Option {
	return func(c *Curve) {
		if eps > 0 {
			c.epsilon = eps
		}
	}
}

// WithCyclic marks the curve as participating in cyclic remapping.
func WithCyclic() Option {
	return func(c *Curve) {
		c.cyclic = true
	}
}

// WithFrameRange sets the authoritative cyclic range and marks it as
// such. The range is stored as given; validity is checked at insertion
// time so a misconfigured curve can still be inspected.
func WithFrameRange(r cycle.Range) Option {
	return func(c *Curve) {
		c.frameRange = r
		c.useFrameRange = true
	}
}
